package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/at-ishikawa/legogate/internal/tokenize"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Course       CourseConfig       `mapstructure:"course"`
	Tokenization TokenizationConfig `mapstructure:"tokenization"`
	Validation   ValidationConfig   `mapstructure:"validation"`
	Outputs      OutputsConfig      `mapstructure:"outputs"`
	OpenAI       OpenAIConfig       `mapstructure:"openai"`
}

type CourseConfig struct {
	// SeedsPath is a seed file or a directory of them
	SeedsPath      string `mapstructure:"seeds_path" validate:"required"`
	BasketsPath    string `mapstructure:"baskets_path" validate:"required"`
	KnownLanguage  string `mapstructure:"known_language" validate:"required"`
	TargetLanguage string `mapstructure:"target_language" validate:"required"`
}

type TokenizationConfig struct {
	// Policies overrides the policy chosen for a target language, keyed by language tag
	Policies map[string]string `mapstructure:"policies" validate:"dive,keys,required,endkeys,policy"`
}

type ValidationConfig struct {
	Workers  int    `mapstructure:"workers" validate:"min=1"`
	Strict   bool   `mapstructure:"strict"`
	LutBound string `mapstructure:"lut_bound" validate:"omitempty,seed_id"`
}

type OutputsConfig struct {
	ReportDirectory string `mapstructure:"report_directory" validate:"required"`
	ReportTemplate  string `mapstructure:"report_template" validate:"omitempty,file"`
}

type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	PhrasesPerLego int    `mapstructure:"phrases_per_lego" validate:"min=1"`
}

// Policy returns the tokenization policy of the target language.
func (c *Config) Policy() (tokenize.Policy, error) {
	policy, err := tokenize.ForLanguage(c.Course.TargetLanguage, c.Tokenization.Policies)
	if err != nil {
		return nil, fmt.Errorf("tokenize.ForLanguage(%s) > %w", c.Course.TargetLanguage, err)
	}
	return policy, nil
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/legogate")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("course.seeds_path", filepath.Join("course", "seeds.json"))
	v.SetDefault("course.baskets_path", filepath.Join("course", "baskets.json"))
	v.SetDefault("course.known_language", "en")
	v.SetDefault("course.target_language", "es")
	v.SetDefault("validation.workers", 1)
	v.SetDefault("validation.strict", false)
	v.SetDefault("validation.lut_bound", "")
	v.SetDefault("outputs.report_directory", filepath.Join("outputs", "reports"))
	// Template is optional - if not specified, will use embedded fallback template
	v.SetDefault("outputs.report_template", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.phrases_per_lego", 5)

	// Bind OpenAI config to environment variables only (not from config file)
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("openai.model", "OPENAI_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_MODEL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validator.Struct() > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
