package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/tokenize"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type customTag struct {
	tag         string
	fn          validator.Func
	translation string
}

var customTags = []customTag{
	{tag: "file", fn: isFileReadable, translation: "{0} must be an existing and readable file"},
	{tag: "policy", fn: isPolicyName, translation: "{0} must be one of whitespace, character or morpheme"},
	{tag: "seed_id", fn: isSeedID, translation: "{0} must be a seed ID like S0001"},
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for _, custom := range customTags {
		if err := validate.RegisterValidation(custom.tag, custom.fn); err != nil {
			return nil, nil, fmt.Errorf("failed to register %s validation: %w", custom.tag, err)
		}
		if err := validate.RegisterTranslation(custom.tag, trans, func(ut ut.Translator) error {
			return ut.Add(custom.tag, custom.translation, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), strings.TrimPrefix(fe.Namespace(), "Config."))
			return t
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to register %s translation: %w", custom.tag, err)
		}
	}

	return validate, trans, nil
}

func isFileReadable(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	// Check if the owner has read permission
	return info.Mode().Perm()&(1<<(uint(8))) != 0
}

func isPolicyName(fl validator.FieldLevel) bool {
	return tokenize.IsPolicyName(fl.Field().String())
}

func isSeedID(fl validator.FieldLevel) bool {
	return course.SeedID(fl.Field().String()).Valid()
}
