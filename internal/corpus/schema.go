package corpus

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// SchemaViolation is a missing or invalid field in a seed, LEGO or phrase.
type SchemaViolation struct {
	Location string `json:"location" yaml:"location"`
	Message  string `json:"message" yaml:"message"`
}

func (v SchemaViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Location, v.Message)
}

// SchemaChecker validates decoded corpus structs against their validate tags.
type SchemaChecker struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewSchemaChecker builds a checker that reports fields by their JSON names.
func NewSchemaChecker() (*SchemaChecker, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterTranslation("required_if", trans, func(ut ut.Translator) error {
		return ut.Add("required_if", "{0} is required for molecular legos", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required_if", fe.Field())
		return t
	}); err != nil {
		return nil, fmt.Errorf("failed to register required_if translation: %w", err)
	}

	return &SchemaChecker{validate: validate, translator: trans}, nil
}

// Check returns every schema violation in seeds and baskets, seeds first, baskets by LEGO ID.
func (c *SchemaChecker) Check(seeds []course.Seed, baskets course.Baskets) []SchemaViolation {
	var violations []SchemaViolation
	for i, seed := range seeds {
		location := fmt.Sprintf("seeds[%d] %s", i, seed.ID)
		violations = append(violations, c.check(location, seed)...)
	}

	for _, id := range sortedLegoIDs(baskets) {
		for i, phrase := range baskets[id] {
			location := fmt.Sprintf("baskets %s[%d]", id, i)
			violations = append(violations, c.check(location, phrase)...)
		}
	}
	return violations
}

func (c *SchemaChecker) check(location string, v any) []SchemaViolation {
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []SchemaViolation{{Location: location, Message: err.Error()}}
	}

	violations := make([]SchemaViolation, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		violations = append(violations, SchemaViolation{
			Location: location + " " + field,
			Message:  e.Translate(c.translator),
		})
	}
	return violations
}
