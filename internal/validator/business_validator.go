package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aeeconecta/aee-service/internal/models"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator wraps go-playground validator with the domain rules registered.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with every custom rule registered.
func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.registerBusinessRules()
	return v
}

// Validate runs struct validation and returns nil when s is valid.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ToValidationErrors converts go-playground errors into ValidationErrors.
func ToValidationErrors(err error) ValidationErrors {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func (v *Validator) registerBusinessRules() {
	v.validate.RegisterValidation("bimestre", func(fl validator.FieldLevel) bool {
		return models.IsBimestre(fl.Field().String())
	})

	v.validate.RegisterValidation("bimestre_filter", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == models.BimestreTodos || models.IsBimestre(s)
	})

	v.validate.RegisterValidation("participou", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == models.ParticipouSim || s == models.ParticipouNao
	})

	v.validate.RegisterValidation("participation_level", func(fl validator.FieldLevel) bool {
		return models.IsParticipationOption(fl.Field().String())
	})
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in the %s layout", fe.Param())
	case "bimestre":
		return "must be one of: " + strings.Join(models.Bimestres, ", ")
	case "bimestre_filter":
		return "must be " + models.BimestreTodos + " or one of: " + strings.Join(models.Bimestres, ", ")
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "participou":
		return fmt.Sprintf("must be %q or %q", models.ParticipouSim, models.ParticipouNao)
	case "participation_level":
		return "is not a known participation level"
	default:
		return fmt.Sprintf("failed on the %s rule", fe.Tag())
	}
}
