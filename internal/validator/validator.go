package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studyhive/studyhub-service/internal/models"
)

// ValidationError describes a single failed rule on a request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects all failures for one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ToValidationErrors converts go-playground validator output.
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var out ValidationErrors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			out = append(out, ValidationError{
				Field:   toSnakeCase(fe.Field()),
				Message: messageForTag(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return out
	}

	return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "material_type":
		return "must be one of: study_guide, flashcards, quiz, concept_map, exam"
	case "activity_type":
		return "is not a recognized activity type"
	case "past_or_present":
		return "cannot be in the future"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validator validates request structs with domain rules registered.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the custom domain rules registered.
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerDomainRules()

	return v
}

// Validate validates any struct and returns its failures.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerDomainRules() {
	// Material type must be one of the known kinds
	v.validate.RegisterValidation("material_type", func(fl validator.FieldLevel) bool {
		return models.MaterialType(fl.Field().String()).Valid()
	})

	// Activity type must be one of the recorded kinds
	v.validate.RegisterValidation("activity_type", func(fl validator.FieldLevel) bool {
		t := models.ActivityType(fl.Field().String())
		switch t {
		case models.ActivityMaterialCreated, models.ActivityMaterialUpdated,
			models.ActivityDocumentUploaded, models.ActivityExamCompleted,
			models.ActivityPostCreated:
			return true
		}
		return false
	})

	// Timestamps that record history cannot sit in the future
	v.validate.RegisterValidation("past_or_present", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.Ptr && field.IsNil() {
			return true
		}

		var ts time.Time
		if field.Kind() == reflect.Ptr {
			ts = field.Elem().Interface().(time.Time)
		} else {
			ts = field.Interface().(time.Time)
		}

		return !ts.After(time.Now().Add(time.Minute))
	})
}

// ValidateExamResultCreate adds the score consistency checks struct tags
// cannot express.
func (v *Validator) ValidateExamResultCreate(req *ExamResultCreateRequest) ValidationErrors {
	errors := v.Validate(req)

	if req.MaxScore > 0 && req.Score > req.MaxScore {
		errors = append(errors, ValidationError{
			Field:   "score",
			Message: "cannot exceed max_score",
			Value:   req.Score,
			Rule:    "score_range",
		})
	}
	if req.Score < 0 {
		errors = append(errors, ValidationError{
			Field:   "score",
			Message: "cannot be negative",
			Value:   req.Score,
			Rule:    "score_range",
		})
	}

	return errors
}
