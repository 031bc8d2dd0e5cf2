package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nadscarim/task-management/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in messages follow the JSON tags.
//
// Custom tags:
//   - taskpriority: empty or one of the task priorities
//   - duedate: empty, an RFC 3339 timestamp or a YYYY-MM-DD date
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Both accept "" since omitempty does not skip a pointer to an empty string.
	_ = v.RegisterValidation("taskpriority", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || domain.TaskPriority(s).Valid()
	})
	_ = v.RegisterValidation("duedate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		_, err := parseDueDate(&s)
		return err == nil
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "taskpriority":
		return fmt.Sprintf("%s must be one of: %s, %s, %s", field, domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh)
	case "duedate":
		return errInvalidDueDate.Error()
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
