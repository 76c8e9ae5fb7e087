package topicbook

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// TaskRequest carries the user-supplied parameters of a generation task.
type TaskRequest struct {
	Topic       string `json:"topic" validate:"required,notblank"`
	Description string `json:"description"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// Validate checks that the request can be submitted.
func (r TaskRequest) Validate() error {
	err := requestValidator().Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, strings.ToLower(fieldErrs[0].Field()))
	}
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}
