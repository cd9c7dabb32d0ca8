package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

// ErrValidation is wrapped by every error Check returns.
var ErrValidation = errors.New("Validation failed")

var validate = validator.New()

func init() {
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})

	// grade matches the buyback condition grades K1..K4
	validate.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "K1", "K2", "K3", "K4":
			return true
		}
		return false
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var failures []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: err.Error()}}
		}
		for _, err := range validationErrs {
			failures = append(failures, &ErrorResponse{
				FailedField: err.StructNamespace(),
				Tag:         err.Tag(),
				Value:       err.Param(),
			})
		}
	}
	return failures
}

// Check validates data and returns the first failure as an error.
func Check(data interface{}) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: Field '%s' failed on tag '%s'", ErrValidation, errs[0].FailedField, errs[0].Tag)
}
