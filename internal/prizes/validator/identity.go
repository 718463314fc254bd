package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"giveaway/pkg/logger"
	"giveaway/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// IdentityValidator checks identity tokens and admin prize payloads before
// they reach the allocation protocol.
type IdentityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewIdentityValidator(log *logger.Logger) *IdentityValidator {
	return &IdentityValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateIdentity accepts a normalized identity token. Tokens are email
// addresses; normalization (trim, lowercase) must happen before this call.
func (v *IdentityValidator) ValidateIdentity(token string) error {
	if err := v.validate.Var(token, "required,email,max=254"); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors("identity_token", validationErrs)
		}
		return err
	}
	return nil
}

// ValidatePrize checks an admin-supplied prize reset payload.
func (v *IdentityValidator) ValidatePrize(prize *model.Prize) error {
	if err := v.validate.Struct(prize); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors("", validationErrs)
		}
		return err
	}

	if prize.Remaining > prize.Total {
		return ValidationErrors{
			ValidationError{
				Field:   "Remaining",
				Message: fmt.Sprintf("remaining (%d) cannot exceed total (%d)", prize.Remaining, prize.Total),
			},
		}
	}

	return nil
}

func (v *IdentityValidator) translateValidationErrors(field string, errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		name := err.Field()
		if name == "" {
			name = field
		}

		message := err.Error()
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", name)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", name)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", name, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", name, err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", name, err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   name,
			Message: message,
		})
	}

	return validationErrors
}
