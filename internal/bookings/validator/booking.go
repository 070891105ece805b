package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"fitstudio/pkg/logger"
	"fitstudio/pkg/model"
	"fitstudio/pkg/sanitizer"
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

func (v ValidationErrors) Fields() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		log.Fatal("Failed to register 'phone' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	return sanitizer.NormalizePhone(fl.Field().String()) != ""
}

// ValidateRequest sanitizes the request in place, then validates it.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	req.ClassID = strings.TrimSpace(req.ClassID)
	req.ClientName = sanitizer.NormalizeName(req.ClientName)
	req.ClientEmail = strings.TrimSpace(req.ClientEmail)
	req.SpecialRequests = sanitizer.NormalizeFreeText(req.SpecialRequests, 500)
	if req.Phone != "" {
		if normalized := sanitizer.NormalizePhone(req.Phone); normalized != "" {
			req.Phone = normalized
		}
	}

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "uuid4":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "phone":
			message = fmt.Sprintf("%s must be a valid phone number (e.g., +14155551234)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
