package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/BradenHooton/realty/internal/models"
)

// maxRequestBodyBytes caps JSON request bodies
const maxRequestBodyBytes = 1 << 20

// ValidationErrorResponse represents a validation error with field-level details
type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator validates request DTOs. The "tier" tag is bound to the tier table
// the process booted with.
type Validator struct {
	validate *validator.Validate
	tiers    models.TierTable
}

// NewValidator builds a validator with the listing and subscription tags registered
func NewValidator(tiers models.TierTable) *Validator {
	v := validator.New()

	// Report JSON field names rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
		return tiers.Has(fl.Field().String())
	})
	_ = v.RegisterValidation("moderation_status", func(fl validator.FieldLevel) bool {
		return models.ValidModerationStatus(fl.Field().String())
	})
	_ = v.RegisterValidation("purchase_category", func(fl validator.FieldLevel) bool {
		return models.ValidPurchaseCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, ok := models.ParsePrice(fl.Field().String())
		return ok
	})

	return &Validator{validate: v, tiers: tiers}
}

// ValidateRequest validates a request struct using go-playground/validator
// Returns a user-friendly error message if validation fails
func (v *Validator) ValidateRequest(req interface{}) error {
	if err := v.validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			var errs []ValidationErrorResponse
			for _, fieldError := range ve {
				errs = append(errs, ValidationErrorResponse{
					Field:   fieldError.Field(),
					Message: v.formatValidationError(fieldError),
				})
			}
			// Return first error for simple handling
			if len(errs) > 0 {
				return fmt.Errorf("validation failed: %s: %s",
					errs[0].Field,
					errs[0].Message)
			}
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// formatValidationError converts a validator FieldError to a user-friendly message
func (v *Validator) formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "tier":
		return fmt.Sprintf("must be one of: %s", strings.Join(v.tiers.Names(), " "))
	case "moderation_status":
		return fmt.Sprintf("must be one of: %s", strings.Join(models.ModerationStatuses, " "))
	case "purchase_category":
		return "must be one of: Sale, Rent, Lease, Short Let, Long Let"
	case "price":
		return "must contain a numeric amount"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// decodeJSON reads a bounded JSON body into dst. An empty body is an error
// unless allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return errors.New("invalid request body")
	}
	return nil
}
