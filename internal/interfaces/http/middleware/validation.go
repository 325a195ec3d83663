package middleware

import (
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/afyapos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// msisdnPattern matches Safaricom subscriber numbers in the international
// form Daraja expects: 2547XXXXXXXX or 2541XXXXXXXX.
var msisdnPattern = regexp.MustCompile(`^254(7|1)\d{8}$`)

// sortFieldPattern matches column-name shaped sort fields. Repositories
// still check the value against their own whitelist before ordering.
var sortFieldPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// SetupValidator configures gin's validator engine: error messages carry the
// JSON field names clients actually sent, the msisdn tag validates M-Pesa
// phone numbers, and the sortfield tag rejects malformed sort parameters.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("msisdn", func(fl validator.FieldLevel) bool {
		return msisdnPattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("sortfield", func(fl validator.FieldLevel) bool {
		return sortFieldPattern.MatchString(fl.Field().String())
	})
}

// FormatValidationErrors converts a binding failure into the standard
// response shape with per-field details
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: validationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 response for a request binding failure
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
}

// validationMessage returns a human-readable message for a failed rule
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "msisdn":
		return "Must be a phone number in the form 2547XXXXXXXX"
	case "sortfield":
		return "Must be a column name (letters, digits and underscores)"
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lt":
		return "Must be less than " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}
