package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// envelope is the uniform response body. Success responses carry Data,
// validation failures carry Errors keyed by field.
type envelope struct {
	OK      bool                `json:"ok"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{OK: true, Message: message, Data: data})
}

func respondError(c *gin.Context, err error) {
	status, message := statusFor(err)
	c.JSON(status, envelope{OK: false, Message: message})
}

// statusFor maps domain errors onto HTTP statuses. Unknown errors are
// reported as a generic 500 so internals never leak.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorEmailNotVerified):
		return http.StatusForbidden, "email not verified"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorEmailExists):
		return http.StatusConflict, "email already in use"
	case errors.Is(err, common.ErrorAlreadyVerified):
		return http.StatusConflict, "email already verified"
	case errors.Is(err, common.ErrorInvalidCode):
		return http.StatusBadRequest, "invalid verification code"
	case errors.Is(err, common.ErrorCodeExpired):
		return http.StatusBadRequest, "verification code expired"
	case errors.Is(err, common.ErrorDeliveryFailure):
		return http.StatusBadGateway, "could not send verification email"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// respondValidation reports request binding failures as a 422 with a
// per-field error map.
func respondValidation(c *gin.Context, err error) {
	fieldErrors := map[string][]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := fe.Field()
			fieldErrors[field] = append(fieldErrors[field], validationMessage(fe))
		}
	}

	c.JSON(http.StatusUnprocessableEntity, envelope{
		OK:      false,
		Message: "validation failed",
		Errors:  fieldErrors,
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short or too small (min " + fe.Param() + ")"
	case "max":
		return "is too long or too large (max " + fe.Param() + ")"
	case "eqfield":
		return "must match " + fe.Param()
	default:
		return "is invalid"
	}
}
