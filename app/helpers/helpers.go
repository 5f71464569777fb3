package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const (
	ContextKeyUser      contextKey = "userObject"
	ContextKeyRequestID contextKey = "requestID"
)

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

// GetUserFromContext returns the authenticated user, or nil for anonymous
// requests.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// FormatValidationErrors keys messages by the json field name, which the
// validator reports when it is set up with RegisterTagNameFunc.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.Tag() {
		case "required":
			errorMessages[field] = "This field is required."
		case "email":
			errorMessages[field] = "Enter a valid email address."
		case "numeric", "number":
			errorMessages[field] = "A valid number is required."
		case "min":
			errorMessages[field] = fmt.Sprintf("Ensure this value is at least %s.", err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("Ensure this value is at most %s.", err.Param())
		case "gte":
			errorMessages[field] = fmt.Sprintf("Ensure this value is greater than or equal to %s.", err.Param())
		case "lte":
			errorMessages[field] = fmt.Sprintf("Ensure this value is less than or equal to %s.", err.Param())
		case "oneof":
			errorMessages[field] = fmt.Sprintf("Must be one of: %s.", err.Param())
		default:
			errorMessages[field] = fmt.Sprintf("Validation %s failed on field %s.", err.Tag(), err.Field())
		}
	}
	return errorMessages
}

func PasswordCompare(hashPass string, password []byte) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashPass), password)
	if err != nil {
		slog.Debug("PasswordCompare: password does not match", "error", err)
		return false
	}
	return true
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
