package validation

import (
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// StrongPasswordTag is the binding tag name for the password-strength rule.
const StrongPasswordTag = "strongpwd"

// RegisterPasswordRule registers the password-strength rule with gin's
// validator engine. Must be called before the router binds any request.
func RegisterPasswordRule() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation(StrongPasswordTag, strongPassword)
}

// strongPassword requires at least 8 characters with one digit, one
// lowercase letter, one uppercase letter and one non-alphanumeric character.
func strongPassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

// IsStrongPassword reports whether the password satisfies the complexity rules.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasDigit, hasLower, hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		default:
			hasSpecial = true
		}
	}
	return hasDigit && hasLower && hasUpper && hasSpecial
}
