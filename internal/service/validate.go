package service

import (
	"regexp"
	"strings"

	"github.com/tazhibayda/user-service/internal/apperr"
)

var phoneRe = regexp.MustCompile(`^[0-9]{10}$`)

func validateSignup(in SignupInput) error {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Name) == "" {
		return apperr.Invalid("name and username are required")
	}
	if len(in.Password) < 8 {
		return apperr.Invalid("Password is too short!")
	}
	if in.Password != in.ConfirmPassword {
		return apperr.Invalid("Passwords don't match!")
	}
	if !phoneRe.MatchString(in.PhoneNumber) {
		return apperr.Invalid("Phone number is invalid!")
	}
	if in.Image.Body == nil {
		return apperr.Invalid("profile image is required")
	}
	return nil
}
