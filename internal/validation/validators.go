package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ReservedEmailDomain holds the synthetic emails of wallet accounts. No other
// sign-in method may register or link an address under it.
const ReservedEmailDomain = "wallet.local"

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	usernamePattern  = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)
	signaturePattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{130}$`)
)

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so messages match the request body.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := Validate.RegisterValidation("username", validateUsername); err != nil {
		panic(fmt.Sprintf("failed to register username validator: %v", err))
	}
	if err := Validate.RegisterValidation("wallet_signature", validateWalletSignature); err != nil {
		panic(fmt.Sprintf("failed to register wallet_signature validator: %v", err))
	}
	if err := Validate.RegisterValidation("unreserved_email", validateUnreservedEmail); err != nil {
		panic(fmt.Sprintf("failed to register unreserved_email validator: %v", err))
	}
}

// WalletEmail returns the synthetic email for a normalized wallet address.
func WalletEmail(address string) string {
	return address + "@" + ReservedEmailDomain
}

// IsReservedEmail reports whether email is under ReservedEmailDomain.
func IsReservedEmail(email string) bool {
	_, domain, ok := strings.Cut(strings.ToLower(strings.TrimSpace(email)), "@")
	if !ok {
		return false
	}
	return domain == ReservedEmailDomain || strings.HasSuffix(domain, "."+ReservedEmailDomain)
}

func validateUnreservedEmail(fl validator.FieldLevel) bool {
	return !IsReservedEmail(fl.Field().String())
}

// validateUsername allows 3 to 50 letters, digits, dots, dashes and underscores.
func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// validateWalletSignature accepts a 65-byte hex signature with optional 0x prefix.
func validateWalletSignature(fl validator.FieldLevel) bool {
	return signaturePattern.MatchString(fl.Field().String())
}

// Struct validates a request struct and returns a readable error.
func Struct(v any) error {
	if err := Validate.Struct(v); err != nil {
		return FormatError(err)
	}
	return nil
}

// FormatError turns validator errors into one sentence per failing field.
func FormatError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "username":
		return field + " must be 3-50 letters, digits, dots, dashes or underscores"
	case "unreserved_email":
		return field + " must not use the " + ReservedEmailDomain + " domain"
	case "wallet_signature":
		return field + " must be a 65-byte hex signature"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// SanitizeText trims whitespace and removes control characters except newline and tab
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
