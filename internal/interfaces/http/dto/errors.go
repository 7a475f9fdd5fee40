package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// ClientError returns the error shown to API clients. Domain errors are kept;
// anything else is hidden behind shared.ErrUnexpected.
func ClientError(err error) *shared.DomainError {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	return shared.ErrUnexpected
}

// BindingError converts a gin binding error into a 400 domain error with a
// message naming the first offending field
func BindingError(err error) *shared.DomainError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return shared.Invalid(validationMessage(verrs[0]))
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return shared.Invalid("The request body is empty.")
	case errors.As(err, &syntaxErr):
		return shared.Invalid("The request body is not valid JSON.")
	case errors.As(err, &typeErr):
		return shared.Invalid(fmt.Sprintf(`The "%s" field has an invalid type.`, typeErr.Field))
	}
	return shared.Invalid("The request is invalid.")
}

func validationMessage(fe validator.FieldError) string {
	field := jsonFieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf(`The "%s" field is required.`, field)
	case "min":
		return fmt.Sprintf(`The "%s" field must be at least %s.`, field, fe.Param())
	case "max":
		return fmt.Sprintf(`The "%s" field must be at most %s.`, field, fe.Param())
	case "oneof":
		return fmt.Sprintf(`The "%s" field must be one of: %s.`, field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf(`The "%s" field is invalid.`, field)
	}
}

// jsonFieldName lowercases the first letter of the struct field name, which
// matches the camelCase json and form names used by the request structs
func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	if name == "ID" {
		return "id"
	}
	return strings.ToLower(name[:1]) + name[1:]
}
