package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/researchdt/internal/server/apierror"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// newValidator builds a validator that reports JSON field names, so
// namespaces read like "CreateUserRequest.info.gender".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// bind decodes the JSON body into dst and validates it. An empty body is
// treated as an empty object so missing fields are reported individually.
func (s *Server) bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return decodeError(err)
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return validationError(verrs)
		}
		return err
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apierror.Field(typeErr.Field, apierror.CodeInvalid,
			fmt.Sprintf("Incorrect type. Expected %s.", typeErr.Type.Kind()))
	}
	return apierror.ParseError()
}

func validationError(verrs validator.ValidationErrors) error {
	fields := apierror.FieldErrors{}
	for _, fe := range verrs {
		code, msg := describe(fe)
		fields.Add(fieldPath(fe.Namespace()), code, msg)
	}
	return fields.Err()
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) (code, message string) {
	switch fe.Tag() {
	case "required":
		return apierror.CodeRequired, "This field is required."
	case "email":
		return apierror.CodeInvalid, "Enter a valid email address."
	case "oneof":
		return apierror.CodeInvalidChoice, fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "min":
		if fe.Kind() == reflect.String && fe.Param() == "1" {
			return apierror.CodeBlank, "This field may not be blank."
		}
		return apierror.CodeMinLength, fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return apierror.CodeMaxLength, fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "gte":
		return apierror.CodeMinValue, fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return apierror.CodeMaxValue, fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	default:
		return apierror.CodeInvalid, "Invalid value."
	}
}
