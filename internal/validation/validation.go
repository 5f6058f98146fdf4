// internal/validation/validation.go
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/models"
)

var (
	ContainerNumberPattern = regexp.MustCompile(`^[A-Z]{3}U[0-9]{7}$`)
	IsoCodePattern         = regexp.MustCompile(`^[0-9]{2}[A-Z][0-9]$`)
	LineCodePattern        = regexp.MustCompile(`^[A-Z]{1,3}$`)
)

// validate shares the "binding" tag with gin so request DTOs are checked
// with the same rules whether they arrive over HTTP or not.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	configure(v)
	return v
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("containernumber", func(fl validator.FieldLevel) bool {
		return ContainerNumberPattern.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})
	_ = v.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return ValidPermission(fl.Field().String())
	})
}

// RegisterGin installs the custom rules on gin's default validator.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	configure(v)
	return nil
}

func ValidPermission(p string) bool {
	if p == models.PermissionAll {
		return true
	}
	for _, known := range models.Permissions {
		if p == known {
			return true
		}
	}
	return false
}

// Struct validates s and returns an apperr validation error listing every
// failed field.
func Struct(s any) error {
	return Translate(validate.Struct(s))
}

// Translate turns validator output into an apperr validation error. Other
// errors are passed through.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return apperr.Validation("%s", strings.Join(msgs, "; "))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min", "max":
		return boundMessage(fe)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "containernumber":
		return fmt.Sprintf("%s must be 3 letters, U and 7 digits (e.g. MSCU1234567)", fe.Field())
	case "permission":
		return fmt.Sprintf("%s contains an unknown permission %q", fe.Field(), fe.Value())
	}
	return fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag())
}

// boundMessage words min/max by the field kind: numbers are compared by
// value, slices by item count, strings by length.
func boundMessage(fe validator.FieldError) string {
	bound := "at least"
	if fe.Tag() == "max" {
		bound = "at most"
	}
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%s must be %s %s", fe.Field(), bound, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("%s must have %s %s items", fe.Field(), bound, fe.Param())
	}
	return fmt.Sprintf("%s must be %s %s characters", fe.Field(), bound, fe.Param())
}
