package helper

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Validate reports fields by their json names.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidationError converts validator.v10 errors into the 422 envelope.
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return JsonError(c, fiber.StatusBadRequest, "Invalid input")
	}

	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		key := fe.Field()
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fields[key] = append(fields[key], msg)
	}
	return JsonValidationError(c, fields)
}

// BindAndValidate parses the JSON body into dst and runs struct validation.
// It writes the error response itself; callers return the error as-is when
// ok is false.
func BindAndValidate(c *fiber.Ctx, dst any) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := Validate.Struct(dst); err != nil {
		return false, ValidationError(c, err)
	}
	return true, nil
}
