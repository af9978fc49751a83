package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/internal/middlewares"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", fe.Field())
	}
	return fmt.Sprintf("%s failed '%s'", fe.Field(), fe.Tag())
}

// parseBody decodes the JSON body into req and validates its tags.
func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return middlewares.NewAPIError(fiber.StatusBadRequest, "BAD_REQUEST", "Malformed request body")
	}
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, validationMessage(fe))
		}
		return middlewares.NewAPIError(fiber.StatusBadRequest, "BAD_REQUEST", strings.Join(msgs, "; "))
	}
	return nil
}
