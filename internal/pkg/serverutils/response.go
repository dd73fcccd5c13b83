package serverutils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks struct tags and turns the first violation into a
// 400 fiber error with a readable message.
func ValidateRequest(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		switch f.Tag() {
		case "required":
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s is required", f.Field()))
		default:
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s is invalid", f.Field()))
		}
	}
	return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
}

// ErrorHandlerMiddleware converts errors escaping a handler into the JSON
// error envelope. Handlers that need richer bodies (the query pipeline's
// rejection responses) write their own status and payload instead.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
