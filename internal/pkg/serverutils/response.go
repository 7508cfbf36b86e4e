package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

// ValidateRequest runs struct-tag validation and converts failures into
// a fiber error the error handler middleware renders as a 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Field '%s' failed validation: %s", first.Field(), first.Tag()))
		}
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// ErrorHandlerMiddleware converts uncaught errors into the response
// envelope. Generation failures never reach here: they travel as marker
// text inside 200 responses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
			message = fe.Message
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
