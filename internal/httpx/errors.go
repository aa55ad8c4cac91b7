package httpx

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// ErrorResponse is the JSON shape written for failed requests
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// NewErrorHandler builds the app-wide fiber error handler. Rich errors
// carry their own HTTP status; anything else is a 500. Stack traces
// are only exposed outside production.
func NewErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var rich *goerrors.Error
		var fiberErr *fiber.Error

		switch {
		case goerrors.As(err, &rich):
			if rich.Code > 0 {
				status = rich.Code
			}
			message = rich.Message
			if production && status == fiber.StatusInternalServerError {
				message = "Internal Server Error"
			}
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		}

		body := ErrorResponse{
			Error:   true,
			Code:    status,
			Message: message,
		}
		if !production {
			body.Stack = err.Error()
		}

		return c.Status(status).JSON(body)
	}
}
