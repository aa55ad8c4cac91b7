package httpx

import "github.com/gofiber/fiber/v2"

// Envelope is the JSON shape every handler responds with
type Envelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK writes a success envelope with status 200
func OK(c *fiber.Ctx, message string, data any) error {
	return JSON(c, fiber.StatusOK, message, data)
}

// Created writes a success envelope with status 201
func Created(c *fiber.Ctx, message string, data any) error {
	return JSON(c, fiber.StatusCreated, message, data)
}

// JSON writes a success envelope with an explicit status
func JSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Error:   false,
		Message: message,
		Data:    data,
	})
}
