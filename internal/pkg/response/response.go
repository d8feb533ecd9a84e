package response

import (
	"github.com/gofiber/fiber/v2"
)

// Body is the uniform JSON envelope: {success, message?, data?, count?}.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

// Success sends a 200 OK response with the standard envelope.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Body{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SuccessCount sends a 200 OK response for list endpoints, with count.
func SuccessCount(c *fiber.Ctx, message string, data interface{}, count int) error {
	return c.Status(fiber.StatusOK).JSON(Body{
		Success: true,
		Message: message,
		Data:    data,
		Count:   &count,
	})
}

// Created sends a 201 Created response with the standard envelope.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Body{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response with the standard envelope.
func Error(c *fiber.Ctx, message string, statusCode int) error {
	return c.Status(statusCode).JSON(Body{
		Success: false,
		Message: message,
	})
}

// Unauthorized sends 401 in the same shape as other errors, for the auth
// middleware so all errors stay consistent.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized)
}
