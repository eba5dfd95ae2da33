// Package response writes the JSON envelope shared by every API endpoint:
//
//	{"status": bool, "data"?: any, "message"?: string, "code"?: string, "request_id"?: string}
package response

import "github.com/gofiber/fiber/v2"

// RequestIDLocalKey is the Fiber locals key holding the request ID.
const RequestIDLocalKey = "request_id"

// Envelope is the body of every API response.
type Envelope struct {
	Status    bool   `json:"status"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// RequestID returns the request ID stored by the RequestID middleware.
func RequestID(c *fiber.Ctx) string {
	if s, ok := c.Locals(RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// OK writes a success envelope carrying data.
func OK(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Envelope{Status: true, Data: data})
}

// Message writes a success envelope with a message and no data.
func Message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Envelope{Status: true, Message: msg})
}

// Error writes a failure envelope. message must be safe to show to clients.
func Error(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Envelope{
		Status:    false,
		Message:   message,
		Code:      code,
		RequestID: RequestID(c),
	})
}
