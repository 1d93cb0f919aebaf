package http

import (
	"github.com/fwojciec/pilot"
	"github.com/gofiber/fiber/v2"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	pilot.EINVALID:      fiber.StatusBadRequest,
	pilot.ENOTFOUND:     fiber.StatusNotFound,
	pilot.EUNAUTHORIZED: fiber.StatusUnauthorized,
	pilot.EINTERNAL:     fiber.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return fiber.StatusInternalServerError
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error writes err as a JSON error response. Internal errors are logged and
// reported without detail.
func (s *Server) Error(c *fiber.Ctx, err error) error {
	code, message := pilot.ErrorCode(err), pilot.ErrorMessage(err)
	if code == pilot.EINTERNAL {
		s.logger().Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"err", err,
		)
		message = "Erreur interne."
	}
	return c.Status(ErrorStatusCode(code)).JSON(ErrorResponse{Error: message})
}

// handleError converts errors returned by handlers, including fiber's own
// routing errors, into JSON error responses.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(ErrorResponse{Error: e.Message})
	}
	return s.Error(c, err)
}
