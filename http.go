package signin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// APIResponse is the envelope shared by every endpoint.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RespondData writes a success envelope.
func RespondData(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondError maps an error to its HTTP status and writes a failure
// envelope carrying the machine readable text code.
func RespondError(c *fiber.Ctx, err error) error {
	richErr := asRichError(err)

	return c.Status(StatusFromError(richErr)).JSON(APIResponse{
		Success: false,
		Message: richErr.Message,
		Error:   richErr.TextCode,
	})
}

// StatusFromError resolves the HTTP status for a rich error, preferring
// an explicit code over the category mapping.
func StatusFromError(richErr *errors.Error) int {
	if richErr == nil {
		return fiber.StatusInternalServerError
	}

	if richErr.Code >= fiber.StatusBadRequest {
		return richErr.Code
	}

	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryAuth, errors.CategoryAuthz:
		return fiber.StatusUnauthorized
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// NewErrorHandler returns the app level fiber error handler. Handlers
// mostly respond through RespondError themselves; this catches what
// they let through.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(APIResponse{
				Success: false,
				Message: fiberErr.Message,
			})
		}

		richErr := asRichError(err)

		logger.Error(
			"Unhandled request error",
			"error", richErr.Message,
			"category", richErr.Category,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)

		return RespondError(c, richErr)
	}
}

func asRichError(err error) *errors.Error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}
	return richErr
}
