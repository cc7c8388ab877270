package webapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/amirasaad/walletfx/pkg/domain/ledger"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// ErrorResponseJSON returns a response following RFC 9457 Problem Details.
func ErrorResponseJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")

	return c.Status(status).JSON(pd)
}

// ErrorToStatusCode maps ledger errors to stable HTTP status codes. Internal
// storage errors never leak: anything unclassified becomes a plain 500.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidCurrencyCode):
		return fiber.StatusBadRequest
	case errors.Is(err, ledger.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrUnsupportedCurrency):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrPersistenceConflict):
		return fiber.StatusConflict
	case errors.Is(err, ledger.ErrRateUnavailable),
		errors.Is(err, ledger.ErrUpstreamTransient):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// errorDetail picks the message surfaced to the caller: known ledger errors
// are safe to show verbatim, everything else is masked.
func errorDetail(err error) string {
	for _, known := range []error{
		ledger.ErrInvalidAmount,
		ledger.ErrInvalidCurrencyCode,
		ledger.ErrUserNotFound,
		ledger.ErrInsufficientBalance,
		ledger.ErrUnsupportedCurrency,
		ledger.ErrPersistenceConflict,
		ledger.ErrRateUnavailable,
		ledger.ErrUpstreamTransient,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal server error"
}

// validate is shared across handlers; Validate instances cache struct
// metadata, so one per process is the cheap path.
var validate = validator.New()

// BindAndValidate parses the request body and validates it. On failure it
// writes the error response and returns a non-nil error.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
		return nil, err
	}
	return &input, nil
}
