package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/voicelane/voicelane/pkg/domain"
	"github.com/voicelane/voicelane/pkg/models"
)

// statusFor maps domain error codes to HTTP status codes
func statusFor(code string) int {
	switch code {
	case domain.ErrCodeValidation, domain.ErrCodeBadRequest, domain.ErrCodeCredential:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeUpstream:
		return http.StatusBadGateway
	case domain.ErrCodeParsing:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes the standard error body for a domain error. The Type field
// carries the machine-readable code; Details the human-readable message.
func Respond(c echo.Context, err error) error {
	code := domain.GetErrorCode(err)

	var message string
	if de, ok := err.(*domain.DomainError); ok {
		message = de.Message
	} else {
		message = "An internal error occurred"
	}

	return c.JSON(statusFor(code), models.ErrorResponse{
		Error:   message,
		Type:    code,
		Details: detailsFor(err),
	})
}

func detailsFor(err error) string {
	de, ok := err.(*domain.DomainError)
	if !ok || de.Err == nil {
		return ""
	}
	// Internal and database failures keep their details out of the response
	if de.Code == domain.ErrCodeInternal || de.Code == domain.ErrCodeDatabase {
		return ""
	}
	return de.Err.Error()
}

// BadRequest writes a generic bad-request error
func BadRequest(c echo.Context, msg string) error {
	return Respond(c, domain.NewBadRequestError(msg))
}
