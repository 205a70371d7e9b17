package apierrors

import (
	"errors"
	"strings"

	"voice-bridge/internal/callregistry"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voicecall/processor"
	"voice-bridge/internal/voicecall/twilio"
)

// MapError converts domain/processor errors to APIErrors.
// If the error is already an APIError, it returns it as-is.
// If the error is unknown, it returns a sanitized InternalError (500).
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return NotFound(CodeCallNotFound, "Call not found")

	case errors.Is(err, processor.ErrInvalidCallID):
		return BadRequest(CodeInvalidInput, "Call id must be a valid UUID")

	case errors.Is(err, processor.ErrRecordsDisabled):
		return ServiceUnavailable(CodeStorageDisabled, "Call records are not enabled on this deployment", err)

	case errors.Is(err, callregistry.ErrCapacityReached):
		return ServiceUnavailable(CodeAtCapacity, "All lines are busy. Please try again later.", err)

	case errors.Is(err, twilio.ErrInvalidSignature):
		return Forbidden(CodeInvalidSignature, "Request signature is invalid")

	default:
		return mapExternalServiceError(err)
	}
}

// mapExternalServiceError attempts to identify external service errors
// and map them to appropriate service-specific error responses.
func mapExternalServiceError(err error) *APIError {
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "realtime") || strings.Contains(errMsg, "openai") {
		return ServiceUnavailable(
			CodeAIServiceError,
			"AI service is temporarily unavailable. Please try again later.",
			err,
		)
	}

	if strings.Contains(errMsg, "twiml") || strings.Contains(errMsg, "twilio") {
		return ServiceUnavailable(
			CodeTelephonyError,
			"Telephony service is temporarily unavailable. Please try again later.",
			err,
		)
	}

	return InternalError(err)
}
