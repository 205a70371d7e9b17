package twilio

import (
	"errors"

	"github.com/twilio/twilio-go/client"
)

var ErrInvalidSignature = errors.New("invalid twilio request signature")

// SignatureValidator checks the X-Twilio-Signature header of webhook requests.
type SignatureValidator struct {
	validator client.RequestValidator
}

func NewSignatureValidator(authToken string) *SignatureValidator {
	return &SignatureValidator{validator: client.NewRequestValidator(authToken)}
}

// Validate returns ErrInvalidSignature unless signature matches the full
// request URL and its form parameters.
func (v *SignatureValidator) Validate(url string, params map[string]string, signature string) error {
	if signature == "" || !v.validator.Validate(url, params, signature) {
		return ErrInvalidSignature
	}
	return nil
}
