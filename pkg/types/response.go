// Package types holds the wire envelopes shared by handlers and their tests.
package types

// SuccessEnvelope wraps every 2xx payload so clients always unwrap "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Details appears only for codes that
// allow structured details to leave the service.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
