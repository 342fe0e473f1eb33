package types

// SuccessEnvelope wraps every 2xx body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Details are only present for codes
// that allow them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx body. Data carries state that was
// committed before a later step (mail delivery) failed.
type ErrorEnvelope struct {
	Data  any      `json:"data,omitempty"`
	Error APIError `json:"error"`
}
