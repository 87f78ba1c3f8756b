package models

// ErrorResponse is the standard error body returned by the API. Type carries
// the machine-readable error code, Details the human-readable explanation.
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type"`
	Details string `json:"details,omitempty"`
}
