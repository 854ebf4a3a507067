package models

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type HealthResponse struct {
	Status            string `json:"status"`
	ModelConfigured   bool   `json:"model_configured"`
	GuardConfigured   bool   `json:"guard_configured"`
	ScannerConfigured bool   `json:"scanner_configured"`
	ScannerAvailable  bool   `json:"scanner_available"`
}
