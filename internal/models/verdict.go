package models

import "encoding/json"

// GuardVerdict is the outcome of one content guard call. IsError marks a
// failed or skipped call; such verdicts are always allowed.
type GuardVerdict struct {
	Allowed   bool            `json:"allowed"`
	Malicious bool            `json:"is_malicious"`
	Decision  string          `json:"decision,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Detail    string          `json:"detail,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// ScanVerdict is the outcome of one file scan. Result holds the scanner's
// JSON payload; Error is set instead when the scan could not run.
type ScanVerdict struct {
	Malicious bool            `json:"malicious"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// ScanResponse is returned by the upload and fixed-sample endpoints.
type ScanResponse struct {
	Filename    string        `json:"filename"`
	ScanResult  *ScanVerdict  `json:"scan_result"`
	GuardResult *GuardVerdict `json:"guard_result"`
	Malicious   bool          `json:"malicious"`
}

// InjectionChatResponse is returned by the injection sample when no guard
// is configured and the sample went straight to the model.
type InjectionChatResponse struct {
	Type             string      `json:"type"`
	UserMessage      string      `json:"user_message"`
	AssistantMessage string      `json:"assistant_message"`
	Message          ChatMessage `json:"message"`
}
