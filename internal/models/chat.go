package models

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. History is ordered,
// most recent message last.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse carries the (possibly replaced) assistant message and the
// verdict of the last guard check performed, if any.
type ChatResponse struct {
	Message ChatMessage   `json:"message"`
	Guard   *GuardVerdict `json:"guard"`
}

// ModelInfo is one entry of the model listing.
type ModelInfo struct {
	Name    string         `json:"name"`
	Details map[string]any `json:"details"`
}

type ModelList struct {
	Models []ModelInfo `json:"models"`
}
