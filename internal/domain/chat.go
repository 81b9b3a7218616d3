package domain

// ChatRequest is the request to relay a chat message.
// Context carries the snapshot of the document being edited;
// Message is the user's question about it.
type ChatRequest struct {
	Context string `json:"context"`
	Message string `json:"message" binding:"required"`
}
