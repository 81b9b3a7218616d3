package domain

import "time"

// Document represents one markdown document owned by a user
type Document struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentSummary is the list view of a document, without its content
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateDocumentRequest is the request to create a document
type CreateDocumentRequest struct {
	Title   string  `json:"title" binding:"required,min=1,max=255"`
	Content *string `json:"content,omitempty"`
}

// UpdateDocumentRequest is the request to update a document.
// Nil fields are left unchanged.
type UpdateDocumentRequest struct {
	Title   *string `json:"title,omitempty" binding:"omitempty,min=1,max=255"`
	Content *string `json:"content,omitempty"`
}

// Summary converts a Document to its list representation
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:        d.ID,
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
