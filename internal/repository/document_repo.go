package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/openscribe/draftpad/internal/domain"
)

// DocumentRepository handles document persistence
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document
func (r *DocumentRepository) Create(doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO documents (id, user_id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.UserID, doc.Title, doc.Content, doc.CreatedAt, doc.UpdatedAt)

	return err
}

// Get retrieves a document by ID, scoped to its owner
func (r *DocumentRepository) Get(id, userID string) (*domain.Document, error) {
	doc := &domain.Document{}
	err := r.db.QueryRow(`
		SELECT id, user_id, title, content, created_at, updated_at
		FROM documents WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&doc.ID, &doc.UserID, &doc.Title, &doc.Content,
		&doc.CreatedAt, &doc.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// ListByUser retrieves all documents belonging to a user
func (r *DocumentRepository) ListByUser(userID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, title, content, created_at, updated_at
		FROM documents WHERE user_id = ?
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc := &domain.Document{}
		if err := rows.Scan(&doc.ID, &doc.UserID, &doc.Title, &doc.Content,
			&doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Update updates a document's title and/or content.
// Nil fields are left unchanged. Returns nil if the document does not
// exist or belongs to another user.
func (r *DocumentRepository) Update(id, userID string, title, content *string) (*domain.Document, error) {
	doc, err := r.Get(id, userID)
	if err != nil || doc == nil {
		return doc, err
	}

	if title != nil {
		doc.Title = *title
	}
	if content != nil {
		doc.Content = *content
	}
	doc.UpdatedAt = time.Now()

	_, err = r.db.Exec(`
		UPDATE documents SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, doc.Title, doc.Content, doc.UpdatedAt, id, userID)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Delete removes a document. Returns false if nothing was deleted.
func (r *DocumentRepository) Delete(id, userID string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM documents WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
