package service

import (
	"github.com/openscribe/draftpad/internal/domain"
	"github.com/openscribe/draftpad/internal/repository"
)

// DocumentService handles document CRUD with per-user ownership
type DocumentService struct {
	docRepo *repository.DocumentRepository
}

// NewDocumentService creates a new document service
func NewDocumentService(docRepo *repository.DocumentRepository) *DocumentService {
	return &DocumentService{docRepo: docRepo}
}

// Create creates a document for the user
func (s *DocumentService) Create(userID string, req *domain.CreateDocumentRequest) (*domain.Document, error) {
	content := ""
	if req.Content != nil {
		content = *req.Content
	}

	doc := &domain.Document{
		UserID:  userID,
		Title:   req.Title,
		Content: content,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// List returns summaries of the user's documents
func (s *DocumentService) List(userID string) ([]domain.DocumentSummary, error) {
	docs, err := s.docRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, doc.Summary())
	}
	return summaries, nil
}

// Get returns one document owned by the user
func (s *DocumentService) Get(id, userID string) (*domain.Document, error) {
	doc, err := s.docRepo.Get(id, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// Update applies a partial update to one document owned by the user
func (s *DocumentService) Update(id, userID string, req *domain.UpdateDocumentRequest) (*domain.Document, error) {
	doc, err := s.docRepo.Update(id, userID, req.Title, req.Content)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// Delete removes one document owned by the user
func (s *DocumentService) Delete(id, userID string) error {
	deleted, err := s.docRepo.Delete(id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}
