package docs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openscribe/draftpad/internal/api/middleware"
	"github.com/openscribe/draftpad/internal/domain"
	"github.com/openscribe/draftpad/internal/service"
)

// Handler handles document API requests
type Handler struct {
	docService *service.DocumentService
}

// NewHandler creates a new document handler
func NewHandler(docService *service.DocumentService) *Handler {
	return &Handler{docService: docService}
}

// RegisterRoutes registers document routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Create)
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

// Create creates a document
func (h *Handler) Create(c *gin.Context) {
	var req domain.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.docService.Create(middleware.UserID(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// List returns summaries of the user's documents
func (h *Handler) List(c *gin.Context) {
	summaries, err := h.docService.List(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// Get returns one document
func (h *Handler) Get(c *gin.Context) {
	doc, err := h.docService.Get(c.Param("id"), middleware.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Update applies a partial update to one document
func (h *Handler) Update(c *gin.Context) {
	var req domain.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.docService.Update(c.Param("id"), middleware.UserID(c), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Delete removes one document
func (h *Handler) Delete(c *gin.Context) {
	if err := h.docService.Delete(c.Param("id"), middleware.UserID(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
