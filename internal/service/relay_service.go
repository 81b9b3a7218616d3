package service

import (
	"context"
	"fmt"
	"io"

	"github.com/openscribe/draftpad/internal/config"
	"github.com/openscribe/draftpad/internal/domain"
	"github.com/openscribe/draftpad/internal/upstream"
	"go.uber.org/zap"
)

const promptTemplate = "You are a helpful writing assistant. The user is currently editing a document with the following content:\n\n---\n%s\n---\n\nNow, please answer the user's question: %s"

// RelayService renders the writing-assistant prompt and opens the
// upstream token stream. It holds no per-session state; concurrent
// unrelated sessions are served independently.
type RelayService struct {
	cfg      *config.Config
	upstream *upstream.Client
	logger   *zap.Logger
}

// NewRelayService creates a new relay service
func NewRelayService(cfg *config.Config, client *upstream.Client, logger *zap.Logger) *RelayService {
	return &RelayService{
		cfg:      cfg,
		upstream: client,
		logger:   logger,
	}
}

// Open renders the prompt from the document snapshot and the user's
// question, then opens the raw upstream byte stream. Errors are the
// upstream package's pre-stream taxonomy, untouched, so the handler can
// map them to a single synchronous error response.
func (s *RelayService) Open(ctx context.Context, req *domain.ChatRequest) (io.ReadCloser, error) {
	prompt := fmt.Sprintf(promptTemplate, req.Context, req.Message)

	s.logger.Info("opening relay",
		zap.String("model", s.cfg.LLM.Model),
		zap.Int("context_len", len(req.Context)),
		zap.Int("message_len", len(req.Message)),
	)

	return s.upstream.Generate(ctx, s.cfg.LLM.Model, prompt)
}
