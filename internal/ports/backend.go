package ports

import (
	"context"

	"github.com/bnema/cascade-chat/internal/domain"
)

// BackendFactory opens a chat session against one model. Construction
// failures are reported as *domain.BackendError with kind invalid_model, auth
// or other.
type BackendFactory interface {
	Open(ctx context.Context, model domain.ModelID, cfg domain.SessionConfig, history domain.History) (BackendSession, error)
}

type BackendSession interface {
	Model() domain.ModelID
	// Send delivers one user message. Quota failures carry kind
	// quota_exceeded; everything else is kind other.
	Send(ctx context.Context, text string) (domain.Reply, error)
	// History is best effort and may return nil.
	History() domain.History
	Close() error
}

type ModelCatalog interface {
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)
}
