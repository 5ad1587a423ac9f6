package ports

import (
	"context"

	"github.com/bnema/cascade-chat/internal/domain"
)

type TranscriptRepository interface {
	GetByID(ctx context.Context, id domain.TranscriptID) (domain.Transcript, error)
	Save(ctx context.Context, transcript domain.Transcript) error
}
