package ports

import (
	"context"

	"github.com/bnema/cascade-chat/internal/domain"
)

// ToolRegistry is handed to backend sessions at construction time. The core
// never invokes tools itself.
type ToolRegistry interface {
	Specs() []domain.ToolSpec
	Invoke(ctx context.Context, name string, args map[string]any) (string, error)
}
