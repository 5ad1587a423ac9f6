package domain

import (
	"strings"
)

type ModelID string

// ModelPool is the ordered, fixed-at-startup list of backends. The first
// member is the primary. Duplicates are kept on purpose: listing a model twice
// gives it two slots in the rotation.
type ModelPool struct {
	members []ModelID
}

func NewModelPool(primary ModelID, fallbacks ...ModelID) (ModelPool, error) {
	members := make([]ModelID, 0, len(fallbacks)+1)
	if trimmed := ModelID(strings.TrimSpace(string(primary))); trimmed != "" {
		members = append(members, trimmed)
	}
	for _, fallback := range fallbacks {
		trimmed := ModelID(strings.TrimSpace(string(fallback)))
		if trimmed == "" {
			continue
		}
		members = append(members, trimmed)
	}

	if len(members) == 0 {
		return ModelPool{}, ErrEmptyPool
	}

	return ModelPool{members: members}, nil
}

// ParseFallbackModels splits a comma-separated model list, skipping blanks.
func ParseFallbackModels(raw string) []ModelID {
	models := make([]ModelID, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		models = append(models, ModelID(trimmed))
	}
	return models
}

func (p ModelPool) Len() int {
	return len(p.members)
}

func (p ModelPool) Primary() ModelID {
	return p.Resolve(0)
}

// Resolve returns pool[index mod len]. Negative indexes wrap as well.
func (p ModelPool) Resolve(index int) ModelID {
	if len(p.members) == 0 {
		return ""
	}
	return p.members[p.wrap(index)]
}

func (p ModelPool) Next(index int) int {
	if len(p.members) == 0 {
		return 0
	}
	return p.wrap(p.wrap(index) + 1)
}

func (p ModelPool) Members() []ModelID {
	members := make([]ModelID, len(p.members))
	copy(members, p.members)
	return members
}

func (p ModelPool) String() string {
	names := make([]string, 0, len(p.members))
	for _, member := range p.members {
		names = append(names, string(member))
	}
	return strings.Join(names, ", ")
}

func (p ModelPool) wrap(index int) int {
	n := len(p.members)
	index %= n
	if index < 0 {
		index += n
	}
	return index
}
