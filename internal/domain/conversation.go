package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	// RoleTool carries function responses back to the model.
	RoleTool Role = "tool"
)

type FunctionCall struct {
	Name string
	Args map[string]any
}

type FunctionResponse struct {
	Name   string
	Output string
}

type Part struct {
	Text             string
	FunctionCall     *FunctionCall
	FunctionResponse *FunctionResponse
}

type Turn struct {
	Role  Role
	Parts []Part
	At    time.Time
}

func TextTurn(role Role, text string, at time.Time) Turn {
	return Turn{Role: role, Parts: []Part{{Text: text}}, At: at}
}

// Text joins the text parts of the turn.
func (t Turn) Text() string {
	texts := make([]string, 0, len(t.Parts))
	for _, part := range t.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "")
}

// History is the ordered conversation. Normal sends only append to it.
type History []Turn

func (h History) Clone() History {
	if h == nil {
		return History{}
	}

	cloned := make(History, len(h))
	for i, turn := range h {
		parts := make([]Part, len(turn.Parts))
		copy(parts, turn.Parts)
		turn.Parts = parts
		cloned[i] = turn
	}
	return cloned
}

func (h History) Append(turns ...Turn) History {
	out := h.Clone()
	return append(out, turns...)
}

type Reply struct {
	Text      string
	Model     ModelID
	ToolCalls []string
}

type ModelInfo struct {
	ID          ModelID
	DisplayName string
	Methods     []string
}
