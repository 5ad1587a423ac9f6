package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/cascade-chat/internal/domain"
)

// session tracks the conversation itself; the REST API is stateless and every
// call carries the full history.
type session struct {
	client *Client
	model  domain.ModelID
	config domain.SessionConfig

	mu      sync.Mutex
	history domain.History
	closed  bool
}

func (s *session) Model() domain.ModelID {
	return s.model
}

// Send runs one user message through generateContent, answering function calls
// from the tool registry until the model replies with text. History is only
// updated when the whole exchange succeeds.
func (s *session) Send(ctx context.Context, text string) (domain.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Reply{}, domain.ErrSessionClosed
	}

	pending := s.history.Append(domain.TextTurn(domain.RoleUser, text, s.client.now()))
	var toolCalls []string

	for round := 0; ; round++ {
		resp, err := s.client.generate(ctx, s.model, newRequest(s.config, pending))
		if err != nil {
			return domain.Reply{}, err
		}

		var turn domain.Turn
		if len(resp.Candidates) > 0 {
			turn = fromContent(resp.Candidates[0].Content, s.client.now())
		}
		// The API rejects model turns without parts, so an empty answer must
		// never reach the history.
		if len(turn.Parts) == 0 {
			return domain.Reply{}, &domain.BackendError{
				Kind:  domain.ErrorKindOther,
				Model: s.model,
				Err:   errors.New(resp.emptyReason()),
			}
		}
		pending = append(pending, turn)

		calls := functionCalls(turn)
		if len(calls) == 0 {
			s.history = pending
			return domain.Reply{Text: turn.Text(), Model: s.model, ToolCalls: toolCalls}, nil
		}
		if round >= maxToolRounds {
			return domain.Reply{}, &domain.BackendError{
				Kind:  domain.ErrorKindOther,
				Model: s.model,
				Err:   fmt.Errorf("model kept calling tools after %d rounds", maxToolRounds),
			}
		}

		responses := domain.Turn{Role: domain.RoleTool, Parts: make([]domain.Part, 0, len(calls)), At: s.client.now()}
		for _, call := range calls {
			toolCalls = append(toolCalls, call.Name)
			responses.Parts = append(responses.Parts, domain.Part{
				FunctionResponse: &domain.FunctionResponse{Name: call.Name, Output: s.invoke(ctx, call)},
			})
		}
		pending = append(pending, responses)
	}
}

// invoke reports tool failures to the model as text.
func (s *session) invoke(ctx context.Context, call domain.FunctionCall) string {
	if s.client.Tools == nil {
		return fmt.Sprintf("error: tool %q is not available", call.Name)
	}

	output, err := s.client.Tools.Invoke(ctx, call.Name, call.Args)
	if err != nil {
		s.client.logger().Debug("tool call failed", "model", s.model, "tool", call.Name, "error", err)
		return "error: " + err.Error()
	}
	return output
}

func (s *session) History() domain.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Clone()
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
