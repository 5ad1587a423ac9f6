package gemini

import (
	"strings"
	"time"

	"github.com/bnema/cascade-chat/internal/domain"
)

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type functionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type functionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]schema `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

type functionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *schema `json:"parameters,omitempty"`
}

type tool struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateContentRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Tools             []tool           `json:"tools,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type generateContentResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

// emptyReason explains a response that carries no usable model turn.
func (r generateContentResponse) emptyReason() string {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "prompt blocked: " + r.PromptFeedback.BlockReason
	}
	if len(r.Candidates) == 0 {
		return "response has no candidates"
	}
	if reason := r.Candidates[0].FinishReason; reason != "" {
		return "response has no content, finish reason " + reason
	}
	return "response has no content"
}

type modelResource struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

type listModelsResponse struct {
	Models        []modelResource `json:"models"`
	NextPageToken string          `json:"nextPageToken"`
}

type apiErrorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func newRequest(cfg domain.SessionConfig, history domain.History) generateContentRequest {
	req := generateContentRequest{
		Contents:         toContents(history),
		GenerationConfig: generationConfig{Temperature: cfg.Temperature},
	}
	if strings.TrimSpace(cfg.SystemInstruction) != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: cfg.SystemInstruction}}}
	}
	if len(cfg.Tools) > 0 {
		declarations := make([]functionDeclaration, 0, len(cfg.Tools))
		for _, spec := range cfg.Tools {
			declarations = append(declarations, toDeclaration(spec))
		}
		req.Tools = []tool{{FunctionDeclarations: declarations}}
	}
	return req
}

func toDeclaration(spec domain.ToolSpec) functionDeclaration {
	declaration := functionDeclaration{Name: spec.Name, Description: spec.Description}
	if len(spec.Parameters) == 0 {
		return declaration
	}

	params := &schema{Type: "OBJECT", Properties: make(map[string]schema, len(spec.Parameters))}
	for _, param := range spec.Parameters {
		params.Properties[param.Name] = schema{Type: wireType(param.Type), Description: param.Description}
		if param.Required {
			params.Required = append(params.Required, param.Name)
		}
	}
	declaration.Parameters = params
	return declaration
}

func wireType(t string) string {
	if t == "" {
		return "STRING"
	}
	return strings.ToUpper(t)
}

func toContents(history domain.History) []content {
	contents := make([]content, 0, len(history))
	for _, turn := range history {
		c := content{Role: wireRole(turn.Role), Parts: make([]part, 0, len(turn.Parts))}
		for _, p := range turn.Parts {
			switch {
			case p.FunctionCall != nil:
				c.Parts = append(c.Parts, part{FunctionCall: &functionCall{Name: p.FunctionCall.Name, Args: p.FunctionCall.Args}})
			case p.FunctionResponse != nil:
				c.Parts = append(c.Parts, part{FunctionResponse: &functionResponse{
					Name:     p.FunctionResponse.Name,
					Response: map[string]any{"result": p.FunctionResponse.Output},
				}})
			default:
				c.Parts = append(c.Parts, part{Text: p.Text})
			}
		}
		contents = append(contents, c)
	}
	return contents
}

// function responses travel as user content on the wire.
func wireRole(role domain.Role) string {
	if role == domain.RoleModel {
		return "model"
	}
	return "user"
}

func fromContent(c content, at time.Time) domain.Turn {
	turn := domain.Turn{Role: domain.RoleModel, Parts: make([]domain.Part, 0, len(c.Parts)), At: at}
	for _, p := range c.Parts {
		switch {
		case p.FunctionCall != nil:
			turn.Parts = append(turn.Parts, domain.Part{FunctionCall: &domain.FunctionCall{Name: p.FunctionCall.Name, Args: p.FunctionCall.Args}})
		case p.Text != "":
			turn.Parts = append(turn.Parts, domain.Part{Text: p.Text})
		}
	}
	return turn
}

func functionCalls(turn domain.Turn) []domain.FunctionCall {
	var calls []domain.FunctionCall
	for _, p := range turn.Parts {
		if p.FunctionCall != nil {
			calls = append(calls, *p.FunctionCall)
		}
	}
	return calls
}

func modelIDFromName(name string) domain.ModelID {
	return domain.ModelID(strings.TrimPrefix(name, "models/"))
}
