package domain

import (
	"fmt"
	"strings"
)

type PromptSlot string

const (
	PromptSlotAgentName   PromptSlot = "agent_name"
	PromptSlotUserName    PromptSlot = "user_name"
	PromptSlotUserRole    PromptSlot = "user_role"
	PromptSlotUserDetails PromptSlot = "user_details"
)

type PromptValues struct {
	AgentName   string
	UserName    string
	UserRole    string
	UserDetails string
}

func (v PromptValues) lookup(slot PromptSlot) (string, bool) {
	switch slot {
	case PromptSlotAgentName:
		return v.AgentName, true
	case PromptSlotUserName:
		return v.UserName, true
	case PromptSlotUserRole:
		return v.UserRole, true
	case PromptSlotUserDetails:
		return v.UserDetails, true
	default:
		return "", false
	}
}

// RenderSystemInstruction expands {slot} placeholders in template. The literal
// two-character sequence `\n` becomes a newline so templates can live on one
// line in .env files. `{{` and `}}` escape braces.
func RenderSystemInstruction(template string, values PromptValues) (string, error) {
	template = strings.ReplaceAll(template, `\n`, "\n")

	var out strings.Builder
	out.Grow(len(template))

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				out.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("system prompt template: unclosed '{' at offset %d", i)
			}
			name := PromptSlot(strings.TrimSpace(template[i+1 : i+1+end]))
			value, ok := values.lookup(name)
			if !ok {
				return "", fmt.Errorf("%w: %q", ErrUnknownPromptSlot, name)
			}
			out.WriteString(value)
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				out.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("system prompt template: unmatched '}' at offset %d", i)
		default:
			out.WriteByte(c)
		}
	}

	return out.String(), nil
}
