package domain

import "fmt"

// SessionConfig is assembled once at startup and handed unchanged to every
// backend session. Only the model and the history vary across migrations.
type SessionConfig struct {
	SystemInstruction string
	Temperature       float64
	Tools             []ToolSpec
}

type ToolParameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

type ToolSpec struct {
	Name        string
	Description string
	Parameters  []ToolParameter
}

func (c SessionConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}

	seen := make(map[string]struct{}, len(c.Tools))
	for _, tool := range c.Tools {
		if tool.Name == "" {
			return fmt.Errorf("tool name is required")
		}
		if _, ok := seen[tool.Name]; ok {
			return fmt.Errorf("duplicate tool %q", tool.Name)
		}
		seen[tool.Name] = struct{}{}
	}

	return nil
}
