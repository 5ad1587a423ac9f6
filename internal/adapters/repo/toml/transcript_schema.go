package toml

import "fmt"

const currentTranscriptsSchemaVersion = 1

type transcriptsFileSchema struct {
	Version     int                `toml:"version"`
	Transcripts []transcriptSchema `toml:"transcripts"`
}

func (s *transcriptsFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentTranscriptsSchemaVersion
	}
}

func (s transcriptsFileSchema) validateVersion() error {
	if s.Version > currentTranscriptsSchemaVersion {
		return fmt.Errorf("unsupported transcripts schema version %d (current %d)", s.Version, currentTranscriptsSchemaVersion)
	}

	return nil
}

type transcriptSchema struct {
	ID          string            `toml:"id"`
	ActiveModel string            `toml:"active_model"`
	UpdatedAt   string            `toml:"updated_at"`
	Migrations  []migrationSchema `toml:"migrations"`
	Turns       []turnSchema      `toml:"turns"`
}

type migrationSchema struct {
	From string `toml:"from"`
	To   string `toml:"to"`
	At   string `toml:"at"`
}

type turnSchema struct {
	Role  string       `toml:"role"`
	At    string       `toml:"at"`
	Parts []partSchema `toml:"parts"`
}

type partSchema struct {
	Text         string         `toml:"text,omitempty"`
	CallName     string         `toml:"call_name,omitempty"`
	CallArgs     map[string]any `toml:"call_args,omitempty"`
	ResponseName string         `toml:"response_name,omitempty"`
	Output       string         `toml:"output,omitempty"`
}
