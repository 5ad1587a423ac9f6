package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/bnema/cascade-chat/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	TranscriptsPathKey  = "transcripts.path"
	transcriptsFileName = "transcripts.toml"
)

type TranscriptRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.TranscriptRepository = (*TranscriptRepository)(nil)

// NewTranscriptRepository stores transcripts at transcripts.path, or under
// ~/.cascade when the key is unset.
func NewTranscriptRepository(cfg *viper.Viper) (*TranscriptRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(TranscriptsPathKey)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, storeConfigDir, transcriptsFileName)
	}

	path, err := normalizeStorePath(path)
	if err != nil {
		return nil, err
	}

	return &TranscriptRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *TranscriptRepository) Path() string {
	return r.path
}

func (r *TranscriptRepository) GetByID(ctx context.Context, id domain.TranscriptID) (domain.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return domain.Transcript{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Transcript{}, err
	}

	for _, entry := range file.Transcripts {
		if entry.ID == string(id) {
			return fromTranscriptSchema(entry), nil
		}
	}

	return domain.Transcript{}, domain.ErrTranscriptNotFound
}

func (r *TranscriptRepository) Save(ctx context.Context, transcript domain.Transcript) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if transcript.ID == "" {
		return errors.New("transcript id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	encoded := toTranscriptSchema(transcript)
	updated := false
	for i := range file.Transcripts {
		if file.Transcripts[i].ID == encoded.ID {
			file.Transcripts[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Transcripts = append(file.Transcripts, encoded)
	}

	return writeTOMLFile(r.path, file)
}

func (r *TranscriptRepository) readSchema() (transcriptsFileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return transcriptsFileSchema{}, nil
		}
		return transcriptsFileSchema{}, fmt.Errorf("read transcripts file: %w", err)
	}

	var file transcriptsFileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return transcriptsFileSchema{}, fmt.Errorf("decode transcripts file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return transcriptsFileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func toTranscriptSchema(transcript domain.Transcript) transcriptSchema {
	migrations := make([]migrationSchema, 0, len(transcript.Migrations))
	for _, migration := range transcript.Migrations {
		migrations = append(migrations, migrationSchema{
			From: string(migration.From),
			To:   string(migration.To),
			At:   formatTime(migration.At),
		})
	}

	turns := make([]turnSchema, 0, len(transcript.History))
	for _, turn := range transcript.History {
		parts := make([]partSchema, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			encoded := partSchema{Text: part.Text}
			if part.FunctionCall != nil {
				encoded.CallName = part.FunctionCall.Name
				encoded.CallArgs = part.FunctionCall.Args
			}
			if part.FunctionResponse != nil {
				encoded.ResponseName = part.FunctionResponse.Name
				encoded.Output = part.FunctionResponse.Output
			}
			parts = append(parts, encoded)
		}
		turns = append(turns, turnSchema{Role: string(turn.Role), At: formatTime(turn.At), Parts: parts})
	}

	return transcriptSchema{
		ID:          string(transcript.ID),
		ActiveModel: string(transcript.ActiveModel),
		UpdatedAt:   formatTime(transcript.UpdatedAt),
		Migrations:  migrations,
		Turns:       turns,
	}
}

func fromTranscriptSchema(schema transcriptSchema) domain.Transcript {
	migrations := make([]domain.Migration, 0, len(schema.Migrations))
	for _, migration := range schema.Migrations {
		migrations = append(migrations, domain.Migration{
			From: domain.ModelID(migration.From),
			To:   domain.ModelID(migration.To),
			At:   parseTime(migration.At),
		})
	}

	history := make(domain.History, 0, len(schema.Turns))
	for _, turn := range schema.Turns {
		parts := make([]domain.Part, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			decoded := domain.Part{Text: part.Text}
			if part.CallName != "" {
				decoded.FunctionCall = &domain.FunctionCall{Name: part.CallName, Args: part.CallArgs}
			}
			if part.ResponseName != "" {
				decoded.FunctionResponse = &domain.FunctionResponse{Name: part.ResponseName, Output: part.Output}
			}
			parts = append(parts, decoded)
		}
		history = append(history, domain.Turn{Role: domain.Role(turn.Role), Parts: parts, At: parseTime(turn.At)})
	}

	return domain.Transcript{
		ID:          domain.TranscriptID(schema.ID),
		ActiveModel: domain.ModelID(schema.ActiveModel),
		History:     history,
		Migrations:  migrations,
		UpdatedAt:   parseTime(schema.UpdatedAt),
	}
}
