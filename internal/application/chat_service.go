package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/bnema/cascade-chat/internal/ports"
)

// ChatService runs one conversation: it starts the session, delivers messages
// through the cascade and keeps the saved transcript current.
type ChatService struct {
	manager     *SessionManager
	cascade     *Cascade
	transcripts ports.TranscriptRepository
	clock       ports.Clock
	logger      *slog.Logger
	id          domain.TranscriptID

	mu         sync.Mutex
	migrations []domain.Migration
}

func NewChatService(manager *SessionManager, cascade *Cascade, transcripts ports.TranscriptRepository, clock ports.Clock, logger *slog.Logger) *ChatService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &ChatService{
		manager:     manager,
		cascade:     cascade,
		transcripts: transcripts,
		clock:       clock,
		logger:      logger,
		id:          domain.DefaultTranscriptID,
	}
	cascade.Observe(s)

	return s
}

// Start opens the primary model. With resume set, the last saved transcript
// seeds the history; a missing transcript starts a fresh conversation.
func (s *ChatService) Start(ctx context.Context, resume bool) (domain.Transcript, error) {
	transcript := domain.Transcript{ID: s.id}
	if resume && s.transcripts != nil {
		saved, err := s.transcripts.GetByID(ctx, s.id)
		switch {
		case err == nil:
			transcript = saved
		case errors.Is(err, domain.ErrTranscriptNotFound):
		default:
			return domain.Transcript{}, fmt.Errorf("load transcript: %w", err)
		}
	}

	if err := s.manager.StartWithHistory(ctx, transcript.History); err != nil {
		return domain.Transcript{}, err
	}

	s.mu.Lock()
	s.migrations = append([]domain.Migration(nil), transcript.Migrations...)
	s.mu.Unlock()

	return transcript, nil
}

// Send delivers text and saves the transcript once a model has answered. A
// failed save is logged and does not fail the delivery.
func (s *ChatService) Send(ctx context.Context, text string) (Delivery, error) {
	delivery, err := s.cascade.Deliver(ctx, text)
	if err != nil {
		return delivery, err
	}

	if saveErr := s.save(ctx, delivery.Model); saveErr != nil {
		s.logger.Warn("save transcript", "error", saveErr)
	}

	return delivery, nil
}

// Transcript returns the last saved conversation.
func (s *ChatService) Transcript(ctx context.Context) (domain.Transcript, error) {
	if s.transcripts == nil {
		return domain.Transcript{}, domain.ErrTranscriptNotFound
	}
	return s.transcripts.GetByID(ctx, s.id)
}

// Observe registers o for quota and migration events of every delivery.
func (s *ChatService) Observe(o Observer) {
	s.cascade.Observe(o)
}

func (s *ChatService) Pool() domain.ModelPool {
	return s.manager.Pool()
}

func (s *ChatService) CurrentModel() domain.ModelID {
	return s.manager.CurrentModel()
}

func (s *ChatService) Close() error {
	return s.manager.Close()
}

func (s *ChatService) OnQuota(domain.ModelID, error) {}

func (s *ChatService) OnMigrated(from, to domain.ModelID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.migrations = append(s.migrations, domain.Migration{From: from, To: to, At: s.clock.Now()})
}

func (s *ChatService) save(ctx context.Context, active domain.ModelID) error {
	if s.transcripts == nil {
		return nil
	}

	s.mu.Lock()
	migrations := append([]domain.Migration(nil), s.migrations...)
	s.mu.Unlock()

	transcript := domain.Transcript{
		ID:          s.id,
		ActiveModel: active,
		History:     s.manager.History(),
		Migrations:  migrations,
		UpdatedAt:   s.clock.Now(),
	}
	if err := s.transcripts.Save(ctx, transcript); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}

	return nil
}
