package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bnema/cascade-chat/internal/domain"
)

// Observer is told about quota hits and completed migrations while a message
// is being delivered.
type Observer interface {
	OnQuota(model domain.ModelID, err error)
	OnMigrated(from, to domain.ModelID)
}

type Delivery struct {
	Reply      domain.Reply
	Model      domain.ModelID
	Attempts   int
	Migrations int
}

// Cascade delivers one message, walking the pool on quota failures.
type Cascade struct {
	manager   *SessionManager
	logger    *slog.Logger
	observers []Observer
}

func NewCascade(manager *SessionManager, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Cascade{manager: manager, logger: logger}
}

func (c *Cascade) Observe(observer Observer) {
	if observer == nil {
		return
	}
	c.observers = append(c.observers, observer)
}

// Deliver sends text to the current model. A quota failure migrates the
// session to the next model and retries the same text; every pool member is
// tried at most once, so a fully exhausted pool ends back on the model the
// message started with. Failures other than quota are returned unchanged.
func (c *Cascade) Deliver(ctx context.Context, text string) (Delivery, error) {
	if strings.TrimSpace(text) == "" {
		return Delivery{}, domain.ErrEmptyMessage
	}

	maxAttempts := c.manager.Pool().Len()
	delivery := Delivery{}
	var lastQuota error

	for delivery.Attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			return delivery, err
		}

		delivery.Attempts++
		reply, model, err := c.manager.Send(ctx, text)
		if err == nil {
			delivery.Reply = reply
			delivery.Model = model
			return delivery, nil
		}

		if !errors.Is(err, domain.ErrQuotaExceeded) {
			return delivery, err
		}

		lastQuota = err
		c.logger.Warn("quota exceeded", "model", model, "attempt", delivery.Attempts)
		for _, observer := range c.observers {
			observer.OnQuota(model, err)
		}

		to, migrateErr := c.manager.Migrate(ctx)
		if migrateErr != nil {
			return delivery, migrateErr
		}
		delivery.Migrations++
		for _, observer := range c.observers {
			observer.OnMigrated(model, to)
		}
	}

	// The last quota failure is kept as text only: an exhausted pool is not a
	// quota error callers should retry against.
	return delivery, fmt.Errorf("%w after %d attempts: %v", domain.ErrPoolExhausted, delivery.Attempts, lastQuota)
}
