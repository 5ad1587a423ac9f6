package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/bnema/cascade-chat/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadeFallsThroughQuotaToThirdModel(t *testing.T) {
	t.Parallel()

	factory := newScriptedFactory()
	factory.script("A", quotaResult("A"))
	factory.script("B", quotaResult("B"))
	factory.script("C", textResult("hello"))
	cascade, manager := startCascade(t, factory, "A", "B", "C")

	delivery, err := cascade.Deliver(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", delivery.Reply.Text)
	assert.Equal(t, domain.ModelID("C"), delivery.Model)
	assert.Equal(t, 3, delivery.Attempts)
	assert.Equal(t, 2, delivery.Migrations)
	assert.Equal(t, 2, manager.CurrentIndex())
	assert.Equal(t, []domain.ModelID{"A", "B", "C"}, factory.sent())
}

func TestCascadeSingleModelPoolExhaustsAfterOneAttempt(t *testing.T) {
	t.Parallel()

	factory := newScriptedFactory()
	factory.script("A", quotaResult("A"))
	cascade, manager := startCascade(t, factory, "A")

	delivery, err := cascade.Deliver(context.Background(), "hi")
	require.ErrorIs(t, err, domain.ErrPoolExhausted)
	assert.NotErrorIs(t, err, domain.ErrMigrationFailed)
	assert.Equal(t, 1, delivery.Attempts)
	assert.Equal(t, []domain.ModelID{"A"}, factory.sent())
	assert.Equal(t, 0, manager.CurrentIndex())
}

func TestCascadeAllQuotaTriesEveryModelOnce(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 4; n++ {
		factory := newScriptedFactory()
		members := make([]domain.ModelID, 0, n)
		for i := 0; i < n; i++ {
			model := domain.ModelID(string(rune('A' + i)))
			members = append(members, model)
			factory.script(model, quotaResult(model))
		}
		cascade, manager := startCascade(t, factory, members[0], members[1:]...)

		delivery, err := cascade.Deliver(context.Background(), "hi")
		require.ErrorIs(t, err, domain.ErrPoolExhausted, "n=%d", n)
		assert.NotErrorIs(t, err, domain.ErrQuotaExceeded, "n=%d", n)
		assert.Equal(t, domain.ErrorKindOther, domain.ClassifyKind(err), "n=%d", n)
		assert.ErrorContains(t, err, "RESOURCE_EXHAUSTED", "n=%d", n)
		assert.Equal(t, n, delivery.Attempts, "n=%d", n)
		assert.Equal(t, members, factory.sent(), "n=%d", n)
		assert.Equal(t, 0, manager.CurrentIndex(), "n=%d", n)
	}
}

func TestCascadeIndexPersistsAfterMigration(t *testing.T) {
	t.Parallel()

	factory := newScriptedFactory()
	factory.script("A", quotaResult("A"))
	factory.script("B", textResult("first"), textResult("second"))
	cascade, manager := startCascade(t, factory, "A", "B")

	delivery, err := cascade.Deliver(context.Background(), "one")
	require.NoError(t, err)
	assert.Equal(t, domain.ModelID("B"), delivery.Model)
	assert.Equal(t, 1, delivery.Migrations)

	delivery, err = cascade.Deliver(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, "second", delivery.Reply.Text)
	assert.Equal(t, domain.ModelID("B"), delivery.Model)
	assert.Zero(t, delivery.Migrations)
	assert.Equal(t, 1, manager.CurrentIndex())
	assert.Equal(t, []domain.ModelID{"A", "B", "B"}, factory.sent())
}

func TestCascadeOtherFailurePassesThroughWithoutMigration(t *testing.T) {
	t.Parallel()

	cause := &domain.BackendError{Kind: domain.ErrorKindOther, Model: "A", Status: 400, Err: errors.New("malformed request")}
	factory := newScriptedFactory()
	factory.script("A", sendResult{err: cause})
	cascade, manager := startCascade(t, factory, "A", "B")

	_, err := cascade.Deliver(context.Background(), "hi")
	require.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrPoolExhausted)
	assert.Equal(t, 0, manager.CurrentIndex())
	assert.Equal(t, []domain.ModelID{"A"}, factory.openedModels())
}

func TestCascadeMigrationFailureStopsTheMessage(t *testing.T) {
	t.Parallel()

	factory := newScriptedFactory()
	factory.script("A", quotaResult("A"))
	factory.failOpen("B", &domain.BackendError{Kind: domain.ErrorKindInvalidModel, Model: "B", Status: 404, Err: errors.New("not found")})
	factory.script("C", textResult("never"))
	cascade, manager := startCascade(t, factory, "A", "B", "C")

	delivery, err := cascade.Deliver(context.Background(), "hi")
	require.ErrorIs(t, err, domain.ErrMigrationFailed)
	assert.NotErrorIs(t, err, domain.ErrPoolExhausted)
	assert.Equal(t, 1, delivery.Attempts)
	assert.Equal(t, []domain.ModelID{"A"}, factory.sent())
	assert.Equal(t, []domain.ModelID{"A", "B"}, factory.openedModels())
	assert.Equal(t, 0, manager.CurrentIndex())
	assert.Equal(t, domain.ModelID("A"), manager.CurrentModel())
}

func TestCascadeMigrationCarriesHistoryUnchanged(t *testing.T) {
	t.Parallel()

	factory := newScriptedFactory()
	factory.script("A", textResult("hello"), quotaResult("A"))
	factory.script("B", textResult("welcome back"))
	cascade, manager := startCascade(t, factory, "A", "B")

	_, err := cascade.Deliver(context.Background(), "hi")
	require.NoError(t, err)
	before := manager.History()
	require.Len(t, before, 2)

	_, err = cascade.Deliver(context.Background(), "again")
	require.NoError(t, err)

	opened := factory.openedHistories()
	require.Len(t, opened, 2)
	assert.Empty(t, opened[0])
	assert.Equal(t, before, opened[1])

	after := manager.History()
	require.Len(t, after, 4)
	assert.Equal(t, before, after[:2])
	assert.Equal(t, "again", after[2].Text())
	assert.Equal(t, "welcome back", after[3].Text())
}

func TestCascadeRejectsBlankMessage(t *testing.T) {
	t.Parallel()

	factory := newScriptedFactory()
	cascade, _ := startCascade(t, factory, "A")

	_, err := cascade.Deliver(context.Background(), "  \t")
	require.ErrorIs(t, err, domain.ErrEmptyMessage)
	assert.Empty(t, factory.sent())
}

func TestCascadeCancelledContextNeverMigrates(t *testing.T) {
	t.Parallel()

	factory := newScriptedFactory()
	cascade, manager := startCascade(t, factory, "A", "B")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cascade.Deliver(ctx, "hi")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, factory.sent())
	assert.Equal(t, 0, manager.CurrentIndex())
}

func TestCascadeNotifiesObservers(t *testing.T) {
	t.Parallel()

	factory := newScriptedFactory()
	factory.script("A", quotaResult("A"))
	factory.script("B", textResult("ok"))
	cascade, _ := startCascade(t, factory, "A", "B")

	observer := &recordingObserver{}
	cascade.Observe(observer)
	cascade.Observe(nil)

	_, err := cascade.Deliver(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, []domain.ModelID{"A"}, observer.quota)
	assert.Equal(t, []string{"A->B"}, observer.migrated)
}

func startCascade(t *testing.T, factory *scriptedFactory, primary domain.ModelID, fallbacks ...domain.ModelID) (*Cascade, *SessionManager) {
	t.Helper()

	pool, err := domain.NewModelPool(primary, fallbacks...)
	require.NoError(t, err)

	manager := NewSessionManager(pool, domain.SessionConfig{Temperature: 0.5}, factory, nil)
	require.NoError(t, manager.Start(context.Background()))
	t.Cleanup(func() { _ = manager.Close() })

	return NewCascade(manager, nil), manager
}

type sendResult struct {
	text string
	err  error
}

func textResult(text string) sendResult {
	return sendResult{text: text}
}

func quotaResult(model domain.ModelID) sendResult {
	return sendResult{err: &domain.BackendError{
		Kind:   domain.ErrorKindQuotaExceeded,
		Model:  model,
		Status: 429,
		Err:    errors.New("RESOURCE_EXHAUSTED"),
	}}
}

// scriptedFactory hands out sessions that answer from a per-model script.
type scriptedFactory struct {
	mu        sync.Mutex
	scripts   map[domain.ModelID][]sendResult
	openErrs  map[domain.ModelID]error
	opened    []domain.ModelID
	histories []domain.History
	sends     []domain.ModelID
}

func newScriptedFactory() *scriptedFactory {
	return &scriptedFactory{
		scripts:  map[domain.ModelID][]sendResult{},
		openErrs: map[domain.ModelID]error{},
	}
}

func (f *scriptedFactory) script(model domain.ModelID, results ...sendResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[model] = append(f.scripts[model], results...)
}

func (f *scriptedFactory) failOpen(model domain.ModelID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErrs[model] = err
}

func (f *scriptedFactory) Open(_ context.Context, model domain.ModelID, _ domain.SessionConfig, history domain.History) (ports.BackendSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.opened = append(f.opened, model)
	if err := f.openErrs[model]; err != nil {
		return nil, err
	}
	f.histories = append(f.histories, history.Clone())

	return &scriptedSession{factory: f, model: model, history: history.Clone()}, nil
}

func (f *scriptedFactory) next(model domain.ModelID) sendResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sends = append(f.sends, model)
	queue := f.scripts[model]
	if len(queue) == 0 {
		return sendResult{err: errors.New("no scripted reply for " + string(model))}
	}
	f.scripts[model] = queue[1:]
	return queue[0]
}

func (f *scriptedFactory) sent() []domain.ModelID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ModelID(nil), f.sends...)
}

func (f *scriptedFactory) openedModels() []domain.ModelID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ModelID(nil), f.opened...)
}

func (f *scriptedFactory) openedHistories() []domain.History {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.History(nil), f.histories...)
}

type scriptedSession struct {
	factory *scriptedFactory
	model   domain.ModelID
	history domain.History
	closed  bool
}

func (s *scriptedSession) Model() domain.ModelID {
	return s.model
}

func (s *scriptedSession) Send(_ context.Context, text string) (domain.Reply, error) {
	result := s.factory.next(s.model)
	if result.err != nil {
		return domain.Reply{}, result.err
	}

	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	s.history = s.history.Append(
		domain.TextTurn(domain.RoleUser, text, at),
		domain.TextTurn(domain.RoleModel, result.text, at),
	)
	return domain.Reply{Text: result.text, Model: s.model}, nil
}

func (s *scriptedSession) History() domain.History {
	return s.history
}

func (s *scriptedSession) Close() error {
	s.closed = true
	return nil
}

type recordingObserver struct {
	quota    []domain.ModelID
	migrated []string
}

func (o *recordingObserver) OnQuota(model domain.ModelID, _ error) {
	o.quota = append(o.quota, model)
}

func (o *recordingObserver) OnMigrated(from, to domain.ModelID) {
	o.migrated = append(o.migrated, string(from)+"->"+string(to))
}
