package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"classpulse-backend/internal/models"
)

// AlertStore is the durable alert sink. InsertIfNotRecent must atomically
// decline the insert when an alert of the same (session, type) was triggered
// within window of the new alert's TriggeredAt.
type AlertStore interface {
	InsertIfNotRecent(ctx context.Context, alert *models.Alert, window time.Duration) (inserted bool, err error)
}

type cooldownKey struct {
	session uuid.UUID
	kind    models.AlertType
}

// CooldownTracker suppresses repeat alerts of the same kind within a session.
// The check-then-write is serialized per (session, kind) with a keyed mutex on
// top of the store's conditional insert: the mutex keeps concurrent in-process
// ingests from racing, the conditional insert keeps the invariant durable.
type CooldownTracker struct {
	store  AlertStore
	window time.Duration

	mu    sync.Mutex
	locks map[cooldownKey]*sync.Mutex
}

func NewCooldownTracker(store AlertStore, window time.Duration) *CooldownTracker {
	return &CooldownTracker{
		store:  store,
		window: window,
		locks:  make(map[cooldownKey]*sync.Mutex),
	}
}

// TryFire writes a new alert unless one of the same kind fired within the
// cooldown window. Returns the stored alert, or nil when suppressed.
func (t *CooldownTracker) TryFire(ctx context.Context, sessionID uuid.UUID, kind models.AlertType, message string, now time.Time) (*models.Alert, error) {
	lock := t.keyLock(cooldownKey{session: sessionID, kind: kind})
	lock.Lock()
	defer lock.Unlock()

	alert := &models.Alert{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Type:        kind,
		Message:     message,
		TriggeredAt: now,
	}

	inserted, err := t.store.InsertIfNotRecent(ctx, alert, t.window)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, nil
	}
	return alert, nil
}

func (t *CooldownTracker) keyLock(key cooldownKey) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[key] = lock
	}
	return lock
}
