package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agusantonetti/smartmoney/internal/domain"
	"github.com/agusantonetti/smartmoney/internal/engine"
	"github.com/agusantonetti/smartmoney/internal/jobs"
	"github.com/agusantonetti/smartmoney/internal/store"
)

// Broadcaster pushes a document to realtime subscribers of a user.
type Broadcaster interface {
	Broadcast(userID string, doc *store.Document)
}

// Manager owns the in-process state for every active user. It loads
// documents on demand, applies commands through the reducer, runs the
// resulting effects, and folds remote store changes back in last-write-wins.
type Manager struct {
	store       store.Store
	broadcaster Broadcaster
	publisher   jobs.Publisher
	log         zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	state       State
	version     time.Time
	cancelWatch context.CancelFunc
}

// NewManager creates a Manager. broadcaster and publisher may be nil; the
// corresponding effects are then skipped.
func NewManager(s store.Store, b Broadcaster, p jobs.Publisher, log zerolog.Logger) *Manager {
	return &Manager{
		store:       s,
		broadcaster: b,
		publisher:   p,
		log:         log,
		sessions:    make(map[string]*session),
	}
}

// Get returns the current state for a user, loading it from the store on
// first access. A user with no stored document starts from the default
// profile.
func (m *Manager) Get(ctx context.Context, userID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.sessionLocked(ctx, userID)
	if err != nil {
		return State{}, err
	}
	return sess.state, nil
}

// Apply runs a command for a user and executes its effects. It returns the
// state after the command.
func (m *Manager) Apply(ctx context.Context, userID string, cmd Command) (State, error) {
	m.mu.Lock()
	sess, err := m.sessionLocked(ctx, userID)
	if err != nil {
		m.mu.Unlock()
		return State{}, err
	}

	// Drop remote documents older than what this process has already seen
	// or written. Self-echoes from the store arrive here too.
	if rd, ok := cmd.(ReplaceDocument); ok && rd.Remote {
		if !rd.Document.UpdatedAt.After(sess.version) {
			current := sess.state
			m.mu.Unlock()
			return current, nil
		}
		sess.version = rd.Document.UpdatedAt
	}

	prevState, prevVersion := sess.state, sess.version

	next, effects := Reduce(sess.state, cmd)
	sess.state = next

	var saveDoc *store.Document
	for _, eff := range effects {
		if eff == EffectPersist {
			saveDoc = next.Document()
			saveDoc.UpdatedAt = time.Now().UTC()
			sess.version = saveDoc.UpdatedAt
		}
	}
	m.mu.Unlock()

	for _, eff := range effects {
		switch eff {
		case EffectPersist:
			if err := m.store.Save(ctx, userID, saveDoc); err != nil {
				// The store never accepted this state; roll the session back
				// so reads keep serving what is actually persisted. Skip the
				// rollback if a later command already moved the version on.
				m.mu.Lock()
				if sess.version.Equal(saveDoc.UpdatedAt) {
					sess.state = prevState
					sess.version = prevVersion
				}
				m.mu.Unlock()
				return prevState, fmt.Errorf("persist state for %s: %w", userID, err)
			}
		case EffectBroadcast:
			if m.broadcaster != nil {
				m.broadcaster.Broadcast(userID, next.Document())
			}
		case EffectSnapshot:
			m.publishSnapshot(ctx, userID, next)
		}
	}

	return next, nil
}

func (m *Manager) publishSnapshot(ctx context.Context, userID string, s State) {
	if m.publisher == nil {
		return
	}
	job := &jobs.ExportSnapshotJob{
		UserID:     userID,
		SnapshotTS: time.Now().UTC(),
		Metrics:    engine.ComputeMetrics(s.Transactions, s.Profile),
	}
	if err := m.publisher.PublishExportSnapshot(ctx, job); err != nil {
		m.log.Warn().Err(err).Str("user_id", userID).Msg("Snapshot export not queued")
	}
}

// sessionLocked returns the session for userID, creating it if needed.
// Callers must hold m.mu.
func (m *Manager) sessionLocked(ctx context.Context, userID string) (*session, error) {
	if sess, ok := m.sessions[userID]; ok {
		return sess, nil
	}

	doc, err := m.store.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("load state for %s: %w", userID, err)
		}
		profile := domain.DefaultProfile("")
		doc = &store.Document{Profile: profile}
	}

	sess := &session{state: FromDocument(doc), version: doc.UpdatedAt}
	m.sessions[userID] = sess
	m.startWatch(userID, sess)
	return sess, nil
}

// startWatch subscribes to store changes for userID and replaces the local
// state with each remote document. The store's notification carries the full
// document, so the newest write always wins.
func (m *Manager) startWatch(userID string, sess *session) {
	ctx, cancel := context.WithCancel(context.Background())
	sess.cancelWatch = cancel

	ch, err := m.store.Watch(ctx, userID)
	if err != nil {
		m.log.Warn().Err(err).Str("user_id", userID).Msg("Store watch unavailable")
		cancel()
		sess.cancelWatch = nil
		return
	}

	go func() {
		for doc := range ch {
			if _, err := m.Apply(ctx, userID, ReplaceDocument{Document: doc, Remote: true}); err != nil {
				m.log.Warn().Err(err).Str("user_id", userID).Msg("Remote document not applied")
			}
		}
	}()
}

// Close stops all store watches.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range m.sessions {
		if sess.cancelWatch != nil {
			sess.cancelWatch()
		}
	}
}
