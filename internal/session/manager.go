package session

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Manager is the session context shared by the API client and the screens.
// It caches the current session, serializes writes to the Store and
// broadcasts every auth-state transition to subscribers.
type Manager struct {
	mu      sync.Mutex
	store   Store
	logger  *zap.Logger
	current Session
	loaded  bool
	subs    map[int]chan Session
	nextSub int
}

func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  store,
		logger: logger.Named("session"),
		subs:   map[int]chan Session{},
	}
}

// Load returns the current session, reading the store on first use.
// A corrupt stored session is cleared and reported as Anonymous.
func (m *Manager) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return m.current, nil
	}

	sess, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, ErrInvalidSession) {
			return Anonymous(), err
		}
		m.logger.Warn("discarding invalid stored session", zap.Error(err))
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Warn("clear invalid session", zap.Error(clearErr))
		}
		sess = Anonymous()
	}

	m.current = sess
	m.loaded = true
	return sess, nil
}

func (m *Manager) Save(sess Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(sess); err != nil {
		return err
	}
	m.transition(sess)
	m.logger.Info("session saved", zap.String("user", sess.UserName()))
	return nil
}

func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return err
	}
	if m.loaded && !m.current.Authenticated {
		return nil
	}
	m.transition(Anonymous())
	m.logger.Info("session cleared")
	return nil
}

// Token returns the bearer token of the current session, if any.
func (m *Manager) Token() string {
	sess, err := m.Load()
	if err != nil || !sess.Authenticated {
		return ""
	}
	return sess.Token
}

// Subscribe returns a channel receiving each new session state. Slow
// subscribers only ever see the latest state. Call cancel to unsubscribe.
func (m *Manager) Subscribe() (<-chan Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Session, 1)
	m.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// transition must be called with mu held.
func (m *Manager) transition(sess Session) {
	changed := !m.loaded || !m.current.same(sess)
	m.current = sess
	m.loaded = true
	if !changed {
		return
	}
	for _, ch := range m.subs {
		publish(ch, sess)
	}
}

func publish(ch chan Session, sess Session) {
	select {
	case ch <- sess:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- sess:
	default:
	}
}
