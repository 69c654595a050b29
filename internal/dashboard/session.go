package dashboard

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spybee/helpdesk/internal/config"
	"github.com/spybee/helpdesk/internal/domain"
	"github.com/spybee/helpdesk/internal/observability"
	"github.com/spybee/helpdesk/internal/service"
	"github.com/spybee/helpdesk/internal/sync"
)

// Session owns one admin dashboard's ticket store, coordinator and board.
// Each session is an independent view of the ticket table; its store is the
// single source of truth for that view between refreshes.
type Session struct {
	ID        string
	AdminID   string
	Store     *sync.Store
	Board     *sync.Board
	CreatedAt time.Time

	mu       stdsync.Mutex
	lastSeen time.Time
}

// Touch records activity for idle pruning.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry tracks live dashboard sessions and builds new ones.
type Registry struct {
	remote        sync.RemoteService
	notifications *service.NotificationService
	metrics       *observability.Metrics
	logger        *zap.Logger
	syncCfg       config.SyncConfig

	mu       stdsync.Mutex
	sessions map[string]*Session
}

// NewRegistry constructs the registry.
func NewRegistry(remote sync.RemoteService, notifications *service.NotificationService, metrics *observability.Metrics, logger *zap.Logger, syncCfg config.SyncConfig) *Registry {
	return &Registry{
		remote:        remote,
		notifications: notifications,
		metrics:       metrics,
		logger:        logger,
		syncCfg:       syncCfg,
		sessions:      make(map[string]*Session),
	}
}

// Open creates a session for the admin and loads the initial ticket store.
func (r *Registry) Open(ctx context.Context, adminID string) (*Session, error) {
	store := sync.NewStore()
	session := &Session{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		Store:     store,
		CreatedAt: time.Now(),
	}
	session.Touch()

	coordinator := sync.NewCoordinator(sync.CoordinatorDeps{
		Remote:   r.remote,
		Store:    store,
		Notifier: r.notifier(session),
		Logger:   r.logger.With(zap.String("session_id", session.ID)),
	}, sync.CoordinatorOptions{
		UpdateTimeout: r.syncCfg.UpdateTimeout(),
		RefreshDelay:  r.syncCfg.RefreshDelay(),
	})
	session.Board = sync.NewBoard(sync.BoardDeps{
		Coordinator: coordinator,
		Store:       store,
		Remote:      r.remote,
		Logger:      r.logger.With(zap.String("session_id", session.ID)),
	}, r.syncCfg.PendingGrace())

	if err := session.Board.Refresh(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	r.logger.Info("dashboard session opened",
		zap.String("session_id", session.ID),
		zap.String("admin_id", adminID),
		zap.Int("tickets", store.Len()))
	return session, nil
}

// Get returns a live session by id.
func (r *Registry) Get(sessionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	return session, ok
}

// Close drops a session.
func (r *Registry) Close(sessionID string) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
}

// PruneIdle removes sessions idle beyond the configured TTL. Returns the
// number removed.
func (r *Registry) PruneIdle() int {
	ttl := r.syncCfg.SessionTTL()
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, session := range r.sessions {
		if session.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// notifier routes sync outcomes to the log, metrics and the Redis feed.
func (r *Registry) notifier(session *Session) sync.Notifier {
	return sync.NotifierFunc(func(n sync.Notification) {
		outcome := "success"
		if n.Kind == sync.NotifyError {
			outcome = "error"
		}
		r.metrics.RecordSyncOutcome(outcome)
		if r.notifications == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		r.notifications.Push(ctx, service.FeedEntry{
			Kind:     string(n.Kind),
			TicketID: n.TicketID,
			Message:  n.Message,
		})
	})
}

// Stats summarizes a session's store by status for the stat cards.
func Stats(store *sync.Store) map[domain.TicketStatus]int {
	counts := map[domain.TicketStatus]int{
		domain.TicketStatusOpen:       0,
		domain.TicketStatusInProgress: 0,
		domain.TicketStatusClosed:     0,
	}
	for _, t := range store.Snapshot() {
		counts[t.Status]++
	}
	return counts
}
