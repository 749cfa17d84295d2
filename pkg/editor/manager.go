package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelierhq/atelier/pkg/eventbus"
	"github.com/atelierhq/atelier/pkg/persistence"
	"github.com/atelierhq/atelier/pkg/registry"
	"github.com/atelierhq/atelier/pkg/services"
)

// DefaultSessionTTL is how long a session may sit idle before the janitor
// closes it.
const DefaultSessionTTL = 30 * time.Minute

// Manager hands out one shared session per workflow and reaps the ones
// nobody is using.
type Manager struct {
	persistence persistence.Persistence
	workflows   *services.Workflow
	steps       *services.Step
	edges       *services.Edge
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger
	ttl         time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	janitor  *cron.Cron
}

// NewManager creates a session manager. publisher and tracer may be nil.
func NewManager(
	p persistence.Persistence,
	reg *registry.Registry,
	publisher eventbus.EventPublisher,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		persistence: p,
		workflows:   services.NewWorkflow(p),
		steps:       services.NewStep(p, reg),
		edges:       services.NewEdge(p),
		publisher:   publisher,
		tracer:      tracer,
		logger:      logger.With("module", "editor_manager"),
		ttl:         DefaultSessionTTL,
		sessions:    make(map[string]*Session),
	}
}

// SetSessionTTL overrides the idle timeout used by CloseIdle and the
// janitor.
func (m *Manager) SetSessionTTL(ttl time.Duration) {
	if ttl > 0 {
		m.ttl = ttl
	}
}

// Workflows exposes the workflow service the manager was built around.
func (m *Manager) Workflows() *services.Workflow {
	return m.workflows
}

// Open returns the session for a workflow, creating it on first use. The
// workflow must exist.
func (m *Manager) Open(ctx context.Context, workflowID string) (*Session, error) {
	if _, err := m.persistence.WorkflowRepository().GetByID(ctx, workflowID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[workflowID]
	if !exists {
		session = NewSession(workflowID, m.steps, m.edges, m.publisher, m.tracer, m.logger)
		m.sessions[workflowID] = session

		m.logger.Info("editor session opened", "workflow_id", workflowID)
	}

	return session, nil
}

// Close drops the session for a workflow, if any. Its history is lost.
func (m *Manager) Close(workflowID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[workflowID]; exists {
		delete(m.sessions, workflowID)
		m.logger.Info("editor session closed", "workflow_id", workflowID)
	}
}

// CloseIdle drops every session idle longer than the configured TTL and
// returns how many were closed.
func (m *Manager) CloseIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.ttl)
	closed := 0

	for workflowID, session := range m.sessions {
		if session.LastActive().Before(cutoff) {
			delete(m.sessions, workflowID)
			closed++

			m.logger.Info("idle editor session reaped", "workflow_id", workflowID)
		}
	}

	return closed
}

// SessionCount returns the number of live sessions.
func (m *Manager) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// StartJanitor schedules periodic idle-session reaping.
func (m *Manager) StartJanitor(spec string) error {
	janitor := cron.New()

	if _, err := janitor.AddFunc(spec, func() {
		if closed := m.CloseIdle(); closed > 0 {
			m.logger.Debug("session janitor pass", "closed", closed)
		}
	}); err != nil {
		return err
	}

	janitor.Start()
	m.janitor = janitor

	return nil
}

// StopJanitor halts the reaping schedule, waiting for a running pass.
func (m *Manager) StopJanitor() {
	if m.janitor != nil {
		<-m.janitor.Stop().Done()
		m.janitor = nil
	}
}
