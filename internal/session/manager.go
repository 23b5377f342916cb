package session

import (
	"context"
	"log/slog"
	"sync"

	"agent-console/internal/call"
	"agent-console/internal/config"
	"agent-console/internal/status"
)

// Manager owns one Session per signed-in agent. Sessions are created
// lazily on first use and torn down on sign-out or shutdown.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	segments status.Store
	callLog  call.Log
	presence PresencePublisher
	sim      config.SimConfig
	log      *slog.Logger

	rootCtx context.Context
}

func NewManager(rootCtx context.Context, segments status.Store, callLog call.Log, presence PresencePublisher, sim config.SimConfig, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		segments: segments,
		callLog:  callLog,
		presence: presence,
		sim:      sim,
		log:      log,
		rootCtx:  rootCtx,
	}
}

// Get returns the agent's session, creating and starting it if needed.
func (m *Manager) Get(ctx context.Context, agentID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[agentID]; ok {
		return s
	}

	tracker := status.NewTracker(agentID, m.segments, m.log)
	controller := call.NewController(agentID, m.callLog, tracker, m.log)
	s := New(agentID, tracker, controller, Options{
		Delay:       UniformDelay(m.sim.MinDelay, m.sim.MaxDelay),
		SimDisabled: m.sim.Disabled,
		Presence:    m.presence,
		Logger:      m.log,
	})
	s.Start(ctx)
	go s.Run(m.rootCtx)

	m.sessions[agentID] = s
	m.log.Info("session started", "agent_id", agentID)
	return s
}

// Peek returns an existing session without creating one.
func (m *Manager) Peek(agentID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[agentID]
	return s, ok
}

// Release tears down the agent's session on sign-out.
func (m *Manager) Release(agentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[agentID]; ok {
		s.Close()
		delete(m.sessions, agentID)
		m.log.Info("session released", "agent_id", agentID)
	}
}

// Close tears down every session. Called on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}
