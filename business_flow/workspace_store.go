// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medops/core-engine/app/services"
	"github.com/medops/core-engine/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var activeWorkspaces = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "core_active_workspaces",
	Help: "Number of live workspace sessions",
})

type workspaceEntry struct {
	flow       *WorkspaceFlow
	lastAccess time.Time
}

// WorkspaceStore registers live workspace sessions by id. Sessions that sit
// idle past the TTL are collected by a background sweeper; everything a
// session held is controller state only, so dropping it loses nothing
// persistent.
type WorkspaceStore struct {
	registry services.RegistryAPI
	ttl      time.Duration

	mu       sync.RWMutex
	sessions map[string]*workspaceEntry
}

// NewWorkspaceStore constructs a store over the given registry boundary
func NewWorkspaceStore(registry services.RegistryAPI, ttl time.Duration) *WorkspaceStore {
	if ttl <= 0 {
		ttl = utils.WorkspaceTTL
	}
	return &WorkspaceStore{
		registry: registry,
		ttl:      ttl,
		sessions: make(map[string]*workspaceEntry),
	}
}

// Create opens a new workspace session and returns it
func (s *WorkspaceStore) Create() *WorkspaceFlow {
	flow := NewWorkspaceFlow(uuid.New().String(), s.registry)

	s.mu.Lock()
	s.sessions[flow.ID] = &workspaceEntry{flow: flow, lastAccess: utils.UTCNow()}
	s.mu.Unlock()

	activeWorkspaces.Inc()
	return flow
}

// Get returns a live session and bumps its idle clock
func (s *WorkspaceStore) Get(id string) (*WorkspaceFlow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	entry.lastAccess = utils.UTCNow()
	return entry.flow, nil
}

// Remove drops a session explicitly
func (s *WorkspaceStore) Remove(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		activeWorkspaces.Dec()
	}
}

// Len reports the number of live sessions
func (s *WorkspaceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSweeper launches the idle-session collector. The returned cancel
// function stops it.
func (s *WorkspaceStore) StartSweeper(parent context.Context, interval time.Duration) func() {
	sweepCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = utils.WorkspaceSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
	return cancel
}

func (s *WorkspaceStore) sweep() {
	cutoff := utils.UTCNow().Add(-s.ttl)

	s.mu.Lock()
	var dropped int
	for id, entry := range s.sessions {
		if entry.lastAccess.Before(cutoff) {
			delete(s.sessions, id)
			dropped++
		}
	}
	s.mu.Unlock()

	activeWorkspaces.Sub(float64(dropped))
}
