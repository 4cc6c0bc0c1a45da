// Package lifecycle drives the daemon through its boot and shutdown
// phases: Init, PluginsLoad, ConnectChannels, Ready, and Shutdown. Each
// attached Component gets an on_init/on_start/on_shutdown callback at the
// matching phase boundary, so subsystems (stores, provider registry,
// scheduler) can wire themselves up in a fixed, observable order.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/logging"
)

var log = logging.New("lifecycle")

// State is one phase of the daemon's boot/shutdown sequence.
type State string

const (
	StateInit            State = "init"
	StatePluginsLoad     State = "plugins_load"
	StateConnectChannels State = "connect_channels"
	StateReady           State = "ready"
	StateShutdown        State = "shutdown"
)

// Component is anything the Manager should notify at phase boundaries.
// Every method is optional — embed NoopComponent to satisfy the interface
// and override only what's needed.
type Component interface {
	OnInit(ctx context.Context) error
	OnStart(ctx context.Context) error
	OnShutdown(ctx context.Context) error
}

// NoopComponent gives every phase callback a default no-op body so callers
// only implement the hooks they actually need.
type NoopComponent struct{}

func (NoopComponent) OnInit(ctx context.Context) error     { return nil }
func (NoopComponent) OnStart(ctx context.Context) error    { return nil }
func (NoopComponent) OnShutdown(ctx context.Context) error { return nil }

// Manager sequences the daemon's boot phases and fans each one out to its
// attached components.
type Manager struct {
	state      State
	components []Component
}

// New returns a Manager in the Init phase with no components attached.
func New() *Manager {
	return &Manager{state: StateInit}
}

// Attach registers a component to be notified at each phase boundary.
// Attach must be called before Start; components attached afterward are
// never notified of phases that have already run.
func (m *Manager) Attach(c Component) {
	m.components = append(m.components, c)
}

// State reports the manager's current phase.
func (m *Manager) State() State {
	return m.state
}

// Start walks every component through Init → PluginsLoad → ConnectChannels
// → Ready in order, calling OnInit for every component before any
// component's OnStart runs. It stops and returns the first error any
// component reports; the manager's state reflects the phase in which the
// failure happened.
func (m *Manager) Start(ctx context.Context) error {
	log.Info("lifecycle phase: init")
	m.state = StateInit
	for _, c := range m.components {
		if err := c.OnInit(ctx); err != nil {
			return fmt.Errorf("component init failed: %w", err)
		}
	}

	log.Info("lifecycle phase: plugins load")
	m.state = StatePluginsLoad

	log.Info("lifecycle phase: connect channels")
	m.state = StateConnectChannels
	for _, c := range m.components {
		if err := c.OnStart(ctx); err != nil {
			return fmt.Errorf("component start failed: %w", err)
		}
	}

	log.Info("lifecycle phase: ready")
	m.state = StateReady
	return nil
}

// Shutdown notifies every component in attach order, logging (but not
// aborting on) individual component failures so one misbehaving component
// never prevents the rest from cleaning up.
func (m *Manager) Shutdown(ctx context.Context) {
	log.Info("lifecycle phase: shutdown")
	m.state = StateShutdown
	for _, c := range m.components {
		if err := c.OnShutdown(ctx); err != nil {
			log.WithError(err).Warn("component shutdown error")
		}
	}
}
