// Package service implements SPEC_FULL.md §6.11's "run as a system
// service" subcommand, wrapping github.com/takama/daemon so mode1090 can
// install/start/stop/remove itself as a systemd/launchd/Windows service
// alongside the default foreground run. No teacher/pack file wraps a
// service manager, so this is a thin pass-through over daemon.Daemon's
// own install/remove/start/stop/status calls.
package service

import (
	"fmt"

	"github.com/takama/daemon"
)

const (
	name        = "mode1090"
	description = "1090MHz Mode S/ADS-B receiver and decoder"
)

// Manager wraps a takama/daemon handle for the service subcommands.
type Manager struct {
	d daemon.Daemon
}

// New opens a Manager for the current platform's service manager.
func New() (*Manager, error) {
	d, err := daemon.New(name, description, daemon.SystemDaemon)
	if err != nil {
		return nil, fmt.Errorf("service: new daemon: %w", err)
	}
	return &Manager{d: d}, nil
}

// Install registers mode1090 as a system service, re-invoked with args on
// every service start; the "service install" subcommand passes none, so
// the service runs the bare root command.
func (m *Manager) Install(args ...string) (string, error) {
	return m.d.Install(args...)
}

// Remove unregisters the service.
func (m *Manager) Remove() (string, error) {
	return m.d.Remove()
}

// Start starts the installed service.
func (m *Manager) Start() (string, error) {
	return m.d.Start()
}

// Stop stops the running service.
func (m *Manager) Stop() (string, error) {
	return m.d.Stop()
}

// Status reports the service's current status.
func (m *Manager) Status() (string, error) {
	return m.d.Status()
}
