// Package service manages the systemd unit that runs the guard service at
// boot and restarts it on failure.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// UnitName is the name of the installed systemd unit.
const UnitName = "faceguard.service"

// DefaultUnitDir is the directory unit files are installed to.
const DefaultUnitDir = "/etc/systemd/system"

// Manager installs and controls the systemd unit.
type Manager struct {
	sysctl  Systemctl
	fs      vfs.FileSystem
	logger  *slog.Logger
	unitDir string
}

// ManagerOption is a function that configures a Manager.
type ManagerOption func(*Manager)

// WithUnitDir sets the directory unit files are installed to.
func WithUnitDir(dir string) ManagerOption {
	return func(m *Manager) {
		m.unitDir = dir
	}
}

// NewManager creates a new service manager.
func NewManager(sysctl Systemctl, fs vfs.FileSystem, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		sysctl:  sysctl,
		fs:      fs,
		logger:  logger.With("component", "service"),
		unitDir: DefaultUnitDir,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// UnitPath returns the filesystem path of the installed unit file.
func (m *Manager) UnitPath() string {
	return filepath.Join(m.unitDir, UnitName)
}

// Install writes the unit file, reloads systemd and enables the unit so it
// starts at boot.
func (m *Manager) Install(ctx context.Context, unit Unit) error {
	contents, err := unit.Render()
	if err != nil {
		return err
	}

	path := m.UnitPath()
	if err = m.fs.MkdirAll(m.unitDir, 0o755); err != nil {
		return fmt.Errorf("failed creating unit directory: %w", err)
	}
	if err = vfs.WriteFile(m.fs, path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("failed writing unit file: %w", err)
	}
	m.logger.Debug("wrote unit file", "path", path)

	if _, err = m.sysctl.Run(ctx, "daemon-reload"); err != nil {
		return err
	}
	if _, err = m.sysctl.Run(ctx, "enable", UnitName); err != nil {
		return err
	}
	m.logger.Info("service installed", "unit", UnitName)

	return nil
}

// Uninstall disables the unit, removes the unit file and reloads systemd. The
// unit is stopped first if it is running.
func (m *Manager) Uninstall(ctx context.Context) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if !status.Exists {
		return fmt.Errorf("unit %s is not installed", UnitName)
	}

	if status.Active {
		if _, err = m.sysctl.Run(ctx, "stop", UnitName); err != nil {
			return err
		}
	}
	if _, err = m.sysctl.Run(ctx, "disable", UnitName); err != nil {
		return err
	}

	if err = m.fs.Remove(m.UnitPath()); err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed removing unit file: %w", err)
	}

	if _, err = m.sysctl.Run(ctx, "daemon-reload"); err != nil {
		return err
	}
	m.logger.Info("service uninstalled", "unit", UnitName)

	return nil
}

// Start starts the unit.
func (m *Manager) Start(ctx context.Context) error {
	_, err := m.sysctl.Run(ctx, "start", UnitName)
	return err
}

// Stop stops the unit.
func (m *Manager) Stop(ctx context.Context) error {
	_, err := m.sysctl.Run(ctx, "stop", UnitName)
	return err
}

// Status describes the current state of the unit as reported by systemd.
type Status struct {
	Exists        bool
	Enabled       bool
	Active        bool
	LoadState     string
	ActiveState   string
	SubState      string
	UnitFileState string
	PID           int
}

var statusProperties = []string{
	"LoadState", "ActiveState", "SubState", "UnitFileState", "MainPID",
}

// Status reports the state of the unit, parsed from systemctl show output.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	out, err := m.sysctl.Run(ctx, "show", UnitName,
		"--property="+strings.Join(statusProperties, ","), "--no-pager")
	if err != nil {
		return Status{}, err
	}

	var status Status
	for _, line := range strings.Split(out, "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "LoadState":
			status.LoadState = val
		case "ActiveState":
			status.ActiveState = val
		case "SubState":
			status.SubState = val
		case "UnitFileState":
			status.UnitFileState = val
		case "MainPID":
			if pid, perr := strconv.Atoi(val); perr == nil {
				status.PID = pid
			}
		}
	}

	status.Exists = status.LoadState == "loaded"
	status.Enabled = status.UnitFileState == "enabled"
	status.Active = status.ActiveState == "active"

	return status, nil
}
