package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/novelbuilder/internal/logfields"
)

// Manager owns one staging directory.
type Manager struct {
	baseDir string
	tempDir string
}

// NewManager returns a manager creating its directory under baseDir, or
// the system temp directory when baseDir is empty.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create makes a fresh timestamped directory.
func (m *Manager) Create() error {
	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace base directory: %w", err)
	}
	pattern := fmt.Sprintf("novelbuilder-%s-*", time.Now().Format("20060102-150405"))
	tempDir, err := os.MkdirTemp(m.baseDir, pattern)
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.tempDir = tempDir
	slog.Debug("Created workspace", logfields.Path(tempDir))
	return nil
}

// GetPath returns the workspace directory, empty before Create.
func (m *Manager) GetPath() string {
	return m.tempDir
}

// Commit copies everything staged in the workspace into dst, replacing
// files of the same name.
func (m *Manager) Commit(dst string) error {
	if m.tempDir == "" {
		return fmt.Errorf("workspace not created")
	}
	if err := CopyDir(m.tempDir, dst); err != nil {
		return fmt.Errorf("failed to commit workspace: %w", err)
	}
	slog.Debug("Committed workspace", logfields.Path(dst))
	return nil
}

// Cleanup removes the workspace directory. It is safe to call twice.
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}
	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}
