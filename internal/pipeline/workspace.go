package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// Workspace owns a shared scratch directory. Each run operates in its own
// uniquely named subtree so concurrent runs never touch each other's files.
type Workspace struct {
	root   string
	logger logger.Logger
}

func NewWorkspace(root string, log logger.Logger) *Workspace {
	return &Workspace{
		root:   root,
		logger: log,
	}
}

// Init clears and recreates the workspace root. Called once at process start
// so leftovers from a crashed run never leak into new runs.
func (w *Workspace) Init() error {
	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("failed to clear workspace root: %w", err)
	}
	if err := os.MkdirAll(w.root, 0755); err != nil {
		return fmt.Errorf("failed to create workspace root: %w", err)
	}
	w.logger.Info("Workspace initialized", logger.String("root", w.root))
	return nil
}

// Root returns the shared workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Begin creates the scratch subtree for one run. The directory name combines
// the clock with the run ID: two uploads within the same clock tick must not
// collide.
func (w *Workspace) Begin(runID string) (*RunDir, error) {
	dir := filepath.Join(w.root, fmt.Sprintf("%d_%s", time.Now().UnixNano(), runID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	return &RunDir{
		dir:    dir,
		logger: w.logger.With(logger.String("run_id", runID)),
	}, nil
}

// RunDir is the scratch subtree of one pipeline run. Every uploaded and
// derived file of the run lives under it, so releasing the subtree removes
// them all, including files from pages that were still in flight when the run
// was cancelled.
type RunDir struct {
	dir     string
	release sync.Once
	logger  logger.Logger
}

// Dir returns the run directory path.
func (r *RunDir) Dir() string {
	return r.dir
}

// Path issues a path inside the run directory for a derived file.
func (r *RunDir) Path(name string) string {
	return filepath.Join(r.dir, name)
}

// Save writes data into the run directory and returns its path.
func (r *RunDir) Save(name string, data []byte) (string, error) {
	path := r.Path(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return path, nil
}

// Release removes the run subtree. Safe to call more than once; removal
// happens exactly once.
func (r *RunDir) Release() {
	r.release.Do(func() {
		if err := os.RemoveAll(r.dir); err != nil {
			r.logger.Error("Failed to release run directory",
				logger.String("dir", r.dir),
				logger.Error(err),
			)
			return
		}
		r.logger.Debug("Released run directory", logger.String("dir", r.dir))
	})
}
