package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"agentpack/internal/fileutil"
	"agentpack/internal/logging"
)

// Prefix names per-run scratch directories inside the output directory.
const Prefix = ".agentpack-"

// backupDirName holds outputs displaced by Commit until the run finishes.
const backupDirName = ".previous"

// Dir is one run's scratch directory.
type Dir struct {
	outDir string
	path   string
}

// New returns the staging directory for runID inside outDir. Nothing is
// created until Create is called.
func New(outDir, runID string) *Dir {
	return &Dir{outDir: outDir, path: filepath.Join(outDir, Prefix+runID)}
}

// Create makes the scratch directory.
func (d *Dir) Create() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	return nil
}

// Root returns the scratch directory path.
func (d *Dir) Root() string {
	return d.path
}

// Path resolves a slash-separated artifact name inside the scratch directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, filepath.FromSlash(name))
}

// Discard removes the scratch directory and everything left in it.
func (d *Dir) Discard(logger *slog.Logger) {
	if err := os.RemoveAll(d.path); err != nil && logger != nil {
		logger.Warn("failed to remove staging directory",
			logging.String("path", d.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "staging_cleanup_failed"),
		)
	}
}

// Commit moves staged files and the sound directory into the output
// directory. Sound artifacts from earlier runs are replaced; when this run
// produced none, a previous sound directory is removed so manifests never
// point at stale files. Files are moved in the given order.
//
// Existing outputs are set aside inside the scratch directory before being
// replaced. If any move fails, everything committed so far is removed and the
// set-aside outputs are restored, leaving the previous run's artifacts intact.
func (d *Dir) Commit(files []string, soundDir string, hasSounds bool) (err error) {
	var placed []placement
	defer func() {
		if err == nil {
			return
		}
		if rbErr := rollback(placed); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("restore previous outputs: %w", rbErr))
		}
	}()

	p, err := d.setAside(soundDir)
	if err != nil {
		return fmt.Errorf("commit sound directory: %w", err)
	}
	placed = append(placed, p)
	if hasSounds {
		if err := fileutil.ReplaceDir(d.Path(soundDir), p.target); err != nil {
			return fmt.Errorf("commit sound directory: %w", err)
		}
	}

	for _, name := range files {
		p, err := d.setAside(name)
		if err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		placed = append(placed, p)
		if err := fileutil.MoveFile(d.Path(name), p.target); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
	}
	return nil
}

// placement records one committed output and where its predecessor was moved.
// backup is empty when nothing existed at target.
type placement struct {
	target string
	backup string
}

func (d *Dir) setAside(name string) (placement, error) {
	p := placement{target: filepath.Join(d.outDir, filepath.FromSlash(name))}
	if err := os.MkdirAll(filepath.Dir(p.target), 0o755); err != nil {
		return p, err
	}
	if _, err := os.Lstat(p.target); err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, err
	}
	backup := filepath.Join(d.path, backupDirName, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(backup), 0o755); err != nil {
		return p, err
	}
	if err := os.Rename(p.target, backup); err != nil {
		return p, fmt.Errorf("set aside %s: %w", p.target, err)
	}
	p.backup = backup
	return p, nil
}

func rollback(placed []placement) error {
	var errs []error
	for i := len(placed) - 1; i >= 0; i-- {
		p := placed[i]
		if err := os.RemoveAll(p.target); err != nil {
			errs = append(errs, err)
			continue
		}
		if p.backup == "" {
			continue
		}
		if err := os.Rename(p.backup, p.target); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
