package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agentpack/internal/logging"
)

// CleanResult contains the outcome of an abandoned directory cleanup.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanAbandoned removes staging directories in outDir older than maxAge.
// They are left behind by runs that were killed before they could discard
// their scratch space. Callers must hold the output lock; a zero maxAge
// removes every staging directory.
func CleanAbandoned(ctx context.Context, outDir string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	result := CleanResult{}

	outDir = strings.TrimSpace(outDir)
	if outDir == "" {
		return result
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: outDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), Prefix) {
			continue
		}

		dirPath := filepath.Join(outDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if maxAge > 0 && !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			if logger != nil {
				logger.Warn("failed to remove abandoned staging directory",
					logging.String("path", dirPath),
					logging.Error(err),
					logging.String(logging.FieldEventType, "staging_cleanup_failed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed abandoned staging directory",
				logging.String("path", dirPath),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.String(logging.FieldEventType, "staging_cleanup"),
			)
		}
	}
	return result
}
