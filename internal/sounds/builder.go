package sounds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"agentpack/internal/animation"
	"agentpack/internal/logging"
	"agentpack/internal/resources"
	"agentpack/internal/services"
	"agentpack/internal/services/ffmpeg"
)

// VerifyFunc inspects a produced artifact. Returning an error marked as a
// transcode failure drops the cues that share it.
type VerifyFunc func(ctx context.Context, artifactPath string) error

// Options controls Build.
type Options struct {
	Transcoder ffmpeg.AudioTranscoder
	Format     string
	// OutputDir receives Directory/<stem>.<format> artifacts.
	OutputDir string
	Directory string
	Workers   int
	// Timeout bounds a single transcode; zero disables the limit.
	Timeout  time.Duration
	Verify   VerifyFunc
	Progress func(done, total int)
	Logger   *slog.Logger
}

type sourceGroup struct {
	source   string
	artifact string
	cues     []animation.Cue
	duration int
	err      error
}

// Build transcodes every cue referenced by model and returns the manifest plus
// warnings for cues that were dropped.
func Build(ctx context.Context, model *animation.Model, locator resources.Locator, opts Options) (Manifest, []Warning, error) {
	if opts.Transcoder == nil {
		return Manifest{}, nil, errors.New("sound build: transcoder is required")
	}
	format := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(opts.Format), "."))
	if format == "" {
		return Manifest{}, nil, fmt.Errorf("%w: sound build: audio format is required", services.ErrConfiguration)
	}
	directory := strings.Trim(filepath.ToSlash(opts.Directory), "/")
	if directory == "" {
		directory = "sounds"
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "sounds"))

	groups, err := groupCues(ctx, model, locator, format, directory)
	if err != nil {
		return Manifest{}, nil, err
	}
	if hasPending(groups) {
		if err := os.MkdirAll(filepath.Join(opts.OutputDir, filepath.FromSlash(directory)), 0o755); err != nil {
			return Manifest{}, nil, fmt.Errorf("create sound directory: %w", err)
		}
	}

	var done atomic.Int64
	total := len(groups)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, group := range groups {
		if group.err != nil {
			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), total)
			}
			continue
		}
		g.Go(func() error {
			group.err = transcode(gctx, locator, opts, format, group)
			if group.err != nil && (!services.IsRecoverable(group.err) || gctx.Err() != nil) {
				return group.err
			}
			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Manifest{}, nil, ctxErr
		}
		return Manifest{}, nil, err
	}

	manifest := Manifest{Format: format, Cues: map[string]Entry{}}
	var warnings []Warning
	for _, group := range groups {
		if group.err != nil {
			logger.Warn("sound cue dropped",
				logging.String("source", group.source),
				logging.Int("cues", len(group.cues)),
				logging.Error(group.err),
				logging.String(logging.FieldEventType, "cue_dropped"),
			)
			for _, cue := range group.cues {
				warnings = append(warnings, Warning{Cue: cue.ID, Source: group.source, Err: group.err})
			}
			continue
		}
		for _, cue := range group.cues {
			manifest.Cues[cue.ID] = Entry{Artifact: group.artifact, Source: group.source, DurationMs: group.duration}
		}
	}
	logger.Debug("sound manifest built",
		logging.Int("sources", len(groups)),
		logging.Int("cues", len(manifest.Cues)),
		logging.Int("warnings", len(warnings)),
	)
	return manifest, warnings, nil
}

func groupCues(ctx context.Context, model *animation.Model, locator resources.Locator, format, directory string) ([]*sourceGroup, error) {
	bySource := map[string]*sourceGroup{}
	usedNames := map[string]int{}
	var groups []*sourceGroup

	for _, cue := range model.Cues() {
		key := strings.ToLower(cue.Source)
		if group, ok := bySource[key]; ok {
			group.cues = append(group.cues, cue)
			continue
		}

		info, err := locator.InspectAudio(ctx, cue.Source)
		if err != nil {
			if !services.IsRecoverable(err) {
				return nil, fmt.Errorf("sound cue %s: %w", cue.ID, err)
			}
			group := &sourceGroup{source: cue.Source, cues: []animation.Cue{cue}, err: err}
			bySource[key] = group
			groups = append(groups, group)
			continue
		}

		base := path.Base(cue.Source)
		stem := strings.TrimSuffix(base, path.Ext(base))
		name := stem + "." + format
		lowered := strings.ToLower(name)
		if n := usedNames[lowered]; n > 0 {
			name = fmt.Sprintf("%s-%d.%s", stem, n+1, format)
		}
		usedNames[lowered]++

		group := &sourceGroup{
			source:   cue.Source,
			artifact: path.Join(directory, name),
			cues:     []animation.Cue{cue},
			duration: info.DurationMs(),
		}
		bySource[key] = group
		groups = append(groups, group)
	}
	return groups, nil
}

func hasPending(groups []*sourceGroup) bool {
	for _, group := range groups {
		if group.err == nil {
			return true
		}
	}
	return false
}

func transcode(ctx context.Context, locator resources.Locator, opts Options, format string, group *sourceGroup) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	target := filepath.Join(opts.OutputDir, filepath.FromSlash(group.artifact))
	req := ffmpeg.Request{SourcePath: locator.AudioPath(group.source), OutputPath: target, Format: format}
	if err := opts.Transcoder.Transcode(ctx, req); err != nil {
		_ = os.Remove(target)
		return err
	}
	if opts.Verify != nil {
		if err := opts.Verify(ctx, target); err != nil {
			_ = os.Remove(target)
			return err
		}
	}
	return nil
}
