package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"agentpack/internal/atlas"
	"agentpack/internal/config"
	"agentpack/internal/history"
	"agentpack/internal/logging"
	"agentpack/internal/manifest"
	"agentpack/internal/media/ffprobe"
	"agentpack/internal/services"
	"agentpack/internal/services/ffmpeg"
	"agentpack/internal/sounds"
	"agentpack/internal/staging"
)

// LockFileName is the advisory lock held inside the output directory.
const LockFileName = ".agentpack.lock"

// ErrOutputLocked indicates another run holds the output directory.
var ErrOutputLocked = errors.New("output directory is locked by another run")

// Options customises a Runner. Zero values fall back to the configured tools.
type Options struct {
	Transcoder ffmpeg.AudioTranscoder
	Verify     sounds.VerifyFunc
	Progress   func(done, total int)
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

// Runner converts bundles using one configuration.
type Runner struct {
	cfg        *config.Config
	transcoder ffmpeg.AudioTranscoder
	verify     sounds.VerifyFunc
	progress   func(done, total int)
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// New constructs a Runner.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires config")
	}
	r := &Runner{
		cfg:        cfg,
		transcoder: opts.Transcoder,
		verify:     opts.Verify,
		progress:   opts.Progress,
		logger:     opts.Logger,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if r.transcoder == nil {
		r.transcoder = ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.Audio.FFmpegBinary))
	}
	if r.verify == nil && cfg.Audio.Verify {
		binary := cfg.Audio.FFprobeBinary
		r.verify = func(ctx context.Context, path string) error {
			_, err := ffprobe.VerifyAudio(ctx, binary, path)
			return err
		}
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	return r, nil
}

// Run converts the bundle at bundleDir into the configured output directory.
func (r *Runner) Run(ctx context.Context, bundleDir string) (*Result, error) {
	runID := r.newID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "pipeline"))

	result := &Result{RunID: runID, Bundle: bundleDir, StartedAt: r.now()}
	err := r.run(ctx, logger, bundleDir, result)
	result.FinishedAt = r.now()
	r.recordHistory(ctx, logger, result, err)
	if err != nil {
		logger.Error("conversion failed",
			logging.String(logging.FieldEventType, "run_failed"),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
		)
		return nil, err
	}
	logger.Info("conversion complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String(logging.FieldAgent, result.Agent),
		logging.Int("animations", result.Stats.Animations),
		logging.Int("frames", result.Stats.Frames),
		logging.Int("sounds", result.Sounds),
		logging.Int("warnings", len(result.Warnings)),
		logging.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, bundleDir string, result *Result) error {
	outDir, err := filepath.Abs(r.cfg.Paths.OutputDir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	result.Outputs.Directory = outDir

	lock := flock.New(filepath.Join(outDir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrOutputLocked, outDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	if cleaned := staging.CleanAbandoned(ctx, outDir, 0, logger); len(cleaned.Errors) > 0 {
		return fmt.Errorf("clean abandoned staging: %s: %w", cleaned.Errors[0].Path, cleaned.Errors[0].Error)
	}

	bundle, err := Load(logging.WithStage(ctx, "parse"), r.cfg, bundleDir)
	if err != nil {
		return err
	}
	result.Agent = bundle.Agent
	result.Bundle = bundle.Root
	result.Stats = bundle.Model.Stats()
	ctx = services.WithAgent(ctx, bundle.Agent)
	logger.Info("description parsed",
		logging.String(logging.FieldStage, "parse"),
		logging.String(logging.FieldEventType, "parse_complete"),
		logging.String("description", bundle.Description),
		logging.Int("animations", result.Stats.Animations),
		logging.Int("frames", result.Stats.Frames),
		logging.Int("images", result.Stats.Images),
		logging.Int("cues", result.Stats.Cues),
	)

	stage := staging.New(outDir, result.RunID)
	if err := stage.Create(); err != nil {
		return err
	}
	defer stage.Discard(logger)

	packed, soundManifest, warnings, err := r.produce(ctx, bundle, stage.Root())
	if err != nil {
		return err
	}
	result.Warnings = warnings
	result.AtlasSize = [2]int{packed.Layout.Width, packed.Layout.Height}
	result.Sounds = len(soundManifest.Cues)

	doc, err := manifest.Emit(manifest.Inputs{
		Agent:         bundle.Agent,
		AtlasImage:    r.cfg.Atlas.ImageName,
		SoundManifest: r.cfg.Output.SoundManifest,
		Model:         bundle.Model,
		Layout:        packed.Layout,
		Sounds:        soundManifest,
	})
	if err != nil {
		return err
	}

	files, err := r.writeArtifacts(stage, packed, doc, soundManifest)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := stage.Commit(files, r.cfg.Audio.Directory, len(soundManifest.Cues) > 0); err != nil {
		return err
	}

	result.Outputs.AnimationManifest = filepath.Join(outDir, r.cfg.Output.AnimationManifest)
	result.Outputs.SoundManifest = filepath.Join(outDir, r.cfg.Output.SoundManifest)
	result.Outputs.Atlas = filepath.Join(outDir, r.cfg.Atlas.ImageName)
	if len(soundManifest.Cues) > 0 {
		result.Outputs.SoundDirectory = filepath.Join(outDir, filepath.FromSlash(r.cfg.Audio.Directory))
	}
	if r.cfg.Output.ClippyJS {
		result.Outputs.Clippy = []string{
			filepath.Join(outDir, manifest.ClippyAgentFile),
			filepath.Join(outDir, manifest.ClippySoundsFile(soundManifest.Format)),
		}
	}
	return nil
}

// produce packs the atlas and builds the sound manifest concurrently.
func (r *Runner) produce(ctx context.Context, bundle *Bundle, stagingDir string) (*atlas.Atlas, sounds.Manifest, []sounds.Warning, error) {
	packer, err := atlas.NewPacker(r.cfg.Atlas.Strategy, r.cfg.Atlas.MaxWidth, r.cfg.Atlas.WidthMode, r.cfg.Atlas.Padding)
	if err != nil {
		return nil, sounds.Manifest{}, nil, err
	}

	var (
		packed        *atlas.Atlas
		soundManifest sounds.Manifest
		warnings      []sounds.Warning
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		packed, err = atlas.Build(logging.WithStage(gctx, "atlas"), bundle.Model, bundle.Locator, atlas.Options{
			Packer:  packer,
			Workers: r.cfg.Atlas.DecodeWorkers,
			Logger:  r.logger,
		})
		return err
	})
	g.Go(func() error {
		var err error
		soundManifest, warnings, err = sounds.Build(logging.WithStage(gctx, "sounds"), bundle.Model, bundle.Locator, sounds.Options{
			Transcoder: r.transcoder,
			Format:     r.cfg.Audio.OutputFormat,
			OutputDir:  stagingDir,
			Directory:  r.cfg.Audio.Directory,
			Workers:    r.cfg.Audio.Workers,
			Timeout:    time.Duration(r.cfg.Audio.TimeoutSeconds) * time.Second,
			Verify:     r.verify,
			Progress:   r.progress,
			Logger:     r.logger,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, sounds.Manifest{}, nil, err
	}
	return packed, soundManifest, warnings, nil
}

func (r *Runner) recordHistory(ctx context.Context, logger *slog.Logger, result *Result, runErr error) {
	if !r.cfg.History.Enabled {
		return
	}
	// The ledger outlives a cancelled run.
	ctx = context.WithoutCancel(ctx)
	store, err := history.Open(ctx, r.cfg.HistoryPath())
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
		return
	}
	defer store.Close()

	run := history.Run{
		ID:         result.RunID,
		Agent:      result.Agent,
		Bundle:     result.Bundle,
		Output:     result.Outputs.Directory,
		Status:     history.StatusSucceeded,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Animations: result.Stats.Animations,
		Frames:     result.Stats.Frames,
		Images:     result.Stats.Images,
		Cues:       result.Stats.Cues,
		Warnings:   len(result.Warnings),
	}
	if run.Output == "" {
		run.Output = r.cfg.Paths.OutputDir
	}
	switch {
	case runErr != nil:
		run.Status = history.StatusFailed
		run.ErrorKind = services.Kind(runErr)
		run.ErrorMessage = runErr.Error()
	case len(result.Warnings) > 0:
		run.Status = history.StatusWarnings
	}
	if err := store.Record(ctx, run); err != nil {
		logger.Warn("failed to record run history", logging.Error(err))
	}
}
