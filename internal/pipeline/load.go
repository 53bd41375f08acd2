package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agentpack/internal/acd"
	"agentpack/internal/animation"
	"agentpack/internal/config"
	"agentpack/internal/resources"
)

// Bundle is a parsed decompiled agent bundle.
type Bundle struct {
	Agent       string
	Root        string
	Description string
	Locator     *resources.DirLocator
	Model       *animation.Model
}

// Load indexes bundleDir, parses its description and builds the animation
// model. No artifacts are written.
func Load(ctx context.Context, cfg *config.Config, bundleDir string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(bundleDir)
	if err != nil {
		return nil, fmt.Errorf("resolve bundle path: %w", err)
	}
	locator, err := resources.OpenDir(root)
	if err != nil {
		return nil, err
	}
	descPath, err := resources.FindDescription(root)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(descPath)
	if err != nil {
		return nil, fmt.Errorf("read description: %w", err)
	}
	records, err := acd.ParseBytes(data, cfg.Description.Encoding)
	if err != nil {
		return nil, err
	}
	model, err := animation.Build(records, locator)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Agent:       agentName(model, descPath),
		Root:        root,
		Description: descPath,
		Locator:     locator,
		Model:       model,
	}, nil
}

func agentName(model *animation.Model, descPath string) string {
	if name := strings.TrimSpace(model.Character.Name); name != "" {
		return name
	}
	base := filepath.Base(descPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
