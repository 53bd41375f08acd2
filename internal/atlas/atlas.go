package atlas

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"agentpack/internal/animation"
	"agentpack/internal/logging"
	"agentpack/internal/resources"
)

// Asset is a decoded, deduplicated frame image.
type Asset struct {
	ID     string
	Width  int
	Height int
	Image  image.Image
}

// Atlas is the composed bitmap and its layout.
type Atlas struct {
	Image  *image.NRGBA
	Layout Layout
	Assets []Asset
}

// Options controls Build.
type Options struct {
	Packer  Packer
	Workers int
	Logger  *slog.Logger
}

// NewPacker returns the packer for a configured strategy name.
func NewPacker(strategy string, maxWidth int, widthMode string, padding int) (Packer, error) {
	switch strategy {
	case "", "shelf":
		return ShelfPacker{MaxWidth: maxWidth, WidthMode: widthMode, Padding: padding}, nil
	case "grid":
		return GridPacker{MaxWidth: maxWidth}, nil
	default:
		return nil, fmt.Errorf("atlas: unknown packing strategy %q", strategy)
	}
}

// Build decodes the model's distinct images, packs them and composes the atlas.
func Build(ctx context.Context, model *animation.Model, locator resources.Locator, opts Options) (*Atlas, error) {
	if opts.Packer == nil {
		return nil, fmt.Errorf("atlas build: packer is required")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "atlas"))

	ids := model.Images()
	assets := make([]Asset, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			img, err := locator.DecodeImage(gctx, id)
			if err != nil {
				return err
			}
			bounds := img.Bounds()
			assets[i] = Asset{ID: id, Width: bounds.Dx(), Height: bounds.Dy(), Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]Item, len(assets))
	for i, asset := range assets {
		items[i] = Item{ID: asset.ID, Width: asset.Width, Height: asset.Height}
	}
	layout, err := opts.Packer.Pack(items)
	if err != nil {
		return nil, err
	}
	if err := Verify(layout); err != nil {
		return nil, err
	}

	if layout.Width == 0 || layout.Height == 0 {
		layout.Width, layout.Height = 1, 1
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	for _, asset := range assets {
		r := layout.Rects[asset.ID]
		dst := image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
		draw.Draw(canvas, dst, asset.Image, asset.Image.Bounds().Min, draw.Src)
	}

	logger.Debug("atlas composed",
		logging.Int("images", len(assets)),
		logging.Int("width", layout.Width),
		logging.Int("height", layout.Height),
	)
	return &Atlas{Image: canvas, Layout: layout, Assets: assets}, nil
}

// EncodePNG writes the atlas bitmap with default compression.
func EncodePNG(w io.Writer, a *Atlas) error {
	if a == nil || a.Image == nil {
		return fmt.Errorf("encode atlas: nothing to encode")
	}
	encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := encoder.Encode(w, a.Image); err != nil {
		return fmt.Errorf("encode atlas: %w", err)
	}
	return nil
}
