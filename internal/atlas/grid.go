package atlas

import (
	"errors"
	"math"
)

// GridPacker places images in uniform cells sized to the largest image, in
// discovery order. The column count is the square root of the image count,
// rounded up and capped by MaxWidth.
type GridPacker struct {
	MaxWidth int
}

func (p GridPacker) Pack(items []Item) (Layout, error) {
	if p.MaxWidth <= 0 {
		return Layout{}, errors.New("grid packer: max width must be positive")
	}
	layout := Layout{Rects: make(map[string]Rect, len(items))}
	if len(items) == 0 {
		return layout, nil
	}

	cellW, cellH := 0, 0
	for _, item := range items {
		if item.Width <= 0 || item.Height <= 0 {
			return Layout{}, emptyImage(item)
		}
		if item.Width > p.MaxWidth {
			return Layout{}, overflow(item, p.MaxWidth)
		}
		cellW = max(cellW, item.Width)
		cellH = max(cellH, item.Height)
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(items)))))
	cols = max(1, min(cols, p.MaxWidth/cellW))
	rows := (len(items) + cols - 1) / cols

	for i, item := range items {
		col, row := i%cols, i/cols
		layout.Rects[item.ID] = Rect{X: col * cellW, Y: row * cellH, W: item.Width, H: item.Height}
	}
	layout.Width = cols * cellW
	layout.Height = rows * cellH
	return layout, nil
}
