package atlas

import (
	"errors"
	"sort"
)

// Width modes for ShelfPacker.
const (
	WidthFixed = "fixed"
	WidthFit   = "fit"
)

// ShelfPacker places images left to right in rows ("shelves"). Images are
// sorted by height then width, both descending, keeping discovery order for
// ties. A new row starts below the tallest image of the current row when the
// next image would cross MaxWidth.
type ShelfPacker struct {
	MaxWidth  int
	WidthMode string
	Padding   int
}

func (p ShelfPacker) Pack(items []Item) (Layout, error) {
	if p.MaxWidth <= 0 {
		return Layout{}, errors.New("shelf packer: max width must be positive")
	}
	for _, item := range items {
		if item.Width <= 0 || item.Height <= 0 {
			return Layout{}, emptyImage(item)
		}
		if item.Width > p.MaxWidth {
			return Layout{}, overflow(item, p.MaxWidth)
		}
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := items[order[i]], items[order[j]]
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		return a.Width > b.Width
	})

	layout := Layout{Rects: make(map[string]Rect, len(items))}
	x, y, rowHeight, usedWidth := 0, 0, 0, 0
	for _, idx := range order {
		item := items[idx]
		if x > 0 && x+item.Width > p.MaxWidth {
			y += rowHeight + p.Padding
			x, rowHeight = 0, 0
		}
		layout.Rects[item.ID] = Rect{X: x, Y: y, W: item.Width, H: item.Height}
		if x+item.Width > usedWidth {
			usedWidth = x + item.Width
		}
		if item.Height > rowHeight {
			rowHeight = item.Height
		}
		x += item.Width + p.Padding
	}

	layout.Height = y + rowHeight
	if p.WidthMode == WidthFit {
		layout.Width = usedWidth
	} else {
		layout.Width = p.MaxWidth
	}
	if len(items) == 0 {
		layout.Width, layout.Height = 0, 0
	}
	return layout, nil
}
