package atlas

import (
	"fmt"
	"sort"

	"agentpack/internal/services"
)

// Rect is an atlas rectangle in pixels.
type Rect struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// Overlaps reports whether r and o share any pixel.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Item is one image to pack.
type Item struct {
	ID     string
	Width  int
	Height int
}

// Layout maps item identities to rectangles inside a Width×Height canvas.
type Layout struct {
	Width  int
	Height int
	Rects  map[string]Rect
}

// Packer assigns rectangles to items.
type Packer interface {
	Pack(items []Item) (Layout, error)
}

// Verify checks that every rectangle lies within the layout bounds and that no
// two rectangles overlap.
func Verify(layout Layout) error {
	ids := make([]string, 0, len(layout.Rects))
	for id, r := range layout.Rects {
		if r.W <= 0 || r.H <= 0 {
			return fmt.Errorf("%w: atlas verify: %s has empty rect %+v", services.ErrMissingImageResource, id, r)
		}
		if r.X < 0 || r.Y < 0 || r.X+r.W > layout.Width || r.Y+r.H > layout.Height {
			return fmt.Errorf("atlas verify: %s rect %+v outside %dx%d", id, r, layout.Width, layout.Height)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := layout.Rects[ids[i]], layout.Rects[ids[j]]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	for i := range ids {
		a := layout.Rects[ids[i]]
		for j := i + 1; j < len(ids); j++ {
			b := layout.Rects[ids[j]]
			if b.Y >= a.Y+a.H {
				break
			}
			if a.Overlaps(b) {
				return fmt.Errorf("atlas verify: %s overlaps %s", ids[i], ids[j])
			}
		}
	}
	return nil
}

func emptyImage(item Item) error {
	return services.Wrap(services.ErrMissingImageResource, "atlas", "pack",
		fmt.Sprintf("image %s is %dx%d, images need at least one pixel", item.ID, item.Width, item.Height), nil)
}

func overflow(item Item, maxWidth int) error {
	return services.Wrap(services.ErrAtlasOverflow, "atlas", "pack",
		fmt.Sprintf("image %s is %dpx wide, max atlas width is %dpx", item.ID, item.Width, maxWidth), nil)
}
