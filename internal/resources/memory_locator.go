package resources

import (
	"context"
	"fmt"
	"image"
	"path"
	"strings"
	"sync"

	"agentpack/internal/services"
)

// MemoryLocator is an in-memory Locator for tests and tooling.
type MemoryLocator struct {
	Images map[string]image.Image
	Audio  map[string]AudioInfo
	// AudioRoot prefixes AudioPath results.
	AudioRoot string

	mu      sync.Mutex
	decodes map[string]int
}

// NewMemoryLocator returns an empty MemoryLocator.
func NewMemoryLocator() *MemoryLocator {
	return &MemoryLocator{
		Images:  map[string]image.Image{},
		Audio:   map[string]AudioInfo{},
		decodes: map[string]int{},
	}
}

// AddImage registers an image under a bundle-relative identity.
func (m *MemoryLocator) AddImage(id string, img image.Image) {
	m.Images[id] = img
}

// AddAudio registers a waveform under a bundle-relative identity.
func (m *MemoryLocator) AddAudio(id string, info AudioInfo) {
	m.Audio[id] = info
}

// DecodeCount reports how many times id was decoded.
func (m *MemoryLocator) DecodeCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decodes[id]
}

func (m *MemoryLocator) ResolveImage(ref string) (string, error) {
	if id, ok := matchMemory(ref, imagesDirName, keys(m.Images)); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: image %q not found in bundle", services.ErrMissingImageResource, ref)
}

func (m *MemoryLocator) ResolveAudio(ref string) (string, error) {
	if id, ok := matchMemory(ref, audioDirName, keys(m.Audio)); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: sound %q not found in bundle", services.ErrMissingAudioResource, ref)
}

func (m *MemoryLocator) DecodeImage(ctx context.Context, id string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, ok := m.Images[id]
	if !ok {
		return nil, fmt.Errorf("%w: image %q not in inventory", services.ErrMissingImageResource, id)
	}
	m.mu.Lock()
	m.decodes[id]++
	m.mu.Unlock()
	return img, nil
}

func (m *MemoryLocator) InspectAudio(ctx context.Context, id string) (AudioInfo, error) {
	if err := ctx.Err(); err != nil {
		return AudioInfo{}, err
	}
	info, ok := m.Audio[id]
	if !ok {
		return AudioInfo{}, fmt.Errorf("%w: sound %q not in inventory", services.ErrMissingAudioResource, id)
	}
	return info, nil
}

func (m *MemoryLocator) AudioPath(id string) string {
	if m.AudioRoot == "" {
		return id
	}
	return path.Join(m.AudioRoot, id)
}

func keys[V any](values map[string]V) []string {
	out := make([]string, 0, len(values))
	for k := range values {
		out = append(out, k)
	}
	return out
}

func matchMemory(ref, dir string, ids []string) (string, bool) {
	key := NormalizeRef(ref)
	if key == "" {
		return "", false
	}
	var baseMatch string
	for _, id := range ids {
		lowered := strings.ToLower(id)
		if lowered == key || lowered == dir+"/"+key {
			return id, true
		}
		if !strings.Contains(key, "/") && strings.ToLower(path.Base(id)) == key {
			if baseMatch == "" || id < baseMatch {
				baseMatch = id
			}
		}
	}
	return baseMatch, baseMatch != ""
}
