package resources

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-audio/wav"
	"golang.org/x/image/bmp"

	"agentpack/internal/services"
)

const (
	imagesDirName = "images"
	audioDirName  = "audio"
)

// DirLocator resolves references against a bundle directory on disk.
type DirLocator struct {
	root   string
	images map[string]string
	audio  map[string]string
	// byBase indexes files by lower-cased basename for bare references.
	imagesByBase map[string]string
	audioByBase  map[string]string
}

// OpenDir lists the bundle's Images and Audio directories. Missing directories
// produce an empty inventory; only referenced files are ever opened.
func OpenDir(root string) (*DirLocator, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open bundle %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open bundle %s: not a directory", root)
	}

	loc := &DirLocator{
		root:         root,
		images:       map[string]string{},
		audio:        map[string]string{},
		imagesByBase: map[string]string{},
		audioByBase:  map[string]string{},
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list bundle %s: %w", root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		switch strings.ToLower(entry.Name()) {
		case imagesDirName:
			if err := loc.index(entry.Name(), loc.images, loc.imagesByBase); err != nil {
				return nil, err
			}
		case audioDirName:
			if err := loc.index(entry.Name(), loc.audio, loc.audioByBase); err != nil {
				return nil, err
			}
		}
	}
	return loc, nil
}

// Root returns the bundle directory.
func (l *DirLocator) Root() string {
	return l.root
}

func (l *DirLocator) index(dir string, byPath, byBase map[string]string) error {
	return filepath.WalkDir(filepath.Join(l.root, dir), func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		id := filepath.ToSlash(rel)
		key := strings.ToLower(id)
		byPath[key] = id
		base := strings.ToLower(path.Base(id))
		if _, exists := byBase[base]; !exists {
			byBase[base] = id
		}
		return nil
	})
}

// ImageCount reports the number of image files in the inventory.
func (l *DirLocator) ImageCount() int { return len(l.images) }

// AudioCount reports the number of audio files in the inventory.
func (l *DirLocator) AudioCount() int { return len(l.audio) }

// AudioFiles lists audio identities in lexical order.
func (l *DirLocator) AudioFiles() []string {
	files := make([]string, 0, len(l.audio))
	for _, id := range l.audio {
		files = append(files, id)
	}
	sort.Strings(files)
	return files
}

func (l *DirLocator) ResolveImage(ref string) (string, error) {
	if id, ok := lookup(ref, imagesDirName, l.images, l.imagesByBase); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: image %q not found in bundle", services.ErrMissingImageResource, ref)
}

func (l *DirLocator) ResolveAudio(ref string) (string, error) {
	if id, ok := lookup(ref, audioDirName, l.audio, l.audioByBase); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: sound %q not found in bundle", services.ErrMissingAudioResource, ref)
}

func lookup(ref, dir string, byPath, byBase map[string]string) (string, bool) {
	key := NormalizeRef(ref)
	if key == "" {
		return "", false
	}
	if id, ok := byPath[key]; ok {
		return id, true
	}
	if !strings.Contains(key, "/") {
		if id, ok := byPath[dir+"/"+key]; ok {
			return id, true
		}
		if id, ok := byBase[key]; ok {
			return id, true
		}
	}
	return "", false
}

func (l *DirLocator) DecodeImage(ctx context.Context, id string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := l.images[strings.ToLower(id)]; !ok {
		return nil, fmt.Errorf("%w: image %q not in inventory", services.ErrMissingImageResource, id)
	}
	file, err := os.Open(filepath.Join(l.root, filepath.FromSlash(id)))
	if err != nil {
		return nil, fmt.Errorf("%w: open image %s: %w", services.ErrMissingImageResource, id, err)
	}
	defer file.Close()

	var img image.Image
	switch strings.ToLower(path.Ext(id)) {
	case ".png":
		img, err = png.Decode(file)
	default:
		img, err = bmp.Decode(file)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode image %s: %w", services.ErrMissingImageResource, id, err)
	}
	return img, nil
}

func (l *DirLocator) InspectAudio(ctx context.Context, id string) (AudioInfo, error) {
	if err := ctx.Err(); err != nil {
		return AudioInfo{}, err
	}
	if _, ok := l.audio[strings.ToLower(id)]; !ok {
		return AudioInfo{}, fmt.Errorf("%w: sound %q not in inventory", services.ErrMissingAudioResource, id)
	}
	file, err := os.Open(l.AudioPath(id))
	if err != nil {
		return AudioInfo{}, fmt.Errorf("%w: open sound %s: %w", services.ErrMissingAudioResource, id, err)
	}
	defer file.Close()

	// The file exists, so an unreadable header only affects this cue.
	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return AudioInfo{}, fmt.Errorf("%w: sound %s is not a valid wav file", services.ErrTranscodeFailure, id)
	}
	duration, err := decoder.Duration()
	if err != nil {
		return AudioInfo{}, fmt.Errorf("%w: read wav duration %s: %w", services.ErrTranscodeFailure, id, err)
	}
	return AudioInfo{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
		Duration:   duration,
	}, nil
}

func (l *DirLocator) AudioPath(id string) string {
	return filepath.Join(l.root, filepath.FromSlash(id))
}

// FindDescription returns the path of the single .acd script in root.
func FindDescription(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("list bundle %s: %w", root, err)
	}
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".acd") {
			matches = append(matches, entry.Name())
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no .acd description found in %s", services.ErrMalformedDescription, root)
	case 1:
		return filepath.Join(root, matches[0]), nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w: multiple .acd descriptions in %s: %s", services.ErrMalformedDescription, root, strings.Join(matches, ", "))
	}
}
