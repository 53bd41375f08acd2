package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"agentpack/internal/atlas"
	"agentpack/internal/manifest"
	"agentpack/internal/sounds"
	"agentpack/internal/staging"
)

// writeArtifacts renders every output file into staging and returns their
// names in commit order. The animation manifest goes last so a reader that
// sees it can rely on the rest being present.
func (r *Runner) writeArtifacts(st *staging.Dir, packed *atlas.Atlas, doc *manifest.Document, sm sounds.Manifest) ([]string, error) {
	var files []string

	imageName := r.cfg.Atlas.ImageName
	if err := writeFile(st.Path(imageName), func(w io.Writer) error { return atlas.EncodePNG(w, packed) }); err != nil {
		return nil, fmt.Errorf("write atlas: %w", err)
	}
	files = append(files, imageName)

	soundName := r.cfg.Output.SoundManifest
	if err := manifest.WriteJSON(st.Path(soundName), sm); err != nil {
		return nil, fmt.Errorf("write sound manifest: %w", err)
	}
	files = append(files, soundName)

	if r.cfg.Output.ClippyJS {
		if err := writeFile(st.Path(manifest.ClippyAgentFile), func(w io.Writer) error { return manifest.WriteClippyJS(w, doc) }); err != nil {
			return nil, fmt.Errorf("write %s: %w", manifest.ClippyAgentFile, err)
		}
		soundsJS := manifest.ClippySoundsFile(sm.Format)
		if err := writeFile(st.Path(soundsJS), func(w io.Writer) error {
			return manifest.WriteClippySounds(w, doc.Agent, st.Root(), sm)
		}); err != nil {
			return nil, fmt.Errorf("write %s: %w", soundsJS, err)
		}
		files = append(files, manifest.ClippyAgentFile, soundsJS)
	}

	animName := r.cfg.Output.AnimationManifest
	if err := manifest.WriteJSON(st.Path(animName), doc); err != nil {
		return nil, fmt.Errorf("write animation manifest: %w", err)
	}
	files = append(files, animName)
	return files, nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	buf := bufio.NewWriter(f)
	if err := render(buf); err != nil {
		_ = f.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
