package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Encode writes v as indented JSON followed by a newline.
func Encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// WriteJSON renders v into path.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
