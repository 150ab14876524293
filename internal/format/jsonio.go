// # internal/format/jsonio.go
package format

import (
	"bytes"
	"encoding/json"
	"os"

	"intmap/internal/errors"
)

// Marshal renders v minified (compact mode) or indented (verbose mode),
// without HTML escaping.
func Marshal(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encoding output")
	}
	return buf.Bytes(), nil
}

// WriteFile writes the rendered payload to path, or to stdout when path
// is "-".
func WriteFile(path string, v any, indent bool) error {
	data, err := Marshal(v, indent)
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "writing output").
			WithContext(errors.CtxPath, path)
	}
	return nil
}
