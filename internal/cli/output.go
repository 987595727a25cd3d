package cli

import (
	"encoding/json"
	"io"
)

// writeJSON prints v indented by two spaces, leaving non-ASCII text as is.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
