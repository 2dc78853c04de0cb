package cli

import (
	"encoding/json"
	"io"
)

// jsonEncode writes v to w as indented JSON, matching the teacher's own
// OutputJSON helper.
func jsonEncode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
