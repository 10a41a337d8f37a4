// Output helpers shared by the roster commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/mesh-intelligence/roster/pkg/roster"
	"github.com/mesh-intelligence/roster/pkg/types"
)

// entryJSON is the --json form of one record.
type entryJSON struct {
	Category string         `json:"category"`
	ID       string         `json:"id"`
	Fields   types.FieldMap `json:"fields"`
}

func toJSON(e roster.Entry) entryJSON {
	return entryJSON{Category: e.Category, ID: e.ID, Fields: e.Fields}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeEntry prints one record as an "ID:" header followed by its fields.
func writeEntry(w io.Writer, e roster.Entry) {
	fmt.Fprintf(w, "ID: %s (%s)\n", e.ID, e.Category)
	for _, f := range e.Fields {
		fmt.Fprintf(w, "  %s: %s\n", f.Label, e.Fields.Text(f.Label))
	}
}

// writeEntries prints a sequence of records in human or JSON form and
// returns how many were written.
func writeEntries(w io.Writer, jsonMode bool, entries iter.Seq[roster.Entry]) (int, error) {
	if jsonMode {
		out := []entryJSON{}
		for e := range entries {
			out = append(out, toJSON(e))
		}
		return len(out), writeJSON(w, out)
	}
	n := 0
	for e := range entries {
		if n > 0 {
			fmt.Fprintln(w)
		}
		writeEntry(w, e)
		n++
	}
	if n == 0 {
		fmt.Fprintln(w, "No records.")
	}
	return n, nil
}
