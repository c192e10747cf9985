package palette

import (
	"fmt"
	"strings"
)

// Change describes one slot whose value differs between two palettes.
type Change struct {
	Field string
	Old   string
	New   string
}

// Diff compares two palettes slot by slot and returns the changes in
// FieldNames order. Comparison is exact; "#FFF" and "#fff" differ.
func Diff(prev, curr Palette) []Change {
	prevValues := prev.Values()
	currValues := curr.Values()

	var changes []Change

	for i, name := range FieldNames {
		if prevValues[i] != currValues[i] {
			changes = append(changes, Change{Field: name, Old: prevValues[i], New: currValues[i]})
		}
	}

	return changes
}

// DiffSummary returns a human-readable one-line summary.
func DiffSummary(changes []Change) string {
	if len(changes) == 0 {
		return "no color changes"
	}

	fields := make([]string, 0, len(changes))
	for _, c := range changes {
		fields = append(fields, c.Field)
	}

	return fmt.Sprintf("~%d color(s) changed: %s", len(changes), strings.Join(fields, ", "))
}

// Render returns the canonical one-slot-per-line form of p
// (`base00 = "#..."`), used for text diffs.
func Render(p Palette) string {
	var b strings.Builder

	for i, v := range p.Values() {
		fmt.Fprintf(&b, "%s = %q\n", FieldNames[i], v)
	}

	return b.String()
}
