package output

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/colorwatch/internal/palette"
)

// Serialize converts a palette to compact JSON. Keys follow
// palette.FieldNames order and values are emitted verbatim.
func Serialize(p palette.Palette) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("serializing palette: %w", err)
	}

	return data, nil
}

// SerializeIndent is like Serialize but indents the output for humans.
func SerializeIndent(p palette.Palette) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing palette: %w", err)
	}

	return append(data, '\n'), nil
}
