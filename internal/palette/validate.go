package palette

import "regexp"

var hexColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// IsHexColor reports whether s is a CSS hex color literal with 3, 4, 6,
// or 8 digits.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// Validate checks every slot in FieldNames order and returns a
// *ValidationError for the first one that is not a hex color.
func Validate(p Palette) error {
	for i, v := range p.Values() {
		if !IsHexColor(v) {
			return &ValidationError{Field: FieldNames[i], Value: v}
		}
	}

	return nil
}
