// Package palette models a base16 color scheme and the two sequential
// stages that turn raw file content into one: a structural parse that
// checks every slot is present, and a semantic validation that checks
// every slot holds a hex color.
package palette

// FieldNames lists the 16 slots in their fixed enumeration order. Parsing,
// validation, serialization, and diffing all walk slots in this order.
var FieldNames = [16]string{
	"base00", "base01", "base02", "base03",
	"base04", "base05", "base06", "base07",
	"base08", "base09", "base0A", "base0B",
	"base0C", "base0D", "base0E", "base0F",
}

// Palette is a base16 color scheme. Values are kept verbatim as read from
// the file; no case normalization is applied.
//
// The JSON field order mirrors FieldNames so that serialization is
// deterministic.
type Palette struct {
	Base00 string `json:"base00" yaml:"base00" toml:"base00"`
	Base01 string `json:"base01" yaml:"base01" toml:"base01"`
	Base02 string `json:"base02" yaml:"base02" toml:"base02"`
	Base03 string `json:"base03" yaml:"base03" toml:"base03"`
	Base04 string `json:"base04" yaml:"base04" toml:"base04"`
	Base05 string `json:"base05" yaml:"base05" toml:"base05"`
	Base06 string `json:"base06" yaml:"base06" toml:"base06"`
	Base07 string `json:"base07" yaml:"base07" toml:"base07"`
	Base08 string `json:"base08" yaml:"base08" toml:"base08"`
	Base09 string `json:"base09" yaml:"base09" toml:"base09"`
	Base0A string `json:"base0A" yaml:"base0A" toml:"base0A"`
	Base0B string `json:"base0B" yaml:"base0B" toml:"base0B"`
	Base0C string `json:"base0C" yaml:"base0C" toml:"base0C"`
	Base0D string `json:"base0D" yaml:"base0D" toml:"base0D"`
	Base0E string `json:"base0E" yaml:"base0E" toml:"base0E"`
	Base0F string `json:"base0F" yaml:"base0F" toml:"base0F"`
}

// slots returns pointers to the fields in FieldNames order.
func (p *Palette) slots() [16]*string {
	return [16]*string{
		&p.Base00, &p.Base01, &p.Base02, &p.Base03,
		&p.Base04, &p.Base05, &p.Base06, &p.Base07,
		&p.Base08, &p.Base09, &p.Base0A, &p.Base0B,
		&p.Base0C, &p.Base0D, &p.Base0E, &p.Base0F,
	}
}

// Values returns the 16 values in FieldNames order.
func (p Palette) Values() []string {
	out := make([]string, 0, len(FieldNames))
	for _, s := range p.slots() {
		out = append(out, *s)
	}

	return out
}

// Get returns the value of the named slot.
func (p Palette) Get(field string) (string, bool) {
	slots := p.slots()
	for i, name := range FieldNames {
		if name == field {
			return *slots[i], true
		}
	}

	return "", false
}

// fromValues builds a Palette from values given in FieldNames order.
func fromValues(values [16]string) Palette {
	var p Palette

	slots := p.slots()
	for i, v := range values {
		*slots[i] = v
	}

	return p
}
