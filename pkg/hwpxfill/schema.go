package hwpxfill

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchemaYAML []byte

// AnchorSpec describes one placeholder identifier the template may
// carry: what content it expects and, for per-year anchors, which
// project year it belongs to.
type AnchorSpec struct {
	ID            string      `yaml:"id"`
	Kind          ContentKind `yaml:"-"`
	KindName      string      `yaml:"kind"`
	Year          int         `yaml:"-"`
	Required      bool        `yaml:"required"`
	RequireDetail bool        `yaml:"require_detail"`
}

// Validate validates one anchor spec.
func (a AnchorSpec) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.KindName, validation.Required, validation.In("text", "outline", "schedule")),
	)
}

// Schema is the set of anchors a template is allowed to contain.
// Strict mode rejects any anchor not present here.
type Schema struct {
	anchors []AnchorSpec
	byID    map[string]AnchorSpec
}

type schemaFile struct {
	Anchors []AnchorSpec `yaml:"anchors"`
	PerYear []AnchorSpec `yaml:"per_year"`
}

// DefaultSchema returns the embedded NRF proposal schema.
func DefaultSchema() *Schema {
	schema, err := parseSchema(defaultSchemaYAML)
	if err != nil {
		// The embedded schema is part of the build; failing to parse
		// it is a programming error.
		panic(fmt.Sprintf("embedded schema invalid: %v", err))
	}
	return schema
}

// LoadSchema reads an anchor schema from a YAML file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError("read", path, err)
	}
	schema, err := parseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}
	return schema, nil
}

func parseSchema(data []byte) (*Schema, error) {
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	schema := &Schema{byID: make(map[string]AnchorSpec)}
	add := func(spec AnchorSpec) error {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("anchor %q: %w", spec.ID, err)
		}
		spec.Kind = kindFromName(spec.KindName)
		if _, dup := schema.byID[spec.ID]; dup {
			return fmt.Errorf("anchor %q: duplicate identifier", spec.ID)
		}
		schema.anchors = append(schema.anchors, spec)
		schema.byID[spec.ID] = spec
		return nil
	}

	for _, spec := range file.Anchors {
		if err := add(spec); err != nil {
			return nil, err
		}
	}
	for _, tmpl := range file.PerYear {
		if !strings.Contains(tmpl.ID, "%d") {
			return nil, fmt.Errorf("per-year anchor %q: missing %%d year slot", tmpl.ID)
		}
		for year := 1; year <= MaxYears; year++ {
			spec := tmpl
			spec.ID = fmt.Sprintf(tmpl.ID, year)
			spec.Year = year
			if err := add(spec); err != nil {
				return nil, err
			}
		}
	}
	return schema, nil
}

func kindFromName(name string) ContentKind {
	switch name {
	case "text":
		return KindText
	case "schedule":
		return KindSchedule
	default:
		return KindOutline
	}
}

// Lookup resolves an anchor identifier. Expanded schedule-row anchors
// carry a ".k" index suffix that resolves to their base identifier.
func (s *Schema) Lookup(id string) (AnchorSpec, bool) {
	if spec, ok := s.byID[id]; ok {
		return spec, true
	}
	if base, _, ok := splitRowSuffix(id); ok {
		if spec, found := s.byID[base]; found && spec.Kind == KindSchedule {
			return spec, true
		}
	}
	return AnchorSpec{}, false
}

// Anchors returns every anchor spec in schema order.
func (s *Schema) Anchors() []AnchorSpec {
	out := make([]AnchorSpec, len(s.anchors))
	copy(out, s.anchors)
	return out
}

// splitRowSuffix splits "schedule.year2.3" into ("schedule.year2", 3).
func splitRowSuffix(id string) (string, int, bool) {
	dot := strings.LastIndex(id, ".")
	if dot < 0 {
		return "", 0, false
	}
	suffix := id[dot+1:]
	if suffix == "" {
		return "", 0, false
	}
	n := 0
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return "", 0, false
		}
		n = n*10 + int(r-'0')
	}
	return id[:dot], n, true
}
