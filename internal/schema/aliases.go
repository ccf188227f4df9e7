package schema

import (
	"embed"
	"os"
	"slices"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/sheetmetrics/internal/model"
)

//go:embed aliases/*.yaml
var aliasFS embed.FS

// AliasFile is the on-disk shape of an alias table.
type AliasFile struct {
	Domain   model.Domain        `yaml:"domain"`
	Required []string            `yaml:"required"`
	Fields   map[string][]string `yaml:"fields"`
}

// AliasTable maps normalized header keys onto canonical field names.
// Many spellings may map to one field; one spelling never maps to two.
type AliasTable struct {
	schema   Schema
	required []string
	byKey    map[string]string
}

// Key normalizes a header for matching: case-folded, with everything but
// letters and digits removed.
func Key(header string) string {
	folded := cases.Fold().String(header)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, folded)
}

// NewAliasTable indexes the aliases of f against schema s. Every canonical
// field matches its own name; unknown fields and ambiguous spellings are
// rejected.
func NewAliasTable(s Schema, f AliasFile) (*AliasTable, error) {
	fields := s.Fields()
	t := &AliasTable{
		schema:   s,
		required: s.RequiredFields,
		byKey:    make(map[string]string, len(fields)*3),
	}
	if len(f.Required) > 0 {
		t.required = f.Required
	}

	var errs []string
	for _, r := range t.required {
		if !slices.Contains(fields, r) {
			errs = append(errs, "required field "+r+" is not in the schema")
		}
	}
	for _, field := range fields {
		t.byKey[Key(field)] = field
	}
	// Walk fields in schema order so conflicts are reported deterministically.
	for _, field := range fields {
		for _, alias := range f.Fields[field] {
			if err := t.add(alias, field); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}
	for field := range f.Fields {
		if !slices.Contains(fields, field) {
			errs = append(errs, "unknown field "+field)
		}
	}
	if len(errs) > 0 {
		slices.Sort(errs)
		return nil, eris.Errorf("schema: invalid %s aliases: %s", s.Domain, strings.Join(errs, "; "))
	}
	return t, nil
}

func (t *AliasTable) add(alias, field string) error {
	k := Key(alias)
	if k == "" {
		return eris.Errorf("alias %q for %s is empty after normalization", alias, field)
	}
	if prev, ok := t.byKey[k]; ok && prev != field {
		return eris.Errorf("alias %q maps to both %s and %s", alias, prev, field)
	}
	t.byKey[k] = field
	return nil
}

// Schema returns the schema the table was built for.
func (t *AliasTable) Schema() Schema {
	return t.schema
}

// Required returns the structural columns of the domain.
func (t *AliasTable) Required() []string {
	return t.required
}

// Lookup returns the canonical field for a raw header.
func (t *AliasTable) Lookup(header string) (string, bool) {
	field, ok := t.byKey[Key(header)]
	return field, ok
}

// LoadAliases returns the built-in alias table of a domain.
func LoadAliases(d model.Domain) (*AliasTable, error) {
	data, err := aliasFS.ReadFile("aliases/" + string(d) + ".yaml")
	if err != nil {
		return nil, eris.Wrapf(err, "schema: read built-in aliases for %s", d)
	}
	return parseAliases(ForDomain(d), data, nil)
}

// LoadAliasesWithOverride returns the built-in table of a domain extended
// by the aliases in the YAML file at path. A required list in the override
// replaces the built-in one.
func LoadAliasesWithOverride(d model.Domain, path string) (*AliasTable, error) {
	if path == "" {
		return LoadAliases(d)
	}
	base, err := aliasFS.ReadFile("aliases/" + string(d) + ".yaml")
	if err != nil {
		return nil, eris.Wrapf(err, "schema: read built-in aliases for %s", d)
	}
	extra, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: read alias override %s", path)
	}
	return parseAliases(ForDomain(d), base, extra)
}

func parseAliases(s Schema, base, extra []byte) (*AliasTable, error) {
	var f AliasFile
	if err := yaml.Unmarshal(base, &f); err != nil {
		return nil, eris.Wrap(err, "schema: parse aliases")
	}
	if extra != nil {
		var o AliasFile
		if err := yaml.Unmarshal(extra, &o); err != nil {
			return nil, eris.Wrap(err, "schema: parse alias override")
		}
		if o.Domain != "" && o.Domain != s.Domain {
			return nil, eris.Errorf("schema: alias override is for %s, not %s", o.Domain, s.Domain)
		}
		if f.Fields == nil {
			f.Fields = make(map[string][]string)
		}
		for field, aliases := range o.Fields {
			f.Fields[field] = append(f.Fields[field], aliases...)
		}
		if len(o.Required) > 0 {
			f.Required = o.Required
		}
	}
	if f.Domain != "" && f.Domain != s.Domain {
		return nil, eris.Errorf("schema: alias file is for %s, not %s", f.Domain, s.Domain)
	}
	return NewAliasTable(s, f)
}
