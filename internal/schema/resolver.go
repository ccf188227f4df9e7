package schema

import "github.com/sells-group/sheetmetrics/internal/model"

// Columns is the resolved position of each canonical field in one header
// row. Fields without a matching header are absent.
type Columns struct {
	index    map[string]int
	unmapped []string
}

// Resolve maps a header row onto canonical fields. When several headers
// alias the same field the leftmost one wins.
func (t *AliasTable) Resolve(header []string) *Columns {
	c := &Columns{index: make(map[string]int, len(header))}
	for i, h := range header {
		field, ok := t.Lookup(h)
		if !ok {
			if Key(h) != "" {
				c.unmapped = append(c.unmapped, h)
			}
			continue
		}
		if _, seen := c.index[field]; !seen {
			c.index[field] = i
		}
	}
	return c
}

// Index returns the column position of a field.
func (c *Columns) Index(field string) (int, bool) {
	i, ok := c.index[field]
	return i, ok
}

// Has reports whether the field resolved to a column.
func (c *Columns) Has(field string) bool {
	_, ok := c.index[field]
	return ok
}

// Missing returns the fields, in the given order, that did not resolve.
func (c *Columns) Missing(fields []string) []string {
	var out []string
	for _, f := range fields {
		if !c.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Unmapped returns the non-empty headers that matched no field.
func (c *Columns) Unmapped() []string {
	return c.unmapped
}

// Cell returns the row's value for a field, blank when the field is absent.
func (c *Columns) Cell(row []model.Cell, field string) model.Cell {
	i, ok := c.index[field]
	if !ok {
		return model.Cell{}
	}
	return model.CellAt(row, i)
}
