package codes

import "sort"

// Catalog holds the code tables used by the built-in export forms.
type Catalog struct {
	tables map[string]*Table
	nested map[string]*NestedTable
}

// Table names in the default catalog.
const (
	SaleStatus          = "sale_status"
	Gender              = "gender"
	SaleArea            = "sale_area"
	Season              = "season"
	DeliveryMethod      = "delivery_method"
	Tax                 = "tax"
	CertifyAssort       = "certify_assort"
	CertifyItem         = "certify_item"
	CertifyOrganization = "certify_organization"
	CertifyReport       = "certify_report"
	CertifyConsider     = "certify_consider_yn"
)

// NewCatalog builds a catalog from tables. Later tables replace earlier ones
// with the same name.
func NewCatalog(tables []*Table, nested []*NestedTable) *Catalog {
	c := &Catalog{
		tables: make(map[string]*Table, len(tables)),
		nested: make(map[string]*NestedTable, len(nested)),
	}
	for _, t := range tables {
		c.tables[t.Name()] = t
	}
	for _, t := range nested {
		c.nested[t.Name()] = t
	}
	return c
}

// Table returns the named one-level table.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Nested returns the named two-level table.
func (c *Catalog) Nested(name string) (*NestedTable, bool) {
	t, ok := c.nested[name]
	return t, ok
}

// MustTable returns the named table and panics if it is missing. Form
// definitions use it at init time, where a missing table is a programming error.
func (c *Catalog) MustTable(name string) *Table {
	t, ok := c.tables[name]
	if !ok {
		panic("codes: unknown table " + name)
	}
	return t
}

// MustNested is MustTable for two-level tables.
func (c *Catalog) MustNested(name string) *NestedTable {
	t, ok := c.nested[name]
	if !ok {
		panic("codes: unknown nested table " + name)
	}
	return t
}

// Names lists every table name, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.tables)+len(c.nested))
	for n := range c.tables {
		out = append(out, n)
	}
	for n := range c.nested {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var defaultCatalog = NewCatalog(
	[]*Table{
		Sequence(SaleStatus, 2000, "1", "2", "3", "4", "5", "6", "7"),
		Sequence(Gender, 1281, "1", "2", "3", "4", "5"),
		Sequence(SaleArea, 1277, "1", "2", "3", "4"),
		Sequence(Season, 1290, "1", "2", "3", "4", "5", "6"),
		Sequence(DeliveryMethod, 1296, "1", "2", "3", "4", "5", "6"),
		Sequence(Tax, 1286, "1", "2", "3", "4"),
		certifyAssort(),
		Sequence(CertifyOrganization, 1424, "1", "2", "3", "4", "5", "6", "7"),
		Sequence(CertifyReport, 1431, "1", "2", "3"),
		NewTable(CertifyConsider, map[int]string{1: "Y", 2: "N"}),
	},
	[]*NestedTable{
		NewNestedTable(CertifyItem, map[int]map[int]string{
			1380: seq(1404, 7), // eco-friendly
			1381: seq(1411, 4), // household goods
			1382: seq(1415, 3), // electrical
			1383: seq(1418, 3), // broadcasting equipment
			1384: seq(1421, 3), // children's products
		}),
	},
)

// Default returns the catalog of back-office code tables. The catalog is
// shared and read-only.
func Default() *Catalog {
	return defaultCatalog
}

// certifyAssort maps certification categories to letters A..W; 1527 (see
// detailed description) was added later and exports as X.
func certifyAssort() *Table {
	m := make(map[int]string, 24)
	for i := 0; i <= 1402-1380; i++ {
		m[1380+i] = string(rune('A' + i))
	}
	m[1527] = "X"
	return NewTable(CertifyAssort, m)
}

// seq maps n consecutive ids starting at first to "1".."n".
func seq(first, n int) map[int]string {
	m := make(map[int]string, n)
	for i := 0; i < n; i++ {
		m[first+i] = string(rune('1' + i))
	}
	return m
}
