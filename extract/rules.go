package extract

// Cardinality says whether a rule yields one value or a list of rows.
type Cardinality int

const (
	Single Cardinality = iota
	Repeated
)

func (c Cardinality) String() string {
	if c == Repeated {
		return "repeated"
	}
	return "single"
}

// Output field names.
const (
	FieldZoneName  = "zoneName"
	FieldBossName  = "bossName"
	FieldTableRows = "tableRows"

	FieldJobName = "jobName"
	FieldScore   = "score"
	FieldCount   = "count"
)

// Column maps a cell index within a row to an output sub-field.
type Column struct {
	Field string
	Index int
}

// Rule is a declarative mapping from a CSS locator to one output field.
//
// For Repeated rules, Selector locates the rows and CellSelector the cells
// inside each row. Rows with fewer than MinCells cells are dropped; columns
// beyond the actual cell count yield "".
type Rule struct {
	Field        string
	Selector     string
	Cardinality  Cardinality
	CellSelector string
	MinCells     int
	Columns      []Column
}

// DefaultRules returns the rule set used by the service.
func DefaultRules() []Rule {
	return []Rule{
		{
			Field:       FieldZoneName,
			Selector:    ".zone-name, #zone-name, .zone-title, [data-zone-name]",
			Cardinality: Single,
		},
		{
			Field:       FieldBossName,
			Selector:    ".boss-name, #boss-name, .encounter-name, [data-boss-name]",
			Cardinality: Single,
		},
		{
			Field:        FieldTableRows,
			Selector:     "table tbody tr",
			Cardinality:  Repeated,
			CellSelector: "td",
			MinCells:     2,
			Columns: []Column{
				{Field: FieldJobName, Index: 0},
				{Field: FieldScore, Index: 1},
				{Field: FieldCount, Index: 2},
			},
		},
	}
}
