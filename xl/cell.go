package xl

// CellType is the type of cell value type.
type CellType int

// Cell value types enumeration.
const (
	CellTypeUnset CellType = iota
	CellTypeNumber
	CellTypeString
)

type Cell struct {
	coord string
	typ   CellType
	v     string
}

// Ref returns the cell reference, e.g. "B3".
func (c *Cell) Ref() string { return c.coord }

func (c *Cell) Type() CellType { return c.typ }

// Value returns the literal cell text.
func (c *Cell) Value() string { return c.v }
