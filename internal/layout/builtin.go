package layout

const (
	OctantName = "octant"
	DenseName  = "dense"
)

// octantRows: eight primary directions clockwise from up, four quadrants each
// (up, right, down, left).
var octantRows = [][]rune{
	{'a', 'b', 'c', 'd'},
	{'e', 'f', 'g', 'h'},
	{'i', 'j', 'k', 'l'},
	{'m', 'n', 'o', 'p'},
	{'q', 'r', 's', 't'},
	{'u', 'v', 'w', 'x'},
	{'y', 'z', None, None},
	{' ', None, None, None},
}

// denseRows uses eight secondary sectors with letters on the diagonals,
// grouped like a phone keypad.
var denseRows = [][]rune{
	{None, 'a', None, 'b', None, 'c', None, None},
	{None, 'd', None, 'e', None, 'f', None, None},
	{None, 'g', None, 'h', None, 'i', None, None},
	{None, 'j', None, 'k', None, 'l', None, None},
	{None, 'm', None, 'n', None, 'o', None, None},
	{None, 'p', None, 'q', None, 'r', None, 's'},
	{None, 't', None, 'u', None, 'v', None, ' '},
	{None, 'w', None, 'x', None, 'y', None, 'z'},
}

// Octant is the default 8x4 layout.
func Octant() *Table {
	return mustNew(OctantName, 8, 4, octantRows)
}

// Dense is the 8x8 layout with finer secondary resolution.
func Dense() *Table {
	return mustNew(DenseName, 8, 8, denseRows)
}

func mustNew(name string, primary, secondary int, rows [][]rune) *Table {
	t, err := New(name, primary, secondary, rows)
	if err != nil {
		panic(err)
	}
	return t
}
