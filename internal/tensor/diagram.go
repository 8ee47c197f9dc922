package tensor

import (
	"fmt"
	"strings"
)

// Diagram renders the tensor network as ASCII art: one column per mode with
// the full sizes on top, Tucker ranks (when present) between, numbered
// cores, and the bond ranks along the bottom rail.
//
//	3D TT-Tucker tensor [32 32 32]
//
//	  32   32   32
//	   |    |    |
//	  10   10   10
//	   |    |    |
//	  (0)  (1)  (2)
//	  / \  / \  / \
//	 1    8    8    1
func (t *Tensor) Diagram() string {
	n := t.Dim()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", t)

	shape := t.Shape()
	for _, s := range shape {
		fmt.Fprintf(&b, "%4d ", s)
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("   | ", n))
	b.WriteByte('\n')
	if t.HasTucker() {
		for _, r := range t.RanksTucker() {
			fmt.Fprintf(&b, "%4d ", r)
		}
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("   | ", n))
		b.WriteByte('\n')
	}
	for k := 0; k < n; k++ {
		fmt.Fprintf(&b, " (%d) ", k)
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" / \\ ", n))
	b.WriteByte('\n')
	for _, r := range t.RanksTT() {
		fmt.Fprintf(&b, "%-5d", r)
	}
	b.WriteByte('\n')
	return b.String()
}
