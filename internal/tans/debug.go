//go:build debug

package tans

import "fmt"

// DebugString renders the decode table for manual inspection; only built
// with -tags debug, never reachable from production code paths.
func (t *Table) DebugString() string {
	s := fmt.Sprintf("tANS table log=%d size=%d\n", t.Params.Log, t.Params.Size)
	for pos, slot := range t.dec {
		s += fmt.Sprintf("  slot %5d: sym=%3d nbBits=%2d nextBase=%5d\n", pos, slot.Symbol, slot.NbBits, slot.NextBase)
	}
	return s
}
