// Package delta implements netc's field-class inter-packet predictor
// (spec §4.C): an offset-dependent XOR/SUB residual, in first- and
// second-order variants.
package delta

// useXOR reports whether offset off uses XOR (true) or wrapping
// subtraction (false) as its combining operator. XOR preserves the
// mantissa-delta pattern on IEEE-754 float components; subtraction gives a
// tighter residual on monotonically changing counters.
func useXOR(off int) bool {
	return off < 16 || (off >= 64 && off < 256)
}

// combine applies the offset's class operator to a and b.
func combine(off int, a, b byte) byte {
	if useXOR(off) {
		return a ^ b
	}
	return a - b
}

// uncombine inverts combine for SUB classes; XOR is its own inverse.
func uncombine(off int, residual, b byte) byte {
	if useXOR(off) {
		return residual ^ b
	}
	return residual + b
}

// Order1Residual writes into dst the order-1 residual of curr against prev:
// residual[i] = curr[i] (op) prev[i], per-offset XOR or wrapping SUB.
// len(dst) must equal len(curr); prev may be shorter than curr, in which
// case offsets beyond len(prev) are left unmodified (combined against 0).
func Order1Residual(dst, curr, prev []byte) {
	for i, c := range curr {
		var p byte
		if i < len(prev) {
			p = prev[i]
		}
		dst[i] = combine(i, c, p)
	}
}

// Order1Reconstruct inverts Order1Residual.
func Order1Reconstruct(dst, residual, prev []byte) {
	for i, r := range residual {
		var p byte
		if i < len(prev) {
			p = prev[i]
		}
		dst[i] = uncombine(i, r, p)
	}
}

// Order2Residual writes into dst the order-2 residual of curr against the
// linear extrapolation predicted[i] = 2*prev[i] - prev2[i] (mod 256).
// prev and prev2 must each be at least len(curr) bytes.
func Order2Residual(dst, curr, prev, prev2 []byte) {
	for i, c := range curr {
		pred := 2*prev[i] - prev2[i]
		dst[i] = combine(i, c, pred)
	}
}

// Order2Reconstruct inverts Order2Residual.
func Order2Reconstruct(dst, residual, prev, prev2 []byte) {
	for i, r := range residual {
		pred := 2*prev[i] - prev2[i]
		dst[i] = uncombine(i, r, pred)
	}
}

// CountZeros returns the number of zero bytes in buf, used by the
// compressor to decide between order-1 and order-2 delta.
func CountZeros(buf []byte) int {
	n := 0
	for _, b := range buf {
		if b == 0 {
			n++
		}
	}
	return n
}

// PreferOrder2 reports whether the order-2 residual should be chosen over
// order-1: strictly more zero bytes, and both prev2 and enough history are
// available.
func PreferOrder2(curr, prev, prev2 []byte) bool {
	if prev2 == nil || len(prev) < len(curr) || len(prev2) < len(curr) {
		return false
	}
	r1 := make([]byte, len(curr))
	r2 := make([]byte, len(curr))
	Order1Residual(r1, curr, prev)
	Order2Residual(r2, curr, prev, prev2)
	return CountZeros(r2) > CountZeros(r1)
}
