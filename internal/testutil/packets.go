package testutil

// LowEntropyPacket synthesizes one packet of length n whose byte
// distribution is skewed the way the module's trained codecs expect:
// most positions draw from a small alphabet, with the alphabet and bias
// nudged per position so per-position (bucket) statistics differ.
func LowEntropyPacket(r *Rand, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		switch {
		case r.Intn(10) == 0:
			out[i] = byte(r.Intn(256))
		case i%4 == 0:
			out[i] = byte(r.Intn(4))
		default:
			out[i] = byte(0x20 + r.Intn(16))
		}
	}
	return out
}

// LowEntropyStream returns count independent low-entropy packets of length
// n, suitable as a training corpus or a round-trip test sequence.
func LowEntropyStream(r *Rand, count, n int) [][]byte {
	out := make([][]byte, count)
	for i := range out {
		out[i] = LowEntropyPacket(r, n)
	}
	return out
}

// SimilarStream returns count packets derived from a shared base packet by
// flipping a handful of bytes each time, modeling the highly-correlated
// successive-packet structure the delta and LZP predictors target.
func SimilarStream(r *Rand, count, n, flipsPerPacket int) [][]byte {
	base := LowEntropyPacket(r, n)
	out := make([][]byte, count)
	cur := append([]byte(nil), base...)
	for i := range out {
		for f := 0; f < flipsPerPacket; f++ {
			pos := r.Intn(n)
			cur[pos] = byte(r.Intn(256))
		}
		out[i] = append([]byte(nil), cur...)
	}
	return out
}
