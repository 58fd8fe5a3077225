package lzpmodel

import "encoding/binary"

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "lzpmodel: " + string(e) }

// ErrCorrupt is returned when a flag-bit packet fails to validate.
var ErrCorrupt = Error("flag-bit stream is corrupted")

// EncodeFlagBit implements the flag-bit predict/reconstruct variant (spec
// §4.D mode 2): [n_literals:u16 LE][packed flag bits, MSB-first, one per
// input byte][literal bytes]. Flag 1 means the LZP prediction matched
// (no literal emitted); flag 0 means a literal byte follows.
func EncodeFlagBit(src []byte, table Table, startPrev byte) []byte {
	n := len(src)
	flagBytes := (n + 7) / 8
	literals := make([]byte, 0, n)
	flags := make([]byte, flagBytes)

	prev := startPrev
	for i, b := range src {
		pred, ok := table.Lookup(prev, i)
		if ok && pred == b {
			flags[i/8] |= 1 << uint(7-i%8)
		} else {
			literals = append(literals, b)
		}
		prev = b
	}

	out := make([]byte, 2+flagBytes+len(literals))
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(literals)))
	copy(out[2:2+flagBytes], flags)
	copy(out[2+flagBytes:], literals)
	return out
}

// DecodeFlagBit inverts EncodeFlagBit, reconstructing n original bytes. The
// reconstruction must walk forward using the already-decoded previous byte
// to recompute the context hash; it is defined over original, not
// filtered, bytes.
func DecodeFlagBit(packet []byte, n int, table Table, startPrev byte) ([]byte, error) {
	if len(packet) < 2 {
		return nil, ErrCorrupt
	}
	nLit := int(binary.LittleEndian.Uint16(packet[0:2]))
	flagBytes := (n + 7) / 8
	if nLit < 0 || len(packet) < 2+flagBytes+nLit {
		return nil, ErrCorrupt
	}
	flags := packet[2 : 2+flagBytes]
	literals := packet[2+flagBytes : 2+flagBytes+nLit]

	out := make([]byte, n)
	prev := startPrev
	litIdx := 0
	for i := 0; i < n; i++ {
		isMatch := flags[i/8]&(1<<uint(7-i%8)) != 0
		var b byte
		if isMatch {
			pred, ok := table.Lookup(prev, i)
			if !ok {
				return nil, ErrCorrupt
			}
			b = pred
		} else {
			if litIdx >= len(literals) {
				return nil, ErrCorrupt
			}
			b = literals[litIdx]
			litIdx++
		}
		out[i] = b
		prev = b
	}
	if litIdx != nLit {
		return nil, ErrCorrupt
	}
	return out, nil
}

// EncodedLen reports the length EncodeFlagBit would produce for a payload
// of n bytes with nLiterals literal bytes, without doing the encode.
func EncodedLen(n, nLiterals int) int {
	return 2 + (n+7)/8 + nLiterals
}

// boyerMooreMajority returns the Boyer-Moore majority-vote candidate over
// vals. It is a single linear pass with no allocation; the caller verifies
// the hit rate separately since Boyer-Moore only guarantees correctness
// when a true majority exists.
func boyerMooreMajority(vals []byte) byte {
	var cand byte
	var count int
	for _, v := range vals {
		if count == 0 {
			cand = v
			count = 1
		} else if v == cand {
			count++
		} else {
			count--
		}
	}
	return cand
}

// Train builds an LZP table from a packet corpus (spec §4.F step 5): for
// each (prev_byte, position) hash slot, the majority-vote byte across the
// corpus is found via Boyer-Moore, and kept only if its hit rate over that
// slot's observations is at least MinHitRate.
func Train(packets [][]byte) Table {
	t := NewTable()
	buckets := make(map[uint32][]byte)
	for _, pkt := range packets {
		var prev byte
		for pos, b := range pkt {
			slot := ContextHash(prev, pos)
			buckets[slot] = append(buckets[slot], b)
			prev = b
		}
	}
	for slot, vals := range buckets {
		cand := boyerMooreMajority(vals)
		hits := 0
		for _, v := range vals {
			if v == cand {
				hits++
			}
		}
		if float64(hits)/float64(len(vals)) >= MinHitRate {
			t[slot] = Entry{Predicted: cand, Confidence: TrainedConfidence}
		}
	}
	return t
}
