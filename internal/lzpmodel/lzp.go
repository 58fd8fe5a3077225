// Package lzpmodel implements netc's LZP (Lempel-Ziv Prediction) byte
// predictor (spec §3.3 / §4.D): a position-aware order-1 context hash table
// used both as an XOR pre-filter and as a flag-bit predict/reconstruct
// codec, plus the adaptive confidence-update walk and Boyer-Moore majority
// training pass.
package lzpmodel

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

const (
	// TableBits is the size of the LZP prediction table in bits (2^17
	// entries, spec §3.3).
	TableBits = 17
	// TableSize is the number of entries in an LZP prediction table.
	TableSize = 1 << TableBits
	tableMask = TableSize - 1

	// MinHitRate is the minimum corpus hit-rate a trained slot must clear
	// to be kept (spec §4.F step 5).
	MinHitRate = 0.40
	// TrainedConfidence is the confidence assigned to a freshly trained
	// slot.
	TrainedConfidence = 4
)

// Entry is one LZP prediction slot. Confidence == 0 marks an empty slot.
type Entry struct {
	Predicted  byte
	Confidence byte
}

// Table is the full 2^17-entry LZP prediction table.
type Table []Entry

// NewTable returns an empty (all slots unset) table.
func NewTable() Table {
	return make(Table, TableSize)
}

// Clone returns a deep, independently mutable copy of t. Contexts clone the
// dictionary's baseline table into their own adaptive copy this way (spec
// §3.6, §4.G).
func (t Table) Clone() Table {
	c := make(Table, len(t))
	copy(c, t)
	return c
}

// ContextHash mixes prevByte and position into a 17-bit table slot using
// xxhash64 as the concrete realization of the "32-bit multiplicative/FNV
// style mix" called for by spec §3.3 (see SPEC_FULL.md's domain-stack
// section for why xxhash rather than a hand-rolled FNV mix).
func ContextHash(prevByte byte, pos int) uint32 {
	var key [8]byte
	key[0] = prevByte
	binary.LittleEndian.PutUint32(key[1:5], uint32(pos))
	return uint32(xxhash.Sum64(key[:])) & tableMask
}

// Lookup reports the predicted byte for context (prevByte, pos), if any.
func (t Table) Lookup(prevByte byte, pos int) (predicted byte, ok bool) {
	e := t[ContextHash(prevByte, pos)]
	if e.Confidence == 0 {
		return 0, false
	}
	return e.Predicted, true
}

// Update performs one step of the adaptive confidence walk (spec §4.D) for
// the slot addressed by (prevByte, pos), given the byte actually observed
// there. Hits saturate confidence upward at 255. Misses decay confidence
// toward a floor of 1; a slot already at the floor (including a still-empty
// slot, confidence 0) is overwritten with the observed byte and reset to
// confidence 1. This is the natural extension of the spec's replacement
// rule to slots that were never trained.
func (t Table) Update(prevByte byte, pos int, actual byte) {
	e := &t[ContextHash(prevByte, pos)]
	if e.Confidence > 0 && e.Predicted == actual {
		if e.Confidence < 255 {
			e.Confidence++
		}
		return
	}
	if e.Confidence <= 1 {
		e.Predicted = actual
		e.Confidence = 1
		return
	}
	e.Confidence--
}

// FilterXOR applies the LZP XOR pre-filter (spec §4.D mode 1): each byte
// whose slot holds a prediction is XORed with it, so hits become 0x00;
// bytes whose slot is empty pass through unchanged. The context hash always walks the
// original (unfiltered) bytes, via prev. dst and src must be the same
// length; startPrev is the context byte preceding src[0] (0 if none).
func FilterXOR(dst, src []byte, table Table, startPrev byte) {
	prev := startPrev
	for i, b := range src {
		if pred, ok := table.Lookup(prev, i); ok {
			dst[i] = b ^ pred
		} else {
			dst[i] = b
		}
		prev = b
	}
}

// UnfilterXOR inverts FilterXOR.
func UnfilterXOR(dst, filtered []byte, table Table, startPrev byte) {
	prev := startPrev
	for i, f := range filtered {
		var b byte
		if pred, ok := table.Lookup(prev, i); ok {
			b = f ^ pred
		} else {
			b = f
		}
		dst[i] = b
		prev = b
	}
}
