package tans

import "github.com/uzmigames/netc/internal/bitio"

// encodeStep performs one symbol's transition of the tANS encode
// recurrence against table t, writing its bits to w and returning the new
// state.
func encodeStep(t *Table, w *bitio.Writer, state uint32, sym byte) (uint32, error) {
	e := t.encSym[sym]
	if e.Freq == 0 {
		return 0, ErrUnencodableSymbol
	}
	var nb uint8
	if e.NbHi == 0 || state >= uint32(e.Lower) {
		nb = e.NbHi
	} else {
		nb = e.NbHi - 1
	}
	w.WriteBits(state&(1<<uint(nb)-1), uint(nb))
	j := (state >> nb) - uint32(e.Freq)
	return uint32(t.encState[uint32(e.Cumul)+j]), nil
}

// decodeStep performs one symbol's transition of the tANS decode
// recurrence against table t, reading its bits from r.
func decodeStep(t *Table, r *bitio.Reader, state uint32) (sym byte, next uint32, err error) {
	if state < t.Params.Size || state >= 2*t.Params.Size {
		return 0, 0, ErrCorrupt
	}
	slot := t.dec[state-t.Params.Size]
	val, err := r.ReadBits(uint(slot.NbBits))
	if err != nil {
		return 0, 0, ErrCorrupt
	}
	return slot.Symbol, uint32(slot.NextBase) + val, nil
}

// Encode runs the single-region tANS encoder over src, processing symbols
// right-to-left per spec §4.E, and returns the final state to be carried
// in the packet header.
func Encode(t *Table, w *bitio.Writer, src []byte) (finalState uint32, err error) {
	state := t.Params.Size
	for i := len(src) - 1; i >= 0; i-- {
		state, err = encodeStep(t, w, state, src[i])
		if err != nil {
			return 0, err
		}
	}
	return state, nil
}

// Decode runs the single-region tANS decoder, filling dst left-to-right
// from the initial state recovered from the header.
func Decode(t *Table, r *bitio.Reader, dst []byte, initState uint32) error {
	state := initState
	var sym byte
	var err error
	for i := range dst {
		sym, state, err = decodeStep(t, r, state)
		if err != nil {
			return err
		}
		dst[i] = sym
	}
	return nil
}

// EncodeX2 implements the dual-interleaved variant (spec §4.E "X2"): two
// independent states are advanced alternately by byte-position parity
// (even positions on state0, odd positions on state1), processed in a
// single right-to-left pass so both ride the same bitstream. If len(src)
// is odd, the lone even-indexed leftover (position 0) is carried by
// state0 alone, matching the spec's "odd leftover byte uses X0".
func EncodeX2(t *Table, w *bitio.Writer, src []byte) (state0, state1 uint32, err error) {
	state0, state1 = t.Params.Size, t.Params.Size
	for i := len(src) - 1; i >= 0; i-- {
		if i%2 == 0 {
			state0, err = encodeStep(t, w, state0, src[i])
		} else {
			state1, err = encodeStep(t, w, state1, src[i])
		}
		if err != nil {
			return 0, 0, err
		}
	}
	return state0, state1, nil
}

// DecodeX2 inverts EncodeX2.
func DecodeX2(t *Table, r *bitio.Reader, dst []byte, state0, state1 uint32) error {
	if state0 < t.Params.Size || state0 >= 2*t.Params.Size ||
		state1 < t.Params.Size || state1 >= 2*t.Params.Size {
		return ErrCorrupt
	}
	var sym byte
	var err error
	for i := range dst {
		if i%2 == 0 {
			sym, state0, err = decodeStep(t, r, state0)
		} else {
			sym, state1, err = decodeStep(t, r, state1)
		}
		if err != nil {
			return err
		}
		dst[i] = sym
	}
	return nil
}

// TableSet is 16 per-position-bucket tables sharing one Params shape, used
// by the PCTX and bigram-PCTX variants.
type TableSet [NumBuckets]*Table

// EncodePCTX implements the per-position-context variant (spec §4.E
// "PCTX"): the table used to encode byte i is tables[BucketOf(i)].
func EncodePCTX(tables *TableSet, w *bitio.Writer, src []byte) (finalState uint32, err error) {
	size := tables.size()
	state := size
	for i := len(src) - 1; i >= 0; i-- {
		tbl := tables[BucketOf(i)]
		state, err = encodeStep(tbl, w, state, src[i])
		if err != nil {
			return 0, err
		}
	}
	return state, nil
}

// DecodePCTX inverts EncodePCTX.
func DecodePCTX(tables *TableSet, r *bitio.Reader, dst []byte, initState uint32) error {
	size := tables.size()
	if initState < size || initState >= 2*size {
		return ErrCorrupt
	}
	state := initState
	var sym byte
	var err error
	for i := range dst {
		tbl := tables[BucketOf(i)]
		sym, state, err = decodeStep(tbl, r, state)
		if err != nil {
			return err
		}
		dst[i] = sym
	}
	return nil
}

func (ts *TableSet) size() uint32 {
	for _, t := range ts {
		if t != nil {
			return t.Params.Size
		}
	}
	return 0
}

// BigramTableSet holds, per bucket and per bigram class (0..7), a table
// conditioned on the previous byte's class. A nil entry means that
// (bucket, class) combination was empty or invalid during training; the
// caller falls back to the unigram PCTX table for that bucket.
type BigramTableSet [NumBuckets][NumBigramClasses]*Table

// ClassOf maps a previous byte to a bigram class using a classifier
// function (the trained 8-way map, or the static 4-way fallback).
type ClassOf func(prevByte byte) int

// EncodeBigramPCTX implements the bigram-PCTX variant (spec §4.E
// "Bigram-PCTX"): the table for byte i is bigram[bucket(i)][class(prev)],
// falling back to unigram[bucket(i)] when that slot is nil. prevByte for
// position i is src[i-1], or startPrev for i == 0 — a byte of the
// sequence being encoded, so when the caller passes an LZP-filtered
// sequence or a delta residual, the class comes from that byte.
func EncodeBigramPCTX(bigram *BigramTableSet, unigram *TableSet, classOf ClassOf, w *bitio.Writer, src []byte, startPrev byte) (finalState uint32, err error) {
	size := unigram.size()
	state := size
	for i := len(src) - 1; i >= 0; i-- {
		prev := startPrev
		if i > 0 {
			prev = src[i-1]
		}
		tbl := selectBigramTable(bigram, unigram, i, classOf(prev))
		state, err = encodeStep(tbl, w, state, src[i])
		if err != nil {
			return 0, err
		}
	}
	return state, nil
}

// DecodeBigramPCTX inverts EncodeBigramPCTX, using the already-decoded
// previous byte to recompute each position's bigram class.
func DecodeBigramPCTX(bigram *BigramTableSet, unigram *TableSet, classOf ClassOf, r *bitio.Reader, dst []byte, initState uint32, startPrev byte) error {
	size := unigram.size()
	if initState < size || initState >= 2*size {
		return ErrCorrupt
	}
	state := initState
	var sym byte
	var err error
	for i := range dst {
		prev := startPrev
		if i > 0 {
			prev = dst[i-1]
		}
		tbl := selectBigramTable(bigram, unigram, i, classOf(prev))
		sym, state, err = decodeStep(tbl, r, state)
		if err != nil {
			return err
		}
		dst[i] = sym
	}
	return nil
}

func selectBigramTable(bigram *BigramTableSet, unigram *TableSet, pos, class int) *Table {
	bucket := BucketOf(pos)
	if t := bigram[bucket][class]; t != nil {
		return t
	}
	return unigram[bucket]
}
