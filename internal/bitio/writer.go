// Package bitio implements the two bitstream primitives netc's codecs are
// built on: an LSB-first forward writer with a sentinel-bit close, and the
// MSB-first backward reader that undoes it. The pairing is the same trick
// tANS/FSE implementations rely on: encoders emit bit-groups in the reverse
// of the order decoders need them, and the backward reader's sequential
// reads reproduce the original (forward) symbol order without either side
// ever storing an explicit bit-length prefix.
package bitio

import (
	"encoding/binary"
	"runtime"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "bitio: " + string(e) }

// ErrBufferTooSmall is raised when a flush would write past the
// destination's capacity.
var ErrBufferTooSmall = Error("destination buffer too small")

// ErrCorrupt is raised by Reader when the stream cannot be decoded: a zero
// sentinel byte, or a read past the start of the buffer.
var ErrCorrupt = Error("stream is corrupted")

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case Error:
		*err = ex
	default:
		panic(ex)
	}
}

// Writer packs bit-groups LSB-first into a caller-supplied destination
// buffer using a 64-bit accumulator. It never allocates.
//
// WriteBits accepts nb up to 24 bits per call; larger values must be split
// by the caller. Bits accumulate at increasing significance as they are
// written, and are flushed to dst four bytes (32 bits) at a time in
// little-endian order once the accumulator holds enough of them.
type Writer struct {
	dst   []byte
	pos   int
	acc   uint64
	nbits uint
	err   error // ErrBufferTooSmall once a flush has overflowed dst
}

// NewWriter returns a Writer that packs bits into dst starting at offset 0.
func NewWriter(dst []byte) *Writer {
	return &Writer{dst: dst}
}

// Reset reinitializes w to write into dst from the start.
func (w *Writer) Reset(dst []byte) {
	*w = Writer{dst: dst}
}

// Len reports the number of whole bytes flushed to dst so far.
func (w *Writer) Len() int { return w.pos }

// WriteBits packs the low nb bits of value into the stream. If a resulting
// flush would overflow dst, the Writer records ErrBufferTooSmall, ignores
// this and every later write, and Close reports the error; the check is
// only made when a flush actually occurs, not on every call.
func (w *Writer) WriteBits(value uint32, nb uint) {
	if nb == 0 || w.err != nil {
		return
	}
	w.acc |= uint64(value&((1<<nb)-1)) << w.nbits
	w.nbits += nb
	for w.nbits >= 32 {
		if w.pos+4 > len(w.dst) {
			w.err = ErrBufferTooSmall
			return
		}
		w.flush32()
		w.nbits -= 32
	}
}

func (w *Writer) flush32() {
	if w.pos+4 > len(w.dst) {
		panic(ErrBufferTooSmall)
	}
	binary.LittleEndian.PutUint32(w.dst[w.pos:w.pos+4], uint32(w.acc))
	w.pos += 4
	w.acc >>= 32
}

// Close appends the single 1-bit sentinel and zero-pads to the next byte
// boundary, then flushes every remaining whole byte. It returns the total
// number of bytes written, or ErrBufferTooSmall if any write overflowed
// dst. Close must be called exactly once; the Writer must not be reused
// afterward without a Reset.
func (w *Writer) Close() (n int, err error) {
	defer errRecover(&err)
	w.WriteBits(1, 1)
	if w.err != nil {
		return 0, w.err
	}
	if pad := w.nbits % 8; pad != 0 {
		w.nbits += 8 - pad
	}
	for w.nbits >= 8 {
		if w.pos >= len(w.dst) {
			panic(ErrBufferTooSmall)
		}
		w.dst[w.pos] = byte(w.acc)
		w.pos++
		w.acc >>= 8
		w.nbits -= 8
	}
	return w.pos, nil
}

// MaxBytes returns the worst-case number of bytes a stream of nbits data
// bits (plus the sentinel) can occupy.
func MaxBytes(nbits int) int {
	return (nbits+1+7)/8 + 4 // +4 accounts for the flush granularity of 32 bits
}
