package netc

import (
	"github.com/uzmigames/netc/internal/lzpmodel"
	"github.com/uzmigames/netc/internal/tans"
)

// adaptiveState is the per-context mutable learning state of spec §4.J:
// per-bucket frequency accumulators blended against the dictionary
// baseline at a fixed interval, a packet counter, and a private mutable
// clone of the dictionary's LZP table.
type adaptiveState struct {
	freqAccum  [tans.NumBuckets][256]uint64
	totalAccum [tans.NumBuckets]uint64
	pktCount   int

	tables tans.TableSet // live, possibly-rebuilt 12-bit tables; starts as a copy of dict.primary12
	lzp    lzpmodel.Table
}

// rebuildInterval is the adaptive rebuild cadence (spec §4.J step 2).
const rebuildInterval = 128

// adaptiveBlendAlpha is the weight given to freshly observed frequencies
// versus the dictionary baseline during a rebuild (spec §4.J step 2,
// alpha = 3/4).
const adaptiveBlendAlpha = 0.75

// Context owns the mutable per-stream state compress and decompress
// operate on: ring buffer history, prev/prev2 packets for delta
// prediction, adaptive accumulators, and statistics (spec §3.6). It
// holds a non-owning reference to a Dictionary, which must outlive it,
// and is not safe for concurrent use from multiple goroutines (spec §5).
type Context struct {
	dict *Dictionary
	cfg  Config
	plan plan

	ring     []byte
	ringPos  int
	ringFull bool

	prev  []byte
	prev2 []byte
	seq   byte

	adaptive *adaptiveState

	stats Stats

	scratch scratch
}

// scratch is the set of reusable buffers the compressor and decompressor
// write into across calls, standing in for the spec's scoped bump-arena
// (spec §9 "Arena allocator... reuse a slab of bytes owned by the
// context"). Go's slice model and garbage collector make a literal
// zero-allocation hot path impractical to guarantee the way a C arena
// does; reusing these buffers keeps the steady-state allocation count
// low without fighting the language (see DESIGN.md).
type scratch struct {
	deltaResidual []byte
	lzpFiltered   []byte
	candidateBuf  []byte
	outBuf        []byte
}

func newScratch(maxPacket int) scratch {
	return scratch{
		deltaResidual: make([]byte, maxPacket),
		lzpFiltered:   make([]byte, maxPacket),
		candidateBuf:  make([]byte, maxPacket*2+64),
		outBuf:        make([]byte, maxPacket+HeaderMax),
	}
}

// NewContext validates cfg, resolves the compression-level trial plan,
// allocates the ring buffer (if stateful) and adaptive state (if
// adaptive), and returns a ready-to-use Context (spec §4.G ctx_create).
func NewContext(dict *Dictionary, cfg Config) (*Context, error) {
	if dict == nil {
		return nil, errorf(INVALID_ARG, "dictionary must not be nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	ctx := &Context{
		dict:    dict,
		cfg:     cfg,
		plan:    candidatePlan(cfg),
		scratch: newScratch(MaxPacketSize),
	}
	if cfg.Stateful {
		ctx.ring = make([]byte, cfg.ringBufferSize())
	}
	if cfg.Adaptive {
		ctx.initAdaptive()
	}
	return ctx, nil
}

func (ctx *Context) initAdaptive() {
	a := &adaptiveState{}
	a.tables = ctx.dict.primary12
	if ctx.dict.HasLZP() {
		a.lzp = ctx.dict.lzp.Clone()
	}
	ctx.adaptive = a
}

// Reset zeroes the ring buffer, prev/prev2, sequence counter, and
// adaptive accumulators without reallocating memory (spec §4.G
// ctx_reset).
func (ctx *Context) Reset() {
	for i := range ctx.ring {
		ctx.ring[i] = 0
	}
	ctx.ringPos, ctx.ringFull = 0, false
	ctx.prev, ctx.prev2 = nil, nil
	ctx.seq = 0
	ctx.stats = Stats{}
	if a := ctx.adaptive; a != nil {
		a.freqAccum = [tans.NumBuckets][256]uint64{}
		a.totalAccum = [tans.NumBuckets]uint64{}
		a.pktCount = 0
		a.tables = ctx.dict.primary12
		copy(a.lzp, ctx.dict.lzp)
	}
}

// activeTables returns the 12-bit per-bucket table set compress/decompress
// should read from: the adaptively blended copy if adaptive learning is
// enabled, otherwise the dictionary's immutable baseline.
func (ctx *Context) activeTables() *tans.TableSet {
	if ctx.adaptive != nil {
		return &ctx.adaptive.tables
	}
	return &ctx.dict.primary12
}

// activeLZP returns the LZP table compress/decompress should consult:
// the context's mutable clone under adaptive learning, otherwise the
// dictionary's shared read-only table.
func (ctx *Context) activeLZP() lzpmodel.Table {
	if ctx.adaptive != nil {
		return ctx.adaptive.lzp
	}
	return ctx.dict.lzp
}

// appendRing appends data to the ring buffer, wrapping at capacity (spec
// §3.6: "the ring buffer mutates only at the tail of a successful
// compress/decompress").
func (ctx *Context) appendRing(data []byte) {
	if len(ctx.ring) == 0 {
		return
	}
	for _, b := range data {
		ctx.ring[ctx.ringPos] = b
		ctx.ringPos++
		if ctx.ringPos == len(ctx.ring) {
			ctx.ringPos = 0
			ctx.ringFull = true
		}
	}
}

// shiftHistory updates prev/prev2 atomically at the end of a successful
// round-trip (spec §3.6). The byte slice is copied since src/dst buffers
// belong to the caller and may be reused.
func (ctx *Context) shiftHistory(data []byte) {
	cp := append([]byte(nil), data...)
	ctx.prev2 = ctx.prev
	ctx.prev = cp
	if ctx.seq != 255 {
		ctx.seq++
	} else {
		ctx.seq = 0
	}
}
