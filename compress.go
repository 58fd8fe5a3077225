package netc

import (
	"github.com/uzmigames/netc/internal/bitio"
	"github.com/uzmigames/netc/internal/delta"
	"github.com/uzmigames/netc/internal/lzpmodel"
	"github.com/uzmigames/netc/internal/tans"
)

// candidate is one trial's result: the algorithm/flags pair that will
// become the wire packet_type, the entropy payload, and the tANS initial
// state(s) (empty for non-entropy algorithms) still to be written after
// the header.
type candidate struct {
	algo    Algorithm
	flags   packetFlags
	payload []byte
	states  []uint32
}

// cost is the number of bytes this candidate contributes after the
// header: state words (2 bytes each in compact mode, 4 in legacy) plus
// payload length.
func (c candidate) cost(compact bool) int {
	stateWidth := 4
	if compact {
		stateWidth = 2
	}
	return len(c.states)*stateWidth + len(c.payload)
}

// Compress implements spec §4.H: it runs the configured candidate
// competition over src, selects the smallest valid encoding, and emits a
// self-describing packet. It never writes more than len(src)+HeaderMax
// bytes and never mutates ctx state on any error path.
func (ctx *Context) Compress(src []byte) (out []byte, err error) {
	defer errRecover(&err)

	if ctx == nil {
		panic(errorf(CTX_NULL, "nil context"))
	}
	if len(src) == 0 {
		panic(errorf(INVALID_ARG, "src must not be empty"))
	}
	if len(src) > MaxPacketSize {
		panic(errorf(TOOBIG, "src exceeds 65535 bytes"))
	}

	best := candidate{algo: AlgoPassthrough, payload: src}
	for _, c := range ctx.collectCandidates(src) {
		if ctx.cfg.CompactHeader {
			if _, ok := packetTypeFor(c.algo, c.flags); !ok {
				continue // this algorithm/flag combination has no compact packet type
			}
		}
		if c.cost(ctx.cfg.CompactHeader) < best.cost(ctx.cfg.CompactHeader) {
			best = c
		}
	}

	dst := ctx.emit(best, len(src))

	if ctx.cfg.Stateful {
		ctx.appendRing(src)
		ctx.shiftHistory(src)
	}
	if ctx.cfg.Adaptive {
		ctx.adaptiveUpdate(src)
	}
	if ctx.cfg.Stats {
		ctx.stats.PacketsCompressed++
		ctx.stats.BytesIn += uint64(len(src))
		ctx.stats.BytesOut += uint64(len(dst))
		if best.algo == AlgoPassthrough {
			ctx.stats.PassthroughCount++
		}
	}
	return dst, nil
}

// collectCandidates runs every applicable trial from spec §4.H's
// candidate table and returns their results. Encode failures (e.g. a
// byte outside the trained alphabet) simply drop that candidate; the
// passthrough candidate the caller always starts from guarantees the
// competition never comes up empty.
func (ctx *Context) collectCandidates(src []byte) []candidate {
	var out []candidate
	n := len(src)

	out = append(out, candidate{algo: AlgoRLE, payload: encodeRLE(src)})

	if n >= ctx.plan.lz77Threshold {
		out = append(out, candidate{algo: AlgoLZ77, payload: encodeLZ77(src)})
	}

	bucket0 := ctx.activeTables()[tans.BucketOf(0)]

	// raw-input tANS family.
	out = append(out, ctx.tansFamily(src, packetFlags{}, bucket0)...)

	if ctx.plan.fastSinglePCTX {
		return out
	}

	// LZP-filtered family.
	if lzp := ctx.activeLZP(); lzp != nil {
		filtered := ctx.scratch.lzpFiltered[:n]
		lzpmodel.FilterXOR(filtered, src, lzp, 0)
		out = append(out, ctx.tansFamily(filtered, packetFlags{LZPXor: true}, bucket0)...)

		fb := lzpmodel.EncodeFlagBit(src, lzp, 0)
		out = append(out, candidate{algo: AlgoLZPFlagBit, payload: fb})
	}

	// Delta-residual family (requires a previous packet).
	if ctx.cfg.Delta && ctx.prev != nil && len(ctx.prev) == n {
		residual, order2 := ctx.bestDelta(src, n)
		flags := packetFlags{Delta: true, Order2: order2}
		out = append(out, ctx.tansFamily(residual, flags, bucket0)...)
		if lzp := ctx.activeLZP(); lzp != nil {
			fb := lzpmodel.EncodeFlagBit(residual, lzp, 0)
			out = append(out, candidate{algo: AlgoLZPFlagBit, flags: flags, payload: fb})
		}
	}

	return out
}

// bestDelta computes the order-1 residual against prev, and (when prev2
// is available) the order-2 residual, returning whichever has strictly
// more zero bytes, with order-1 as the tie-break default (spec §4.C).
func (ctx *Context) bestDelta(src []byte, n int) (residual []byte, order2 bool) {
	r1 := ctx.scratch.deltaResidual[:n]
	delta.Order1Residual(r1, src, ctx.prev)
	if ctx.prev2 == nil || len(ctx.prev2) < n {
		return append([]byte(nil), r1...), false
	}
	r2 := make([]byte, n)
	delta.Order2Residual(r2, src, ctx.prev, ctx.prev2)
	if delta.CountZeros(r2) > delta.CountZeros(r1) {
		return r2, true
	}
	return append([]byte(nil), r1...), false
}

// tansFamily runs every tANS variant applicable to one input byte
// sequence (raw, LZP-filtered, or a delta residual), tagging each result
// with flags so the header records which pre-transform produced it.
func (ctx *Context) tansFamily(input []byte, flags packetFlags, bucket0 *tans.Table) []candidate {
	var out []candidate
	n := len(input)
	buf := ctx.scratch.candidateBuf

	single, err := ctx.encodeSingle(input, bucket0, buf)
	if err == nil {
		out = append(out, candidate{algo: AlgoTANSSingle, flags: flags, payload: single.payload, states: single.states})
	}

	if n >= 2 && ctx.plan.allowX2 {
		x2, err := ctx.encodeX2(input, bucket0, buf)
		if err == nil {
			out = append(out, candidate{algo: AlgoTANSX2, flags: flags, payload: x2.payload, states: x2.states})
		}
	}

	pctx, err := ctx.encodePCTX(input, ctx.activeTables(), buf)
	if err == nil {
		out = append(out, candidate{algo: AlgoTANSPCTX, flags: flags, payload: pctx.payload, states: pctx.states})
	}

	if ctx.cfg.Bigram && ctx.plan.allowBigram && ctx.dict.HasBigram() {
		bg, err := ctx.encodeBigramPCTX(input, buf)
		if err == nil {
			out = append(out, candidate{algo: AlgoTANSBigramPCTX, flags: flags, payload: bg.payload, states: bg.states})
		}
	}

	if n <= ctx.plan.tenBitThreshold && ctx.cfg.CompactHeader {
		t10, err := ctx.encodePCTX10(input, buf)
		if err == nil {
			algo := AlgoTANS10
			if flags.Delta {
				algo = AlgoTANS10Delta
			}
			out = append(out, candidate{algo: algo, flags: flags, payload: t10.payload, states: t10.states})
		}
	}

	return out
}

type encoded struct {
	payload []byte
	states  []uint32
}

func (ctx *Context) encodeSingle(input []byte, table *tans.Table, buf []byte) (encoded, error) {
	w := bitio.NewWriter(buf)
	state, err := tans.Encode(table, w, input)
	if err != nil {
		return encoded{}, err
	}
	n, err := w.Close()
	if err != nil {
		return encoded{}, err
	}
	return encoded{payload: append([]byte(nil), buf[:n]...), states: []uint32{state}}, nil
}

func (ctx *Context) encodeX2(input []byte, table *tans.Table, buf []byte) (encoded, error) {
	w := bitio.NewWriter(buf)
	s0, s1, err := tans.EncodeX2(table, w, input)
	if err != nil {
		return encoded{}, err
	}
	n, err := w.Close()
	if err != nil {
		return encoded{}, err
	}
	return encoded{payload: append([]byte(nil), buf[:n]...), states: []uint32{s0, s1}}, nil
}

func (ctx *Context) encodePCTX(input []byte, tables *tans.TableSet, buf []byte) (encoded, error) {
	w := bitio.NewWriter(buf)
	state, err := tans.EncodePCTX(tables, w, input)
	if err != nil {
		return encoded{}, err
	}
	n, err := w.Close()
	if err != nil {
		return encoded{}, err
	}
	return encoded{payload: append([]byte(nil), buf[:n]...), states: []uint32{state}}, nil
}

func (ctx *Context) encodeBigramPCTX(input []byte, buf []byte) (encoded, error) {
	w := bitio.NewWriter(buf)
	state, err := tans.EncodeBigramPCTX(&ctx.dict.bigram12, ctx.activeTables(), ctx.dict.classOf, w, input, 0)
	if err != nil {
		return encoded{}, err
	}
	n, err := w.Close()
	if err != nil {
		return encoded{}, err
	}
	return encoded{payload: append([]byte(nil), buf[:n]...), states: []uint32{state}}, nil
}

func (ctx *Context) encodePCTX10(input []byte, buf []byte) (encoded, error) {
	w := bitio.NewWriter(buf)
	state, err := tans.EncodePCTX(&ctx.dict.primary10, w, input)
	if err != nil {
		return encoded{}, err
	}
	n, err := w.Close()
	if err != nil {
		return encoded{}, err
	}
	return encoded{payload: append([]byte(nil), buf[:n]...), states: []uint32{state}}, nil
}

// emit writes the chosen candidate's header, state(s), and payload into a
// freshly sized destination buffer (spec §4.H "Header emission").
func (ctx *Context) emit(c candidate, originalSize int) []byte {
	compact := ctx.cfg.CompactHeader
	stateWidth := 4
	if compact {
		stateWidth = 2
	}
	bodyLen := len(c.states)*stateWidth + len(c.payload)

	if compact {
		dst := make([]byte, 4+bodyLen)
		hlen, err := encodeCompactHeader(dst, c.algo, c.flags, originalSize)
		if err != nil {
			panic(err)
		}
		dst = dst[:hlen+bodyLen]
		off := hlen
		off = writeStates(dst, off, c.states, 2)
		copy(dst[off:], c.payload)
		return dst
	}

	dst := make([]byte, 8+bodyLen)
	if err := encodeLegacyHeader(dst, c.algo, c.flags, originalSize, bodyLen, ctx.dict.ModelID, ctx.seq); err != nil {
		panic(err)
	}
	off := 8
	off = writeStates(dst, off, c.states, 4)
	copy(dst[off:], c.payload)
	return dst
}

func writeStates(dst []byte, off int, states []uint32, width int) int {
	for _, s := range states {
		if width == 2 {
			dst[off] = byte(s)
			dst[off+1] = byte(s >> 8)
		} else {
			dst[off] = byte(s)
			dst[off+1] = byte(s >> 8)
			dst[off+2] = byte(s >> 16)
			dst[off+3] = byte(s >> 24)
		}
		off += width
	}
	return off
}
