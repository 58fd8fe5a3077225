package netc

import (
	"encoding/binary"

	"github.com/uzmigames/netc/internal/bitio"
	"github.com/uzmigames/netc/internal/delta"
	"github.com/uzmigames/netc/internal/lzpmodel"
	"github.com/uzmigames/netc/internal/tans"
)

// Decompress implements spec §4.I: it treats src as untrusted input,
// validates every length and algorithm-id before use, dispatches to
// exactly the decode path the header claims, and returns bytes identical
// to whatever Compress originally produced them from.
func (ctx *Context) Decompress(src []byte) (out []byte, err error) {
	defer errRecover(&err)

	if ctx == nil {
		panic(errorf(CTX_NULL, "nil context"))
	}
	if len(src) == 0 {
		panic(errorf(CORRUPT, "empty packet"))
	}

	var hdr header
	if ctx.cfg.CompactHeader {
		hdr, err = decodeCompactHeader(src)
	} else {
		hdr, err = decodeLegacyHeader(src)
	}
	if err != nil {
		panic(err)
	}
	if hdr.OriginalSize <= 0 || hdr.OriginalSize > MaxPacketSize {
		panic(errorf(CORRUPT, "original size out of range"))
	}
	if !ctx.cfg.CompactHeader && hdr.ModelID != ctx.dict.ModelID {
		panic(errorf(VERSION, "dictionary model_id mismatch"))
	}
	body := src[hdr.HeaderLen:]

	stateWidth := 4
	if ctx.cfg.CompactHeader {
		stateWidth = 2
	}
	nStates := hdr.Algo.stateCount()
	if len(body) < nStates*stateWidth {
		panic(errorf(CORRUPT, "packet truncated before state words"))
	}
	states := make([]uint32, nStates)
	for i := range states {
		off := i * stateWidth
		if stateWidth == 2 {
			states[i] = uint32(binary.LittleEndian.Uint16(body[off:]))
		} else {
			states[i] = binary.LittleEndian.Uint32(body[off:])
		}
	}
	payload := body[nStates*stateWidth:]

	orig := ctx.decodeByAlgorithm(hdr, states, payload)
	if len(orig) != hdr.OriginalSize {
		panic(errorf(CORRUPT, "decoded length does not match header"))
	}

	if ctx.cfg.Stateful {
		ctx.appendRing(orig)
		ctx.shiftHistory(orig)
	}
	if ctx.cfg.Adaptive {
		ctx.adaptiveUpdate(orig)
	}
	if ctx.cfg.Stats {
		ctx.stats.PacketsDecompressed++
		ctx.stats.BytesIn += uint64(len(src))
		ctx.stats.BytesOut += uint64(len(orig))
	}
	return orig, nil
}

// decodeByAlgorithm dispatches to exactly the decoder matching
// hdr.Algo, producing the pre-inverse-transform byte sequence, then
// applies the LZP XOR or delta inverse named by hdr.Flags to recover the
// original bytes (spec §4.I "Dispatch phase").
func (ctx *Context) decodeByAlgorithm(hdr header, states []uint32, payload []byte) []byte {
	n := hdr.OriginalSize

	switch hdr.Algo {
	case AlgoPassthrough:
		if len(payload) != n {
			panic(errorf(CORRUPT, "passthrough length mismatch"))
		}
		return append([]byte(nil), payload...)
	case AlgoRLE:
		out, err := decodeRLE(payload, n)
		if err != nil {
			panic(err)
		}
		return out
	case AlgoLZ77:
		out, err := decodeLZ77(payload, n)
		if err != nil {
			panic(err)
		}
		return out
	case AlgoLZPFlagBit:
		lzp := ctx.activeLZP()
		if lzp == nil {
			panic(errorf(CORRUPT, "lzp flag-bit packet but no lzp table is loaded"))
		}
		stage, err := lzpmodel.DecodeFlagBit(payload, n, lzp, 0)
		if err != nil {
			panic(errorf(CORRUPT, err.Error()))
		}
		return ctx.unapplyDelta(stage, hdr.Flags, n)
	}

	stage := ctx.decodeTANSStage(hdr, states, payload, n)
	if hdr.Flags.LZPXor {
		lzp := ctx.activeLZP()
		if lzp == nil {
			panic(errorf(CORRUPT, "lzp-filtered packet but no lzp table is loaded"))
		}
		out := make([]byte, n)
		lzpmodel.UnfilterXOR(out, stage, lzp, 0)
		return out
	}
	return ctx.unapplyDelta(stage, hdr.Flags, n)
}

// unapplyDelta inverts the field-class delta predictor if flags.Delta is
// set, otherwise returns stage unchanged (spec §4.C).
func (ctx *Context) unapplyDelta(stage []byte, flags packetFlags, n int) []byte {
	if !flags.Delta {
		return stage
	}
	if ctx.prev == nil || len(ctx.prev) < n {
		panic(errorf(CORRUPT, "delta packet but no previous packet is available"))
	}
	out := make([]byte, n)
	if flags.Order2 {
		if ctx.prev2 == nil || len(ctx.prev2) < n {
			panic(errorf(CORRUPT, "order-2 delta packet but prev2 is unavailable"))
		}
		delta.Order2Reconstruct(out, stage, ctx.prev, ctx.prev2)
	} else {
		delta.Order1Reconstruct(out, stage, ctx.prev)
	}
	return out
}

// decodeTANSStage runs the entropy decoder named by hdr.Algo, returning
// the pre-inverse-transform byte sequence (still LZP-filtered or a delta
// residual, if those flags are set).
func (ctx *Context) decodeTANSStage(hdr header, states []uint32, payload []byte, n int) []byte {
	r, err := bitio.NewReader(payload)
	if err != nil {
		panic(errorf(CORRUPT, err.Error()))
	}
	out := make([]byte, n)

	switch hdr.Algo {
	case AlgoTANSSingle:
		table := ctx.activeTables()[tans.BucketOf(0)]
		if err := tans.Decode(table, r, out, states[0]); err != nil {
			panic(errorf(CORRUPT, err.Error()))
		}
	case AlgoTANSX2:
		table := ctx.activeTables()[tans.BucketOf(0)]
		if err := tans.DecodeX2(table, r, out, states[0], states[1]); err != nil {
			panic(errorf(CORRUPT, err.Error()))
		}
	case AlgoTANSPCTX:
		if err := tans.DecodePCTX(ctx.activeTables(), r, out, states[0]); err != nil {
			panic(errorf(CORRUPT, err.Error()))
		}
	case AlgoTANSBigramPCTX:
		if err := tans.DecodeBigramPCTX(&ctx.dict.bigram12, ctx.activeTables(), ctx.dict.classOf, r, out, states[0], 0); err != nil {
			panic(errorf(CORRUPT, err.Error()))
		}
	case AlgoTANS10, AlgoTANS10Delta:
		if err := tans.DecodePCTX(&ctx.dict.primary10, r, out, states[0]); err != nil {
			panic(errorf(CORRUPT, err.Error()))
		}
	default:
		panic(errorf(CORRUPT, "unsupported algorithm id"))
	}
	return out
}
