package netc

import "encoding/binary"

// Algorithm identifies which candidate encoder produced a packet's
// payload (spec §4.H candidate set / §6.3 packet-type ranges).
type Algorithm byte

const (
	AlgoPassthrough Algorithm = iota
	AlgoRLE
	AlgoLZ77
	AlgoTANSSingle
	AlgoTANSX2
	AlgoTANSPCTX
	AlgoTANSBigramPCTX
	AlgoTANS10
	AlgoTANS10Delta
	AlgoLZPFlagBit
	// AlgoMultiRegion is never emitted (spec §9 third bullet: superseded
	// by PCTX) but must still be recognized so a legacy dictionary's MREG
	// packets fail with an UNSUPPORTED error rather than being misread as
	// CORRUPT garbage.
	AlgoMultiRegion
)

// stateCount reports how many tANS initial states a packet of this
// algorithm carries in its header (0 for non-entropy-coded algorithms).
func (a Algorithm) stateCount() int {
	switch a {
	case AlgoTANSX2:
		return 2
	case AlgoTANSSingle, AlgoTANSPCTX, AlgoTANSBigramPCTX, AlgoTANS10, AlgoTANS10Delta:
		return 1
	default:
		return 0
	}
}

// Delta order and LZP pre-filter flags, packed into the legacy header's
// flags:u8 field and folded into the compact header's packet-type byte.
const (
	flagDelta byte = 1 << iota
	flagOrder2
	flagLZPXor
)

type packetFlags struct {
	Delta    bool
	Order2   bool // only meaningful when Delta is set (spec §4.C)
	LZPXor   bool // LZP XOR pre-filter applied before entropy coding (spec §4.D.1)
	Reserved bool // true only for the MultiRegion decode-only placeholder
}

func (f packetFlags) pack() byte {
	var b byte
	if f.Delta {
		b |= flagDelta
	}
	if f.Order2 {
		b |= flagOrder2
	}
	if f.LZPXor {
		b |= flagLZPXor
	}
	return b
}

func unpackFlags(b byte) packetFlags {
	return packetFlags{
		Delta:  b&flagDelta != 0,
		Order2: b&flagOrder2 != 0,
		LZPXor: b&flagLZPXor != 0,
	}
}

type packetKey struct {
	Algo  Algorithm
	Flags packetFlags
}

// packetTypeEntry is one row of the compact-header lookup table (spec
// §4.H, §6.3, §9 "tagged variant (flags, algorithm) plus a total decoding
// function from u8 to that variant"). §6.3 sizes the space at 144
// combinations; this table assigns about a quarter of that because its
// per-position tables are selected entirely from the byte's position
// within the packet (tans.BucketOf), never signaled on the wire, so no
// packet type needs to distinguish "which per-position table" the way it
// does "which algorithm" or "which flags" (see DESIGN.md open question 1).
type packetTypeEntry struct {
	valid bool
	key   packetKey
}

var (
	packetTypeTable [256]packetTypeEntry
	packetTypeIndex map[packetKey]byte
)

// init populates the 256-entry decoding table once at package init, following the range layout of spec §6.3. Each range is
// filled with every well-formed combination of algorithm and flags that
// makes sense for it; unused slots within a range, and the whole of any
// byte outside a listed range, stay Reserved and therefore invalid.
func init() {
	packetTypeIndex = make(map[packetKey]byte, 160)
	assign := func(pt byte, algo Algorithm, flags packetFlags) {
		packetTypeTable[pt] = packetTypeEntry{valid: true, key: packetKey{Algo: algo, Flags: flags}}
		packetTypeIndex[packetKey{Algo: algo, Flags: flags}] = pt
	}

	// 0x00-0x3F: single-region and X2 tANS, every delta/LZP-prefilter
	// combination.
	pt := byte(0x00)
	for _, algo := range []Algorithm{AlgoTANSSingle, AlgoTANSX2} {
		for _, d := range []struct{ delta, order2 bool }{{false, false}, {true, false}, {true, true}} {
			for _, lzp := range []bool{false, true} {
				assign(pt, algo, packetFlags{Delta: d.delta, Order2: d.order2, LZPXor: lzp})
				pt++
			}
		}
	}

	// 0x40-0x5F: PCTX variants.
	pt = 0x40
	for _, d := range []struct{ delta, order2 bool }{{false, false}, {true, false}, {true, true}} {
		for _, lzp := range []bool{false, true} {
			assign(pt, AlgoTANSPCTX, packetFlags{Delta: d.delta, Order2: d.order2, LZPXor: lzp})
			pt++
		}
	}

	// 0x60-0x6F: passthrough, RLE, LZ77.
	assign(0x60, AlgoPassthrough, packetFlags{})
	assign(0x61, AlgoRLE, packetFlags{})
	assign(0x62, AlgoLZ77, packetFlags{})

	// 0x70-0x8F: LZP flag-bit predict/reconstruct, optionally over a
	// delta residual.
	pt = 0x70
	for _, d := range []struct{ delta, order2 bool }{{false, false}, {true, false}, {true, true}} {
		assign(pt, AlgoLZPFlagBit, packetFlags{Delta: d.delta, Order2: d.order2})
		pt++
	}

	// 0x90-0xAF: MREG, decode-only, never emitted by this implementation.
	packetTypeTable[0x90] = packetTypeEntry{valid: true, key: packetKey{Algo: AlgoMultiRegion, Flags: packetFlags{Reserved: true}}}

	// 0xB0-0xCF: 10-bit tANS and 10-bit+DELTA.
	pt = 0xB0
	assign(pt, AlgoTANS10, packetFlags{LZPXor: false})
	pt++
	assign(pt, AlgoTANS10, packetFlags{LZPXor: true})
	pt++
	for _, order2 := range []bool{false, true} {
		for _, lzp := range []bool{false, true} {
			assign(pt, AlgoTANS10Delta, packetFlags{Delta: true, Order2: order2, LZPXor: lzp})
			pt++
		}
	}

	// 0xD0-0xD3: bigram-PCTX.
	pt = 0xD0
	for _, order2 := range []bool{false, true} {
		for _, lzp := range []bool{false, true} {
			assign(pt, AlgoTANSBigramPCTX, packetFlags{Delta: true, Order2: order2, LZPXor: lzp})
			pt++
		}
	}
}

// lookupPacketType returns the (algorithm, flags) pair a compact-header
// packet_type byte decodes to, or ok=false when the byte is Reserved.
func lookupPacketType(pt byte) (packetKey, bool) {
	e := packetTypeTable[pt]
	return e.key, e.valid
}

// packetTypeFor is the inverse: the compressor asks for the packet_type
// byte that encodes a given (algorithm, flags) combination. ok is false
// if that combination has no assigned type; the compressor produces some
// such candidates (e.g. bigram-PCTX without Delta) and Compress skips
// them in compact-header mode.
func packetTypeFor(algo Algorithm, flags packetFlags) (byte, bool) {
	pt, ok := packetTypeIndex[packetKey{Algo: algo, Flags: flags}]
	return pt, ok
}

// header is the decoded form of either wire header shape, independent of
// which one was on the wire.
type header struct {
	Algo         Algorithm
	Flags        packetFlags
	OriginalSize int
	ModelID      byte // legacy only; 0 in compact mode (derived from ctx)
	ContextSeq   byte // legacy only
	HeaderLen    int
}

// encodeCompactHeader writes the 2- or 4-byte compact header (spec
// §4.H). byte0 is the packet_type; byte1 packs a 1-bit size-extension
// flag with a 7-bit size field covering 1..128 bytes inline, falling
// back to an explicit u16 LE in bytes 2-3 for larger payloads.
func encodeCompactHeader(dst []byte, algo Algorithm, flags packetFlags, originalSize int) (int, error) {
	pt, ok := packetTypeFor(algo, flags)
	if !ok {
		return 0, errorf(INVALID_ARG, "no packet type for algorithm/flag combination")
	}
	if originalSize <= 0 || originalSize > MaxPacketSize {
		return 0, errorf(INVALID_ARG, "original size out of range")
	}
	dst[0] = pt
	if originalSize <= 128 {
		dst[1] = byte(originalSize - 1)
		return 2, nil
	}
	if len(dst) < 4 {
		return 0, errorf(BUFSMALL, "compact header needs 4 bytes")
	}
	dst[1] = 0x80
	binary.LittleEndian.PutUint16(dst[2:4], uint16(originalSize))
	return 4, nil
}

func decodeCompactHeader(src []byte) (header, error) {
	if len(src) < 2 {
		return header{}, errorf(CORRUPT, "compact header truncated")
	}
	key, ok := lookupPacketType(src[0])
	if !ok {
		return header{}, errorf(CORRUPT, "unknown packet type")
	}
	if key.Algo == AlgoMultiRegion {
		return header{}, errorf(UNSUPPORTED, "multi-region packets are not decodable by this implementation")
	}
	var size, hlen int
	if src[1]&0x80 == 0 {
		size = int(src[1]) + 1
		hlen = 2
	} else {
		if len(src) < 4 {
			return header{}, errorf(CORRUPT, "compact extended header truncated")
		}
		size = int(binary.LittleEndian.Uint16(src[2:4]))
		hlen = 4
	}
	return header{Algo: key.Algo, Flags: key.Flags, OriginalSize: size, HeaderLen: hlen}, nil
}

// encodeLegacyHeader writes the fixed 8-byte legacy header (spec §4.H).
func encodeLegacyHeader(dst []byte, algo Algorithm, flags packetFlags, originalSize, compressedSize int, modelID, seq byte) error {
	if len(dst) < 8 {
		return errorf(BUFSMALL, "legacy header needs 8 bytes")
	}
	binary.LittleEndian.PutUint16(dst[0:2], uint16(originalSize))
	binary.LittleEndian.PutUint16(dst[2:4], uint16(compressedSize))
	dst[4] = flags.pack()
	dst[5] = byte(algo)
	dst[6] = modelID
	dst[7] = seq
	return nil
}

func decodeLegacyHeader(src []byte) (header, error) {
	if len(src) < 8 {
		return header{}, errorf(CORRUPT, "legacy header truncated")
	}
	algo := Algorithm(src[5])
	if algo > AlgoMultiRegion {
		return header{}, errorf(CORRUPT, "unknown algorithm id")
	}
	if algo == AlgoMultiRegion {
		return header{}, errorf(UNSUPPORTED, "multi-region packets are not decodable by this implementation")
	}
	return header{
		Algo:         algo,
		Flags:        unpackFlags(src[4]),
		OriginalSize: int(binary.LittleEndian.Uint16(src[0:2])),
		ModelID:      src[6],
		ContextSeq:   src[7],
		HeaderLen:    8,
	}, nil
}
