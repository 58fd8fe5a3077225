package netc

import (
	"github.com/uzmigames/netc/internal/tans"
)

// adaptiveUpdate runs the post-round-trip learning step of spec §4.J. It
// is called with the original (decoded) bytes of a packet after either a
// successful Compress or a successful Decompress, so both ends of a
// stream observe identical inputs in identical order and converge on
// identical blended tables without any synchronization protocol.
func (ctx *Context) adaptiveUpdate(data []byte) {
	if ctx.adaptive == nil {
		return
	}
	a := ctx.adaptive

	for pos, b := range data {
		bucket := tans.BucketOf(pos)
		a.freqAccum[bucket][b]++
		a.totalAccum[bucket]++
	}

	if a.lzp != nil {
		var prev byte
		for pos, b := range data {
			a.lzp.Update(prev, pos, b)
			prev = b
		}
	}

	a.pktCount++
	if a.pktCount < rebuildInterval {
		return
	}
	a.pktCount = 0

	for bucket := 0; bucket < tans.NumBuckets; bucket++ {
		if a.totalAccum[bucket] == 0 {
			continue
		}
		blended := blendFrequencies(&ctx.dict.freq12[bucket], &a.freqAccum[bucket], a.totalAccum[bucket])
		ft, err := tans.Normalize(&blended, tans.Params4096.Size)
		if err != nil {
			a.tables[bucket] = ctx.dict.primary12[bucket]
			continue
		}
		tbl, err := tans.Build(tans.Params4096, &ft)
		if err != nil {
			a.tables[bucket] = ctx.dict.primary12[bucket]
			continue
		}
		a.tables[bucket] = tbl
	}
}

// blendFrequencies implements spec §4.J step 2's blending formula:
// blended[s] = alpha*accum_freq[s] + (1-alpha)*(dict_freq[s]*total/TABLE_SIZE).
func blendFrequencies(dictFreq *tans.FreqTable, accum *[256]uint64, total uint64) [256]uint64 {
	var blended [256]uint64
	for s := 0; s < 256; s++ {
		observed := adaptiveBlendAlpha * float64(accum[s])
		baseline := (1 - adaptiveBlendAlpha) * float64(dictFreq[s]) * float64(total) / float64(tans.Params4096.Size)
		blended[s] = uint64(observed + baseline + 0.5)
	}
	return blended
}
