package netc

import (
	"testing"

	"github.com/uzmigames/netc/internal/tans"
)

func TestAdaptiveUpdateRebuildsAfterInterval(t *testing.T) {
	dict := newTestDictionary(t, 40)
	ctx, err := NewContext(dict, Config{Stateful: true, Adaptive: true, CompactHeader: true})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	before := ctx.adaptive.tables[0]

	// Feed packets that are skewed entirely toward a byte this dictionary's
	// bucket-0 table gives little weight to, so the blended table diverges
	// from the baseline once the rebuild interval elapses.
	skewed := make([]byte, 64)
	for i := range skewed {
		skewed[i] = 0x01
	}
	for i := 0; i < rebuildInterval; i++ {
		if _, err := ctx.Compress(skewed); err != nil {
			t.Fatalf("Compress iteration %d: %v", i, err)
		}
	}

	after := ctx.adaptive.tables[0]
	if before == after {
		t.Fatal("expected the adaptive table pointer to change after a rebuild")
	}
	if ctx.adaptive.pktCount != 0 {
		t.Fatalf("pktCount should reset to 0 after a rebuild, got %d", ctx.adaptive.pktCount)
	}
}

func TestBlendFrequenciesWeightsObservedOverBaseline(t *testing.T) {
	var dictFreq tans.FreqTable
	dictFreq[5] = 4096

	var accum [256]uint64
	accum[9] = 1000
	total := uint64(1000)

	blended := blendFrequencies(&dictFreq, &accum, total)
	if blended[9] == 0 {
		t.Fatal("expected the observed symbol to receive non-zero weight")
	}
	if blended[9] <= blended[5] {
		t.Fatalf("observed symbol (alpha=0.75) should outweigh the untouched baseline symbol: blended[9]=%d blended[5]=%d", blended[9], blended[5])
	}
}
