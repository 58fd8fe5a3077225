package netc

import (
	"sort"
	"strconv"

	"github.com/uzmigames/netc/internal/lzpmodel"
	"github.com/uzmigames/netc/internal/tans"
)

// Train builds a Dictionary from a corpus of representative packets
// (spec §4.F). modelID must be in 1..254 (0 is reserved for passthrough,
// 255 is reserved).
func Train(packets [][]byte, modelID byte) (*Dictionary, error) {
	if modelID == 0 || modelID == 255 {
		return nil, errorf(INVALID_ARG, "model_id must be in 1..254")
	}
	if len(packets) == 0 {
		return nil, errorf(INVALID_ARG, "training corpus is empty")
	}

	d := &Dictionary{ModelID: modelID}

	// Step 1-2: per-bucket byte frequencies, normalized to TABLE_SIZE=4096.
	var counts12 [tans.NumBuckets][256]uint64
	for _, pkt := range packets {
		for pos, b := range pkt {
			counts12[tans.BucketOf(pos)][b]++
		}
	}
	for b := 0; b < tans.NumBuckets; b++ {
		// A bucket no corpus packet is long enough to reach gets a uniform
		// distribution over all 256 byte values.
		var observed uint64
		for _, c := range counts12[b] {
			observed += c
		}
		if observed == 0 {
			for s := range counts12[b] {
				counts12[b][s] = 1
			}
		}
		ft, err := tans.Normalize(&counts12[b], tans.Params4096.Size)
		if err != nil {
			return nil, errorf(INVALID_ARG, "bucket "+strconv.Itoa(b)+" has no observed bytes: "+err.Error())
		}
		d.freq12[b] = ft
	}

	// Step 3: rescale each primary table to the 10-bit shape.
	for b := 0; b < tans.NumBuckets; b++ {
		ft, err := tans.Rescale(&d.freq12[b], tans.Params1024.Size)
		if err != nil {
			return nil, errorf(INVALID_ARG, "rescale bucket "+strconv.Itoa(b)+": "+err.Error())
		}
		d.freq10[b] = ft
	}

	// Step 4: build both table sets.
	for b := 0; b < tans.NumBuckets; b++ {
		t12, err := tans.Build(tans.Params4096, &d.freq12[b])
		if err != nil {
			return nil, errorf(INVALID_ARG, "build 12-bit bucket "+strconv.Itoa(b)+": "+err.Error())
		}
		d.primary12[b] = t12
		t10, err := tans.Build(tans.Params1024, &d.freq10[b])
		if err != nil {
			return nil, errorf(INVALID_ARG, "build 10-bit bucket "+strconv.Itoa(b)+": "+err.Error())
		}
		d.primary10[b] = t10
	}

	// Step 5: LZP training.
	lzpTable := lzpmodel.Train(packets)
	if hasAnyEntry(lzpTable) {
		d.lzp = lzpTable
	}

	// Step 6: bigram class map + 16x8 conditional tables.
	classMap := trainBigramClasses(packets)
	bigramOK := trainBigramTables(d, packets, classMap)
	if bigramOK {
		d.bigramClassMap = classMap
		d.bigramClasses = tans.NumBigramClasses
	}

	// Step 7: version assignment.
	if d.HasLZP() && bigramOK {
		d.FormatVersion = 5
	} else {
		d.FormatVersion = 4
	}
	return d, nil
}

func hasAnyEntry(t lzpmodel.Table) bool {
	for _, e := range t {
		if e.Confidence > 0 {
			return true
		}
	}
	return false
}

// trainBigramClasses implements spec §4.F step 6's classification pass:
// for each previous byte value, find its peak conditional successor
// symbol across the whole corpus, sort the 256 previous-byte values by
// that peak symbol, and partition into 8 equal classes of 32.
func trainBigramClasses(packets [][]byte) *[256]byte {
	var cond [256][256]uint64
	for _, pkt := range packets {
		for pos := 1; pos < len(pkt); pos++ {
			prev, cur := pkt[pos-1], pkt[pos]
			cond[prev][cur]++
		}
	}
	peak := make([]int, 256)
	for p := 0; p < 256; p++ {
		best, bestCount := 0, uint64(0)
		for s := 0; s < 256; s++ {
			if cond[p][s] > bestCount {
				best, bestCount = s, cond[p][s]
			}
		}
		peak[p] = best
	}
	order := make([]int, 256)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return peak[order[i]] < peak[order[j]] })

	var classMap [256]byte
	const perClass = 256 / tans.NumBigramClasses
	for rank, p := range order {
		classMap[p] = byte(rank / perClass)
	}
	return &classMap
}

// trainBigramTables builds the 16x8 conditional tANS tables of spec §4.F
// step 6, using only corpus bytes whose preceding byte falls in each
// class. A (bucket, class) combination with no observations is left nil;
// the encoder falls back to the unigram PCTX table for it. Returns
// whether at least one conditional table was successfully built.
func trainBigramTables(d *Dictionary, packets [][]byte, classMap *[256]byte) bool {
	var counts [tans.NumBuckets][tans.NumBigramClasses][256]uint64
	for _, pkt := range packets {
		for pos := 1; pos < len(pkt); pos++ {
			prev, cur := pkt[pos-1], pkt[pos]
			b := tans.BucketOf(pos)
			c := classMap[prev]
			counts[b][c][cur]++
		}
	}
	built := false
	for b := 0; b < tans.NumBuckets; b++ {
		for c := 0; c < tans.NumBigramClasses; c++ {
			ft, err := tans.Normalize(&counts[b][c], tans.Params4096.Size)
			if err != nil {
				continue // no observations for this (bucket, class); leave nil
			}
			tbl, err := tans.Build(tans.Params4096, &ft)
			if err != nil {
				continue
			}
			d.freqBigram12[b][c] = &ft
			d.bigram12[b][c] = tbl
			built = true
		}
	}
	return built
}
