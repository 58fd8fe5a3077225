package tans

import (
	"bytes"
	"testing"

	"github.com/uzmigames/netc/internal/bitio"
)

// skewedFreq builds a FreqTable summing to params.Size where one symbol
// dominates (params.Size-20 of the slots), so most encode steps write
// zero or one bit.
func skewedFreq(t *testing.T, params Params) FreqTable {
	var counts [256]uint64
	counts[0] = uint64(params.Size) - 20
	for s := 1; s <= 20; s++ {
		counts[s] = 1
	}
	ft, err := Normalize(&counts, params.Size)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return ft
}

func uniformFreq(t *testing.T, params Params, nsym int) FreqTable {
	var counts [256]uint64
	for s := 0; s < nsym; s++ {
		counts[s] = 100
	}
	ft, err := Normalize(&counts, params.Size)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return ft
}

func TestBuildSpreadCoversEverySlot(t *testing.T) {
	for _, params := range []Params{Params4096, Params1024} {
		ft := uniformFreq(t, params, 37)
		tbl, err := Build(params, &ft)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if uint32(len(tbl.dec)) != params.Size {
			t.Fatalf("decode table has %d entries, want %d", len(tbl.dec), params.Size)
		}
		covered := make([]bool, params.Size)
		for _, st := range tbl.encState {
			if uint32(st) < params.Size || uint32(st) >= 2*params.Size {
				t.Fatalf("encode state %d out of range [%d, %d)", st, params.Size, 2*params.Size)
			}
			if covered[uint32(st)-params.Size] {
				t.Fatalf("slot %d assigned more than once", uint32(st)-params.Size)
			}
			covered[uint32(st)-params.Size] = true
		}
		for pos, slot := range tbl.dec {
			if slot.NbBits > params.Log {
				t.Fatalf("slot %d has invalid nbBits %d", pos, slot.NbBits)
			}
		}
	}
}

func roundTripSingle(t *testing.T, params Params, ft FreqTable, src []byte) {
	t.Helper()
	tbl, err := Build(params, &ft)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	buf := make([]byte, bitio.MaxBytes(len(src)*int(params.Log)+64))
	w := bitio.NewWriter(buf)
	finalState, err := Encode(tbl, w, src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	n, err := w.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := bitio.NewReader(buf[:n])
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got := make([]byte, len(src))
	if err := Decode(tbl, r, got, finalState); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch:\n got=%x\nwant=%x", got, src)
	}
}

func TestSingleRegionRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte{0, 1, 2, 3, 4}, 40)
	roundTripSingle(t, Params4096, uniformFreq(t, Params4096, 5), src)
	roundTripSingle(t, Params1024, uniformFreq(t, Params1024, 5), src)
}

func TestSkewedRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte{0, 0, 0, 0, 1}, 50)
	roundTripSingle(t, Params4096, skewedFreq(t, Params4096), src)
}

func TestX2RoundTrip(t *testing.T) {
	ft := uniformFreq(t, Params4096, 5)
	tbl, err := Build(Params4096, &ft)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{0, 1, 2, 3, 64, 127} {
		src := bytes.Repeat([]byte{0, 1, 2, 3, 4}, (n/5)+1)[:n]
		buf := make([]byte, 4096)
		w := bitio.NewWriter(buf)
		s0, s1, err := EncodeX2(tbl, w, src)
		if err != nil {
			t.Fatalf("n=%d EncodeX2: %v", n, err)
		}
		wn, err := w.Close()
		if err != nil {
			t.Fatalf("n=%d Close: %v", n, err)
		}
		r, err := bitio.NewReader(buf[:wn])
		if err != nil {
			t.Fatalf("n=%d NewReader: %v", n, err)
		}
		got := make([]byte, n)
		if err := DecodeX2(tbl, r, got, s0, s1); err != nil {
			t.Fatalf("n=%d DecodeX2: %v", n, err)
		}
		if !bytes.Equal(got, src) {
			t.Fatalf("n=%d round trip mismatch:\n got=%x\nwant=%x", n, got, src)
		}
	}
}

func buildUniformSet(t *testing.T, params Params) *TableSet {
	var ts TableSet
	for b := 0; b < NumBuckets; b++ {
		ft := uniformFreq(t, params, 6)
		tbl, err := Build(params, &ft)
		if err != nil {
			t.Fatal(err)
		}
		ts[b] = tbl
	}
	return &ts
}

func TestPCTXRoundTrip(t *testing.T) {
	ts := buildUniformSet(t, Params4096)
	src := bytes.Repeat([]byte{0, 1, 2, 3, 4, 5}, 100) // spans buckets 0 through 12
	buf := make([]byte, 8192)
	w := bitio.NewWriter(buf)
	finalState, err := EncodePCTX(ts, w, src)
	if err != nil {
		t.Fatalf("EncodePCTX: %v", err)
	}
	n, err := w.Close()
	if err != nil {
		t.Fatal(err)
	}
	r, err := bitio.NewReader(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	got := make([]byte, len(src))
	if err := DecodePCTX(ts, r, got, finalState); err != nil {
		t.Fatalf("DecodePCTX: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch")
	}
}

func TestBigramPCTXFallsBackToUnigram(t *testing.T) {
	unigram := buildUniformSet(t, Params4096)
	var bigram BigramTableSet // entirely nil -> every lookup falls back
	classOf := StaticBigramClass

	src := bytes.Repeat([]byte{0, 1, 2, 3, 4, 5}, 40)
	buf := make([]byte, 8192)
	w := bitio.NewWriter(buf)
	finalState, err := EncodeBigramPCTX(&bigram, unigram, classOf, w, src, 0)
	if err != nil {
		t.Fatalf("EncodeBigramPCTX: %v", err)
	}
	n, err := w.Close()
	if err != nil {
		t.Fatal(err)
	}
	r, err := bitio.NewReader(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	got := make([]byte, len(src))
	if err := DecodeBigramPCTX(&bigram, unigram, classOf, r, got, finalState, 0); err != nil {
		t.Fatalf("DecodeBigramPCTX: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch")
	}
}

func TestBucketOf(t *testing.T) {
	cases := []struct {
		pos  int
		want int
	}{
		{0, 0}, {7, 0}, {8, 1}, {63, 5}, {64, 6}, {127, 7}, {191, 8}, {16383, 14}, {16384, 15}, {99999, 15},
	}
	for _, c := range cases {
		if got := BucketOf(c.pos); got != c.want {
			t.Errorf("BucketOf(%d) = %d, want %d", c.pos, got, c.want)
		}
	}
}

func TestEncodeUnencodableSymbol(t *testing.T) {
	ft := uniformFreq(t, Params4096, 2) // only symbols 0,1 are encodable
	tbl, err := Build(Params4096, &ft)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 64)
	w := bitio.NewWriter(buf)
	if _, err := Encode(tbl, w, []byte{5}); err != ErrUnencodableSymbol {
		t.Errorf("Encode with unseen symbol = %v, want ErrUnencodableSymbol", err)
	}
}
