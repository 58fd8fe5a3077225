package lzpmodel

import (
	"bytes"
	"testing"
)

func repeatingCorpus() [][]byte {
	pkt := bytes.Repeat([]byte{0xDE, 0xAD, 0xBE, 0xEF}, 32) // 128 bytes, highly structured
	return [][]byte{pkt, pkt, pkt, pkt, pkt}
}

func TestTrainAndLookup(t *testing.T) {
	table := Train(repeatingCorpus())
	pkt := repeatingCorpus()[0]
	hits := 0
	var prev byte
	for i, b := range pkt {
		if pred, ok := table.Lookup(prev, i); ok && pred == b {
			hits++
		}
		prev = b
	}
	if hits == 0 {
		t.Fatalf("expected a highly structured corpus to train some hits, got 0 of %d", len(pkt))
	}
}

func TestFilterXORRoundTrip(t *testing.T) {
	table := Train(repeatingCorpus())
	src := repeatingCorpus()[0]
	filtered := make([]byte, len(src))
	FilterXOR(filtered, src, table, 0)
	got := make([]byte, len(src))
	UnfilterXOR(got, filtered, table, 0)
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch")
	}
}

func TestFlagBitRoundTrip(t *testing.T) {
	table := Train(repeatingCorpus())
	src := repeatingCorpus()[0]
	enc := EncodeFlagBit(src, table, 0)
	got, err := DecodeFlagBit(enc, len(src), table, 0)
	if err != nil {
		t.Fatalf("DecodeFlagBit: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch")
	}
}

func TestUpdateConfidenceLifecycle(t *testing.T) {
	table := NewTable()
	// First observation at an empty slot populates it at confidence 1.
	table.Update(0x10, 5, 0x42)
	e := table[ContextHash(0x10, 5)]
	if e.Confidence != 1 || e.Predicted != 0x42 {
		t.Fatalf("got %+v, want {Predicted:0x42 Confidence:1}", e)
	}

	// Repeated hits saturate confidence upward.
	for i := 0; i < 300; i++ {
		table.Update(0x10, 5, 0x42)
	}
	if table[ContextHash(0x10, 5)].Confidence != 255 {
		t.Fatalf("confidence did not saturate: %+v", table[ContextHash(0x10, 5)])
	}

	// A single miss decays confidence but does not yet replace.
	table.Update(0x10, 5, 0x99)
	if got := table[ContextHash(0x10, 5)]; got.Predicted != 0x42 || got.Confidence != 254 {
		t.Fatalf("single miss should decay, not replace: %+v", got)
	}
}

func TestDecodeFlagBitCorrupt(t *testing.T) {
	if _, err := DecodeFlagBit([]byte{0x01}, 10, NewTable(), 0); err != ErrCorrupt {
		t.Errorf("short packet: got %v, want ErrCorrupt", err)
	}
}
