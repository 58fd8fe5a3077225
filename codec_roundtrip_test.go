package netc

import (
	"bytes"
	"testing"

	"github.com/uzmigames/netc/internal/testutil"
)

func TestRLERoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		bytes.Repeat([]byte{0x41}, 1000),
		[]byte{1, 1, 2, 2, 2, 3, 3, 3, 3},
		testutil.NewRand(30).Bytes(300),
	}
	for i, src := range cases {
		enc := encodeRLE(src)
		got, err := decodeRLE(enc, len(src))
		if err != nil {
			t.Fatalf("case %d: decodeRLE: %v", i, err)
		}
		if !bytes.Equal(got, src) {
			t.Fatalf("case %d: round trip mismatch: got %x, want %x", i, got, src)
		}
	}
}

func TestDecodeRLERejectsZeroRun(t *testing.T) {
	if _, err := decodeRLE([]byte{0x41, 0x00}, 1); err == nil {
		t.Fatal("expected error for zero-length run")
	}
}

func TestLZ77RoundTrip(t *testing.T) {
	r := testutil.NewRand(31)
	cases := [][]byte{
		bytes.Repeat([]byte("abcabcabcabc"), 40),
		testutil.LowEntropyPacket(r, 512),
		bytes.Repeat([]byte{0}, 600),
		r.Bytes(400),
	}
	for i, src := range cases {
		enc := encodeLZ77(src)
		got, err := decodeLZ77(enc, len(src))
		if err != nil {
			t.Fatalf("case %d: decodeLZ77: %v", i, err)
		}
		if !bytes.Equal(got, src) {
			t.Fatalf("case %d: round trip mismatch", i)
		}
	}
}

func TestDecodeLZ77RejectsTruncatedStream(t *testing.T) {
	if _, err := decodeLZ77([]byte{0x05, 'a', 'b'}, 5); err == nil {
		t.Fatal("expected error for truncated literal run")
	}
	if _, err := decodeLZ77([]byte{0x80}, 5); err == nil {
		t.Fatal("expected error for truncated match token")
	}
}

func TestDecodeLZ77RejectsBadOffset(t *testing.T) {
	// match token claiming an offset larger than anything decoded so far.
	bad := []byte{0x80, 0xff, 0xff}
	if _, err := decodeLZ77(bad, 4); err == nil {
		t.Fatal("expected error for out-of-range match offset")
	}
}
