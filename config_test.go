package netc

import "testing"

func TestCandidatePlanLowLevelsAreNarrow(t *testing.T) {
	p := candidatePlan(Config{CompressionLevel: 0})
	if !p.fastSinglePCTX || p.allowX2 || p.allowBigram {
		t.Fatalf("level 0 plan should be narrow, got %+v", p)
	}
}

func TestCandidatePlanDefaultLevelMatchesBaseline(t *testing.T) {
	p := candidatePlan(Config{CompressionLevel: 5})
	if p.fastSinglePCTX || !p.allowX2 || !p.allowBigram || p.lz77Threshold != 256 {
		t.Fatalf("level 5 plan should be the unrestricted baseline, got %+v", p)
	}
}

func TestCandidatePlanHighLevelsLowerLZ77Threshold(t *testing.T) {
	p := candidatePlan(Config{CompressionLevel: 9})
	if p.lz77Threshold != 128 {
		t.Fatalf("level 9 plan should try LZ77 earlier, got threshold %d", p.lz77Threshold)
	}
}

func TestCandidatePlanFastCompressRaisesLZ77Threshold(t *testing.T) {
	p := candidatePlan(Config{CompressionLevel: 5, FastCompress: true})
	if p.lz77Threshold != 512 {
		t.Fatalf("FastCompress should raise the LZ77 threshold, got %d", p.lz77Threshold)
	}
}

func TestConfigRingBufferSizeDefault(t *testing.T) {
	c := Config{}
	if c.ringBufferSize() != DefaultRingBufferSize {
		t.Fatalf("ringBufferSize() = %d, want default %d", c.ringBufferSize(), DefaultRingBufferSize)
	}
	c.RingBufferSize = 1024
	if c.ringBufferSize() != 1024 {
		t.Fatalf("ringBufferSize() = %d, want 1024", c.ringBufferSize())
	}
}
