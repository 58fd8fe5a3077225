package netc

import (
	"testing"

	"github.com/uzmigames/netc/internal/testutil"
)

func trainCorpus(seed int64) [][]byte {
	r := testutil.NewRand(seed)
	return testutil.LowEntropyStream(r, 512, 64)
}

func TestTrainRejectsReservedModelIDs(t *testing.T) {
	corpus := trainCorpus(1)
	if _, err := Train(corpus, 0); err == nil {
		t.Fatal("expected error for model_id 0")
	}
	if _, err := Train(corpus, 255); err == nil {
		t.Fatal("expected error for model_id 255")
	}
}

func TestTrainRejectsEmptyCorpus(t *testing.T) {
	if _, err := Train(nil, 1); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestTrainProducesUsableDictionary(t *testing.T) {
	dict, err := Train(trainCorpus(2), 9)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if dict.ModelID != 9 {
		t.Fatalf("ModelID = %d, want 9", dict.ModelID)
	}
	if dict.FormatVersion != 4 && dict.FormatVersion != 5 {
		t.Fatalf("unexpected FormatVersion %d", dict.FormatVersion)
	}
}

func TestTrainingIsReproducible(t *testing.T) {
	corpus := trainCorpus(3)
	d1, err := Train(corpus, 1)
	if err != nil {
		t.Fatalf("Train #1: %v", err)
	}
	d2, err := Train(corpus, 1)
	if err != nil {
		t.Fatalf("Train #2: %v", err)
	}
	b1, b2 := d1.Save(), d2.Save()
	if len(b1) != len(b2) {
		t.Fatalf("serialized length differs: %d vs %d", len(b1), len(b2))
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			t.Fatalf("serialized blobs differ at byte %d", i)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dict, err := Train(trainCorpus(4), 2)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	blob := dict.Save()
	loaded, err := Load(blob)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ModelID != dict.ModelID || loaded.FormatVersion != dict.FormatVersion {
		t.Fatalf("loaded dictionary metadata mismatch: %+v vs %+v", loaded, dict)
	}
	if loaded.HasLZP() != dict.HasLZP() || loaded.HasBigram() != dict.HasBigram() {
		t.Fatalf("loaded capability flags mismatch")
	}
}

func TestLoadRejectsCorruptedBlob(t *testing.T) {
	dict, err := Train(trainCorpus(5), 3)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	blob := dict.Save()
	blob[len(blob)/2] ^= 0xff
	if _, err := Load(blob); err == nil {
		t.Fatal("expected an error loading a corrupted blob")
	} else if e, ok := err.(*Error); !ok || e.Code != DICT_INVALID {
		t.Fatalf("expected DICT_INVALID, got %v", err)
	}
}

func TestLoadRejectsTruncatedBlob(t *testing.T) {
	dict, err := Train(trainCorpus(6), 4)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	blob := dict.Save()
	if _, err := Load(blob[:len(blob)/2]); err == nil {
		t.Fatal("expected an error loading a truncated blob")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dict, err := Train(trainCorpus(7), 5)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	blob := dict.Save()
	blob[0] = 'X'
	if _, err := Load(blob); err == nil {
		t.Fatal("expected an error loading a blob with bad magic")
	}
}
