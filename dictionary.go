package netc

import (
	"github.com/uzmigames/netc/internal/lzpmodel"
	"github.com/uzmigames/netc/internal/tans"
)

// Dictionary is a shareable, read-only bundle of trained probability
// tables, an optional LZP prediction table, and an optional bigram class
// map (spec §3.5). It is created by Train or Load, is immutable after
// that, and may be referenced by any number of Contexts concurrently; its
// lifetime must enclose every Context built on top of it.
type Dictionary struct {
	ModelID        byte
	FormatVersion  byte // 4 or 5
	bigramClasses  int  // 4 (v4 static-shaped) or 8 (v5 trained), 0 if no bigram tables at all
	bigramClassMap *[256]byte

	freq12 [tans.NumBuckets]tans.FreqTable
	freq10 [tans.NumBuckets]tans.FreqTable
	primary12 tans.TableSet
	primary10 tans.TableSet

	freqBigram12 [tans.NumBuckets][tans.NumBigramClasses]*tans.FreqTable
	bigram12     tans.BigramTableSet

	lzp lzpmodel.Table // nil if LZP is unavailable for this dictionary
}

// HasLZP reports whether this dictionary carries an LZP prediction table.
func (d *Dictionary) HasLZP() bool { return d.lzp != nil }

// HasBigram reports whether this dictionary carries bigram-conditioned
// tables (v5 trained, or a v4 legacy 4-class load).
func (d *Dictionary) HasBigram() bool { return d.bigramClasses > 0 }

// classOf resolves a previous byte to its bigram class using the trained
// map when present, falling back to the static prev_byte>>6 rule
// otherwise (spec §3.4).
func (d *Dictionary) classOf(prevByte byte) int {
	if d.bigramClassMap != nil {
		return int(d.bigramClassMap[prevByte])
	}
	return tans.StaticBigramClass(prevByte)
}
