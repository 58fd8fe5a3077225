package netc

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/uzmigames/netc/internal/lzpmodel"
	"github.com/uzmigames/netc/internal/tans"
)

var dictMagic = [4]byte{'N', 'T', 'C', '1'}

// Save serializes d into a self-contained blob: magic, version, model_id,
// the primary 12-bit and 10-bit frequency tables (tANS tables themselves
// are rebuilt deterministically from these on Load, since Build is a pure
// function of its frequency table), the optional bigram section, the
// optional bigram class map, the optional LZP table, and a trailing
// little-endian CRC32 over everything preceding it (spec §4.F
// "Serialization", §4.B).
func (d *Dictionary) Save() []byte {
	var buf []byte
	buf = append(buf, dictMagic[:]...)
	buf = append(buf, d.FormatVersion, d.ModelID)

	for b := 0; b < tans.NumBuckets; b++ {
		buf = appendFreqTable(buf, &d.freq12[b])
	}
	for b := 0; b < tans.NumBuckets; b++ {
		buf = appendFreqTable(buf, &d.freq10[b])
	}

	if d.HasBigram() {
		buf = append(buf, 1, byte(d.bigramClasses))
		for b := 0; b < tans.NumBuckets; b++ {
			for c := 0; c < d.bigramClasses; c++ {
				if ft := d.freqBigram12[b][c]; ft != nil {
					buf = append(buf, 1)
					buf = appendFreqTable(buf, ft)
				} else {
					buf = append(buf, 0)
				}
			}
		}
	} else {
		buf = append(buf, 0)
	}

	if d.bigramClassMap != nil {
		buf = append(buf, 1)
		buf = append(buf, d.bigramClassMap[:]...)
	} else {
		buf = append(buf, 0)
	}

	if d.HasLZP() {
		buf = append(buf, 1)
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(d.lzp)))
		buf = append(buf, lenBuf[:]...)
		for _, e := range d.lzp {
			buf = append(buf, e.Predicted, e.Confidence)
		}
	} else {
		buf = append(buf, 0)
	}

	sum := crc32.ChecksumIEEE(buf)
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], sum)
	return append(buf, crcBuf[:]...)
}

func appendFreqTable(buf []byte, ft *tans.FreqTable) []byte {
	var tmp [512]byte
	for s := 0; s < 256; s++ {
		binary.LittleEndian.PutUint16(tmp[s*2:], ft[s])
	}
	return append(buf, tmp[:]...)
}

// Load deserializes a Dictionary previously produced by Save, rejecting
// it with DICT_INVALID on CRC mismatch and VERSION on an unsupported
// format version (spec §4.F, §6.4).
func Load(blob []byte) (dict *Dictionary, err error) {
	defer errRecover(&err)

	if len(blob) < 4+1+1+4 {
		panic(errorf(CORRUPT, "dictionary blob too short"))
	}
	if [4]byte(blob[0:4]) != dictMagic {
		panic(errorf(CORRUPT, "bad dictionary magic"))
	}

	crcOffset := len(blob) - 4
	wantCRC := binary.LittleEndian.Uint32(blob[crcOffset:])
	gotCRC := crc32.ChecksumIEEE(blob[:crcOffset])
	if wantCRC != gotCRC {
		panic(errorf(DICT_INVALID, "crc mismatch"))
	}

	r := &byteReader{buf: blob[:crcOffset], pos: 4}
	version := r.u8()
	if version != 4 && version != 5 {
		panic(errorf(VERSION, "unsupported dictionary version"))
	}
	d := &Dictionary{FormatVersion: version, ModelID: r.u8()}

	for b := 0; b < tans.NumBuckets; b++ {
		d.freq12[b] = r.freqTable()
	}
	for b := 0; b < tans.NumBuckets; b++ {
		d.freq10[b] = r.freqTable()
	}
	for b := 0; b < tans.NumBuckets; b++ {
		t12, err := tans.Build(tans.Params4096, &d.freq12[b])
		if err != nil {
			panic(errorf(CORRUPT, "rebuild 12-bit table: "+err.Error()))
		}
		d.primary12[b] = t12
		t10, err := tans.Build(tans.Params1024, &d.freq10[b])
		if err != nil {
			panic(errorf(CORRUPT, "rebuild 10-bit table: "+err.Error()))
		}
		d.primary10[b] = t10
	}

	if r.u8() == 1 {
		d.bigramClasses = int(r.u8())
		for b := 0; b < tans.NumBuckets; b++ {
			for c := 0; c < d.bigramClasses; c++ {
				if r.u8() == 1 {
					ft := r.freqTable()
					tbl, err := tans.Build(tans.Params4096, &ft)
					if err != nil {
						panic(errorf(CORRUPT, "rebuild bigram table: "+err.Error()))
					}
					d.freqBigram12[b][c] = &ft
					d.bigram12[b][c] = tbl
				}
			}
		}
	}

	if r.u8() == 1 {
		var m [256]byte
		copy(m[:], r.bytes(256))
		d.bigramClassMap = &m
	}

	if r.u8() == 1 {
		n := int(r.u32())
		if n != lzpmodel.TableSize {
			panic(errorf(CORRUPT, "lzp table has wrong size"))
		}
		t := lzpmodel.NewTable()
		raw := r.bytes(n * 2)
		for i := 0; i < n; i++ {
			t[i].Predicted = raw[i*2]
			t[i].Confidence = raw[i*2+1]
		}
		d.lzp = t
	}

	r.mustBeExhausted()
	return d, nil
}

// byteReader is a small defensive cursor over a dictionary blob; every
// accessor panics with a *Error on out-of-bounds access, which Load
// recovers via errRecover into a normal returned error (spec §7
// "decompressor/dict_load are the defensive boundary").
type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) need(n int) {
	if r.pos+n > len(r.buf) {
		panic(errorf(CORRUPT, "dictionary blob truncated"))
	}
}

func (r *byteReader) u8() byte {
	r.need(1)
	b := r.buf[r.pos]
	r.pos++
	return b
}

func (r *byteReader) u32() uint32 {
	r.need(4)
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *byteReader) bytes(n int) []byte {
	r.need(n)
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *byteReader) freqTable() tans.FreqTable {
	raw := r.bytes(512)
	var ft tans.FreqTable
	for s := 0; s < 256; s++ {
		ft[s] = binary.LittleEndian.Uint16(raw[s*2:])
	}
	return ft
}

func (r *byteReader) mustBeExhausted() {
	if r.pos != len(r.buf) {
		panic(errorf(CORRUPT, "dictionary blob has trailing bytes"))
	}
}
