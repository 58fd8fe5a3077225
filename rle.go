package netc

// encodeRLE implements the RLE candidate of spec §4.H's candidate table:
// a simple run-length variant over raw bytes, {value:u8, run:u8} pairs
// with run in 1..255 (a run never starts a new pair until either the byte
// changes or 255 repeats have been emitted). Mirrors the compact
// run-coding dsnet/compress's bzip2 package applies after its BWT/MTF
// stage (bzip2/mtf_rle2.go), adapted to run directly over raw bytes since
// netc has no BWT stage.
func encodeRLE(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	out := make([]byte, 0, len(src))
	i := 0
	for i < len(src) {
		b := src[i]
		run := 1
		for i+run < len(src) && src[i+run] == b && run < 255 {
			run++
		}
		out = append(out, b, byte(run))
		i += run
	}
	return out
}

// decodeRLE inverts encodeRLE, producing exactly n bytes or failing with
// a CORRUPT error.
func decodeRLE(packet []byte, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for i := 0; i+1 < len(packet) && len(out) < n; i += 2 {
		b, run := packet[i], int(packet[i+1])
		if run == 0 {
			return nil, errorf(CORRUPT, "rle run length is zero")
		}
		for k := 0; k < run; k++ {
			out = append(out, b)
		}
	}
	if len(out) != n {
		return nil, errorf(CORRUPT, "rle stream produced wrong length")
	}
	return out, nil
}
