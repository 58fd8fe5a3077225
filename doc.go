// Package netc compresses low-entropy binary network packets (32-65535
// bytes) at wire speed using offline-trained per-position probability
// models, inter-packet delta prediction, and a bit-exact multi-codec
// competition per packet.
//
// A Dictionary is trained once, offline, over a representative corpus of
// packets (Train) or loaded from a previously serialized blob (Load). It
// is immutable, safe for concurrent reads, and shared by any number of
// Contexts. A Context owns the mutable per-stream state (ring buffer,
// prev/prev2 packets, adaptive accumulators) and is the unit compress and
// decompress operate on; it is not safe for concurrent use.
//
//	dict, err := netc.Train(corpus, 1)
//	ctx, err := netc.NewContext(dict, netc.Config{Stateful: true, CompactHeader: true})
//	out, err := ctx.Compress(packet)
//	back, err := ctx.Decompress(out)
package netc
