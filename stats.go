package netc

// Stats holds the accumulated counters spec §4.G's ctx_stats exposes.
type Stats struct {
	PacketsCompressed   uint64
	PacketsDecompressed uint64
	BytesIn             uint64
	BytesOut            uint64
	PassthroughCount    uint64
}

// Stats returns ctx's accumulated statistics, or an UNSUPPORTED error if Stats
// was not enabled in the Config passed to NewContext (spec §4.G).
func (ctx *Context) Stats() (Stats, error) {
	if !ctx.cfg.Stats {
		return Stats{}, errorf(UNSUPPORTED, "statistics were not enabled for this context")
	}
	return ctx.stats, nil
}
