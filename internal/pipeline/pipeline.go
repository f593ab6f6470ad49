// Package pipeline owns the sample ring and drives samples from a Sample
// Source through the magnitude table, preamble detector, message framer,
// and field decoder into the aircraft roster and any attached sinks, per
// spec §5.
//
// The concurrency model is spec §5's literal description, not the
// teacher's: a sampler thread owns the Sample Source and a decoder thread
// owns everything downstream of the magnitude table, and the two
// cooperate over a single-producer/single-consumer ring of two sample
// blocks guarded by a mutex plus a "data ready" flag. The teacher's
// Application instead fans a single RTL-SDR goroutine out over a buffered
// `chan []byte` read by one consumer goroutine; that's a channel-based
// rendezvous, which is a second (hidden) suspension point beyond the two
// spec §5 names ("acquiring the sample-ring mutex" and "the blocking read
// inside the sampler"). A buffered channel send/receive is exactly a
// mutex-plus-flag in disguise, so here the disguise is removed: the two
// threads spin on a plain bool behind a sync.Mutex, which keeps the
// decoder's suspension profile exactly as spec §5 describes it ("All
// decoder work is CPU-bound and non-suspending"). The goroutine lifecycle
// (wait group, atomic exit flag, Stop/Wait shutdown) is still grounded on
// the teacher's Application.run/shutdown shape.
package pipeline

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"mode1090/internal/crc24"
	"mode1090/internal/demod"
	"mode1090/internal/framer"
	"mode1090/internal/icaocache"
	"mode1090/internal/magnitude"
	"mode1090/internal/roster"
)

const (
	// SampleBlockPairs is spec §3's default sample block size, in I/Q
	// pairs ("262 144 pairs per block").
	SampleBlockPairs = 262144

	// preambleSamplePairs and longMsgSamplePairs are the preamble/message
	// window sizes in magnitude-array entries (one per I/Q sample pair),
	// per spec §4.4 ("decode 112 bits at j+16" - a 16-sample preamble)
	// and §4.5 (two magnitude samples per bit: "low = m[j+16+2b], high =
	// m[j+16+2b+1]"). Spec §3's own tail-stitch arithmetic
	// ("preamble + long_msg - 1 = 119") only holds if long_msg is taken
	// as 112 sample-pairs rather than the 224 the bit slicer in §4.5
	// actually reads; since §4.4/§4.5 pin down the window size exactly
	// and unambiguously, this is followed over §3's inconsistent worked
	// constant - see DESIGN.md.
	preambleSamplePairs = 16
	longMsgSamplePairs  = 2 * 112

	// CarryoverPairs is the tail-stitch window length: the full
	// preamble+message span minus one, carried from the end of one
	// sample block to the front of the next so that a message straddling
	// the boundary is still decoded exactly once.
	CarryoverPairs = preambleSamplePairs + longMsgSamplePairs - 1
)

// SampleSource is a blocking provider of interleaved unsigned 8-bit I/Q
// bytes, per spec §6.1 ("Sample Source") and §6.2 ("File Replay"). Read
// fills buf and blocks until at least one byte is available or the source
// is exhausted; err is io.EOF at end of stream.
type SampleSource interface {
	Read(buf []byte) (n int, err error)
	Close() error
}

// Sink receives every framed message whose CRC checked out, along with the
// roster record it updated, for onward transmission (SBS, raw output,
// HTTP push), per spec §6.3-§6.6.
type Sink interface {
	Accept(msg *framer.Message, rec roster.Record)
}

// Stats aggregates the Statistics module's per-stage monotonic counters,
// per spec's architecture table ("Statistics: Monotonic counters per stage
// and per sink").
type Stats struct {
	BlocksRead     uint64
	BytesRead      uint64
	Demod          demod.Stats
	Framed         uint64
	CRCGood        uint64
	SingleBitFixed uint64
	TwoBitFixed    uint64
}

type block struct {
	iq  []byte
	n   int
	seq uint64
}

// Driver owns the sample ring and both pipeline threads.
type Driver struct {
	source SampleSource
	logger *logrus.Logger

	opts framer.Options

	mu    sync.Mutex
	ready bool
	cur   block

	carry []byte // last CarryoverPairs sample-pairs of the previous block

	exit int32 // atomic; set by Stop

	mag    *magnitude.Table
	det    *demod.Detector
	cache  *icaocache.Cache
	roster *roster.Roster
	sinks  []Sink

	clock func() int64 // injected monotonic-ms clock; see New

	statsMu sync.Mutex
	stats   Stats

	wg sync.WaitGroup
}

// Stats returns a copy-out snapshot of the current statistics, safe to
// call from an Observer while the pipeline threads run.
func (d *Driver) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.stats
}

// Config bundles the wiring New needs, per spec §4's module list.
type Config struct {
	Source     SampleSource
	Logger     *logrus.Logger
	Opts       framer.Options
	Cache      *icaocache.Cache
	Roster     *roster.Roster
	Sinks      []Sink
	Aggressive bool
	NowMs      func() int64 // monotonic milliseconds; required
}

// New builds a Driver ready to Run. NowMs is required since the pipeline
// must never call time.Now() directly on the decoder thread's hot path
// (spec §5's "all decoder work is CPU-bound and non-suspending" extends to
// not touching the wall clock more than once per block).
func New(cfg Config) *Driver {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	return &Driver{
		source: cfg.Source,
		logger: logger,
		opts:   cfg.Opts,
		mag:    magnitude.NewTable(),
		det:    demod.New(logger, cfg.Aggressive),
		cache:  cfg.Cache,
		roster: cfg.Roster,
		sinks:  cfg.Sinks,
		clock:  cfg.NowMs,
	}
}

// Run starts the sampler and decoder threads and blocks until both exit
// (on Stop, or on a fatal Sample Source read error). It satisfies spec
// §5's "Fatal startup... abort with diagnostic before the decoder thread
// starts" by returning the sampler's first-read error, if any, before
// spinning up the decoder.
func (d *Driver) Run() error {
	probe := make([]byte, SampleBlockPairs*2)
	n, err := d.source.Read(probe)
	if err != nil {
		return err
	}
	d.stats.BlocksRead++
	d.stats.BytesRead += uint64(n)
	d.mu.Lock()
	d.cur = block{iq: probe, n: n}
	d.ready = true
	d.mu.Unlock()

	d.wg.Add(2)
	go d.samplerLoop(1)
	go d.decoderLoop()
	d.wg.Wait()
	return nil
}

// Stop requests both threads exit at their next suspension point.
func (d *Driver) Stop() {
	atomic.StoreInt32(&d.exit, 1)
}

func (d *Driver) exiting() bool {
	return atomic.LoadInt32(&d.exit) != 0
}

// samplerLoop owns the Sample Source and appends completed reads into the
// ring, per spec §5. seq continues from the block Run already primed
// into the ring.
func (d *Driver) samplerLoop(seq uint64) {
	defer d.wg.Done()
	for !d.exiting() {
		buf := make([]byte, SampleBlockPairs*2)
		n, err := d.source.Read(buf)
		if err != nil {
			d.logger.WithError(err).Info("sample source exhausted")
			d.Stop()
			return
		}

		d.mu.Lock()
		for d.ready && !d.exiting() {
			d.mu.Unlock()
			runtime.Gosched()
			d.mu.Lock()
		}
		if d.exiting() {
			d.mu.Unlock()
			return
		}
		d.cur = block{iq: buf, n: n, seq: seq}
		d.ready = true
		d.mu.Unlock()

		d.statsMu.Lock()
		d.stats.BlocksRead++
		d.stats.BytesRead += uint64(n)
		d.statsMu.Unlock()
		seq++
	}
}

// decoderLoop drains the ring one block at a time, running the full
// magnitude->framer->roster chain. Everything past the ring-mutex
// acquisition below is CPU-bound, per spec §5.
func (d *Driver) decoderLoop() {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		for !d.ready && !d.exiting() {
			d.mu.Unlock()
			runtime.Gosched()
			d.mu.Lock()
		}
		if d.exiting() && !d.ready {
			d.mu.Unlock()
			return
		}
		b := d.cur
		d.ready = false
		d.mu.Unlock()

		d.processBlock(b)
	}
}

// processBlock stitches the previous block's carryover tail onto b, runs
// the detector across the combined magnitude stream, and frames/decodes
// every message found, in ascending sample-index order, per spec §5's
// ordering guarantee.
func (d *Driver) processBlock(b block) {
	iq := make([]byte, 0, len(d.carry)+b.n)
	iq = append(iq, d.carry...)
	iq = append(iq, b.iq[:b.n]...)

	mag := d.mag.ConvertToSlice(iq)

	var nowMs int64
	if d.clock != nil {
		nowMs = d.clock()
	}

	j := 0
	for {
		msg, msgLen, nextJ, ok := d.det.Next(mag, j)
		if !ok {
			break
		}
		j = nextJ
		if msgLen == 0 {
			continue
		}

		m := framer.Frame(msg, d.opts, d.cache)
		if m == nil {
			continue
		}
		d.statsMu.Lock()
		d.stats.Framed++
		d.statsMu.Unlock()
		if !m.CRCOK {
			continue
		}
		d.statsMu.Lock()
		d.stats.CRCGood++
		switch m.FixClass {
		case crc24.SingleBit:
			d.stats.SingleBitFixed++
		case crc24.TwoBit:
			d.stats.TwoBitFixed++
		}
		d.statsMu.Unlock()

		rec := d.applyToRoster(m, nowMs)
		for _, sink := range d.sinks {
			sink.Accept(m, rec)
		}
	}
	d.statsMu.Lock()
	d.stats.Demod = d.det.Stats
	d.statsMu.Unlock()

	carryBytes := CarryoverPairs * 2
	if len(iq) >= carryBytes {
		d.carry = append(d.carry[:0], iq[len(iq)-carryBytes:]...)
	} else {
		d.carry = append(d.carry[:0], iq...)
	}
}

// InjectRaw frames a message decoded elsewhere (spec §6.4's Raw Input:
// "accepted messages re-enter the Field Decoder as if locally
// demodulated") and runs it through the same CRC/roster/sink path as a
// message the sampler/decoder threads found themselves, skipping only the
// magnitude/preamble/framing-window search the two threads exist for.
func (d *Driver) InjectRaw(raw []byte, nowMs int64) {
	m := framer.Frame(raw, d.opts, d.cache)
	if m == nil {
		return
	}
	d.statsMu.Lock()
	d.stats.Framed++
	d.statsMu.Unlock()
	if !m.CRCOK {
		return
	}
	d.statsMu.Lock()
	d.stats.CRCGood++
	switch m.FixClass {
	case crc24.SingleBit:
		d.stats.SingleBitFixed++
	case crc24.TwoBit:
		d.stats.TwoBitFixed++
	}
	d.statsMu.Unlock()

	rec := d.applyToRoster(m, nowMs)
	for _, sink := range d.sinks {
		sink.Accept(m, rec)
	}
}

func (d *Driver) applyToRoster(m *framer.Message, nowMs int64) roster.Record {
	if m.Payload == nil {
		return *d.roster.Upsert(m.ICAO24, nowMs)
	}
	return dispatchPayload(d.roster, m.ICAO24, m.Payload, nowMs)
}
