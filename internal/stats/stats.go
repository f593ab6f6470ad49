// Package stats implements spec §6.7's Statistics Dump: at shutdown, emit
// labelled counters for every pipeline stage and every attached sink, and
// expose the same counters live over a Prometheus /metrics endpoint.
// Grounded on the teacher's Application, which accumulates an equivalent
// set of run counters (messages decoded, CRC outcomes, aircraft seen) but
// only ever logs them; here they're additionally collected into a
// prometheus.Collector (a montge-stratux go.mod dependency) and formatted
// with dustin/go-humanize (also a montge-stratux dependency) for the
// shutdown dump's human-readable log line.
package stats

import (
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"mode1090/internal/pipeline"
	"mode1090/internal/roster"
)

// BytesSentReporter is implemented by output sinks (rawio.Writer,
// sbs.Writer) that track cumulative bytes written.
type BytesSentReporter interface {
	BytesSent() uint64
}

// BytesReceivedReporter is implemented by input sources (rawio.Reader)
// that track cumulative payload bytes accepted.
type BytesReceivedReporter interface {
	BytesReceived() uint64
}

// ClientStatsReporter is implemented by sinks that serve live clients
// (httpapi.Server's websocket feed): clients accepted/removed and
// cumulative bytes pushed to them.
type ClientStatsReporter interface {
	ClientStats() (accepted, removed, bytesSent uint64)
}

// namedSink is one entry in a Collector's sink list, holding whichever of
// the reporter interfaces the sink implements.
type namedSink struct {
	name string
	sink interface{}
}

// SinkCounters is one sink's contribution to a Snapshot.
type SinkCounters struct {
	BytesSent       uint64
	BytesReceived   uint64
	ClientsAccepted uint64
	ClientsRemoved  uint64
}

// Snapshot is one point-in-time read of every counter spec §6.7 names.
type Snapshot struct {
	ValidPreambles uint64
	Demodulated    uint64
	CRCGood        uint64
	CRCBad         uint64
	SingleBitFixed uint64
	TwoBitFixed    uint64
	PhaseCorrected uint64
	UniqueAircraft uint64
	Sinks          map[string]SinkCounters
}

// Collector aggregates the pipeline's running counters, the roster's live
// aircraft count, and every attached sink's byte/client counters into one
// Snapshot, on demand. It also implements prometheus.Collector so the same
// aggregation backs a live /metrics endpoint.
type Collector struct {
	driver *pipeline.Driver
	roster *roster.Roster
	sinks  []namedSink
}

// NewCollector builds a Collector over driver's running Stats() and
// roster's live aircraft count. Sinks are added with AddSink.
func NewCollector(driver *pipeline.Driver, roster *roster.Roster) *Collector {
	return &Collector{driver: driver, roster: roster}
}

// AddSink registers a named sink whose counters should appear in every
// Snapshot and /metrics scrape. sink is type-asserted against
// BytesSentReporter, BytesReceivedReporter, and ClientStatsReporter; any it
// doesn't implement contribute zero.
func (c *Collector) AddSink(name string, sink interface{}) {
	c.sinks = append(c.sinks, namedSink{name: name, sink: sink})
}

// Snapshot reads every counter once, per spec §6.7's field list.
func (c *Collector) Snapshot() Snapshot {
	ps := c.driver.Stats()
	snap := Snapshot{
		ValidPreambles: ps.Demod.Preambles,
		Demodulated:    ps.Demod.SlicedOK,
		CRCGood:        ps.CRCGood,
		CRCBad:         ps.Framed - ps.CRCGood,
		SingleBitFixed: ps.SingleBitFixed,
		TwoBitFixed:    ps.TwoBitFixed,
		PhaseCorrected: ps.Demod.Corrected,
		UniqueAircraft: uint64(len(c.roster.Snapshot())),
		Sinks:          make(map[string]SinkCounters, len(c.sinks)),
	}
	for _, ns := range c.sinks {
		var sc SinkCounters
		if r, ok := ns.sink.(BytesSentReporter); ok {
			sc.BytesSent = r.BytesSent()
		}
		if r, ok := ns.sink.(BytesReceivedReporter); ok {
			sc.BytesReceived = r.BytesReceived()
		}
		if r, ok := ns.sink.(ClientStatsReporter); ok {
			sc.ClientsAccepted, sc.ClientsRemoved, sc.BytesSent = r.ClientStats()
		}
		snap.Sinks[ns.name] = sc
	}
	return snap
}

// Dump logs the shutdown statistics dump spec §6.7 requires, with every
// count rendered human-readable via go-humanize.
func Dump(logger *logrus.Logger, snap Snapshot) {
	logger.WithFields(logrus.Fields{
		"valid_preambles":  humanize.Comma(int64(snap.ValidPreambles)),
		"demodulated":      humanize.Comma(int64(snap.Demodulated)),
		"crc_good":         humanize.Comma(int64(snap.CRCGood)),
		"crc_bad":          humanize.Comma(int64(snap.CRCBad)),
		"single_bit_fixed": humanize.Comma(int64(snap.SingleBitFixed)),
		"two_bit_fixed":    humanize.Comma(int64(snap.TwoBitFixed)),
		"phase_corrected":  humanize.Comma(int64(snap.PhaseCorrected)),
		"unique_aircraft":  humanize.Comma(int64(snap.UniqueAircraft)),
	}).Info("shutdown statistics dump")

	for name, sc := range snap.Sinks {
		logger.WithFields(logrus.Fields{
			"sink":             name,
			"bytes_sent":       humanize.Bytes(sc.BytesSent),
			"bytes_received":   humanize.Bytes(sc.BytesReceived),
			"clients_accepted": sc.ClientsAccepted,
			"clients_removed":  sc.ClientsRemoved,
		}).Info("sink statistics dump")
	}
}

// Prometheus metric descriptors. Collect reads a fresh Snapshot on every
// scrape rather than maintaining a parallel set of promauto counters, since
// the pipeline's own Stats() is already the source of truth.
var (
	descValidPreambles = prometheus.NewDesc("mode1090_valid_preambles_total", "Valid Mode S preambles detected.", nil, nil)
	descDemodulated     = prometheus.NewDesc("mode1090_demodulated_total", "Messages successfully bit-sliced.", nil, nil)
	descCRCGood         = prometheus.NewDesc("mode1090_crc_good_total", "Messages with a valid (possibly repaired) CRC.", nil, nil)
	descCRCBad          = prometheus.NewDesc("mode1090_crc_bad_total", "Messages with an unrepairable CRC.", nil, nil)
	descSingleBitFixed  = prometheus.NewDesc("mode1090_single_bit_fixed_total", "Messages recovered by a single-bit CRC fix.", nil, nil)
	descTwoBitFixed     = prometheus.NewDesc("mode1090_two_bit_fixed_total", "Messages recovered by a two-bit CRC fix.", nil, nil)
	descPhaseCorrected  = prometheus.NewDesc("mode1090_phase_corrected_total", "Preambles re-sliced after phase correction.", nil, nil)
	descUniqueAircraft  = prometheus.NewDesc("mode1090_unique_aircraft", "Distinct ICAO addresses currently in the roster.", nil, nil)
	descSinkBytesSent   = prometheus.NewDesc("mode1090_sink_bytes_sent_total", "Bytes written by a sink.", []string{"sink"}, nil)
	descSinkBytesRecv   = prometheus.NewDesc("mode1090_sink_bytes_received_total", "Bytes accepted by an input sink.", []string{"sink"}, nil)
	descSinkClients     = prometheus.NewDesc("mode1090_sink_clients_total", "Live clients accepted or removed by a sink.", []string{"sink", "event"}, nil)
)

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descValidPreambles
	ch <- descDemodulated
	ch <- descCRCGood
	ch <- descCRCBad
	ch <- descSingleBitFixed
	ch <- descTwoBitFixed
	ch <- descPhaseCorrected
	ch <- descUniqueAircraft
	ch <- descSinkBytesSent
	ch <- descSinkBytesRecv
	ch <- descSinkClients
}

// Collect implements prometheus.Collector, backing a live /metrics scrape
// with the same Snapshot the shutdown dump uses.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.Snapshot()
	ch <- prometheus.MustNewConstMetric(descValidPreambles, prometheus.CounterValue, float64(snap.ValidPreambles))
	ch <- prometheus.MustNewConstMetric(descDemodulated, prometheus.CounterValue, float64(snap.Demodulated))
	ch <- prometheus.MustNewConstMetric(descCRCGood, prometheus.CounterValue, float64(snap.CRCGood))
	ch <- prometheus.MustNewConstMetric(descCRCBad, prometheus.CounterValue, float64(snap.CRCBad))
	ch <- prometheus.MustNewConstMetric(descSingleBitFixed, prometheus.CounterValue, float64(snap.SingleBitFixed))
	ch <- prometheus.MustNewConstMetric(descTwoBitFixed, prometheus.CounterValue, float64(snap.TwoBitFixed))
	ch <- prometheus.MustNewConstMetric(descPhaseCorrected, prometheus.CounterValue, float64(snap.PhaseCorrected))
	ch <- prometheus.MustNewConstMetric(descUniqueAircraft, prometheus.CounterValue, float64(snap.UniqueAircraft))
	for name, sc := range snap.Sinks {
		ch <- prometheus.MustNewConstMetric(descSinkBytesSent, prometheus.CounterValue, float64(sc.BytesSent), name)
		ch <- prometheus.MustNewConstMetric(descSinkBytesRecv, prometheus.CounterValue, float64(sc.BytesReceived), name)
		ch <- prometheus.MustNewConstMetric(descSinkClients, prometheus.CounterValue, float64(sc.ClientsAccepted), name, "accepted")
		ch <- prometheus.MustNewConstMetric(descSinkClients, prometheus.CounterValue, float64(sc.ClientsRemoved), name, "removed")
	}
}
