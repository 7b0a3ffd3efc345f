// Package metrics counts the storage-level I/O calls the engine issues.
// Comparing these counters across write and allocation strategies is the
// whole point of the benchmark harness: strategies must agree on content
// and differ only here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// I/O operation labels.
const (
	OpRead     = "read"
	OpWrite    = "write"
	OpZeroFill = "zero_fill"
	OpTruncate = "truncate"
	OpReserve  = "reserve"
	OpSync     = "sync"
)

var (
	registry = prometheus.NewRegistry()

	storageCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablestore",
		Subsystem: "storage",
		Name:      "calls_total",
		Help:      "Storage I/O calls issued, by operation.",
	}, []string{"op"})

	storageBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablestore",
		Subsystem: "storage",
		Name:      "bytes_total",
		Help:      "Bytes moved or reserved by storage I/O calls, by operation.",
	}, []string{"op"})
)

func init() {
	registry.MustRegister(storageCalls, storageBytes)
}

// ObserveCall records one storage I/O call of the given operation moving
// or reserving the given number of bytes.
func ObserveCall(op string, bytes int64) {
	storageCalls.WithLabelValues(op).Inc()
	if bytes > 0 {
		storageBytes.WithLabelValues(op).Add(float64(bytes))
	}
}

// Registry exposes the engine's metric registry, e.g. for an HTTP
// /metrics endpoint in a driver.
func Registry() *prometheus.Registry {
	return registry
}

// Snapshot is a point-in-time copy of the I/O counters, keyed by
// operation label.
type Snapshot struct {
	Calls map[string]float64
	Bytes map[string]float64
}

// Take gathers the current counter values. Counters never reset; use
// Delta to scope a measurement to one run.
func Take() Snapshot {
	snap := Snapshot{
		Calls: make(map[string]float64),
		Bytes: make(map[string]float64),
	}

	families, err := registry.Gather()
	if err != nil {
		return snap
	}

	for _, fam := range families {
		var dst map[string]float64
		switch fam.GetName() {
		case "tablestore_storage_calls_total":
			dst = snap.Calls
		case "tablestore_storage_bytes_total":
			dst = snap.Bytes
		default:
			continue
		}

		for _, m := range fam.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "op" {
					dst[l.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}

	return snap
}

// Delta returns the per-operation difference s - prev.
func (s Snapshot) Delta(prev Snapshot) Snapshot {
	out := Snapshot{
		Calls: make(map[string]float64, len(s.Calls)),
		Bytes: make(map[string]float64, len(s.Bytes)),
	}
	for op, v := range s.Calls {
		out.Calls[op] = v - prev.Calls[op]
	}
	for op, v := range s.Bytes {
		out.Bytes[op] = v - prev.Bytes[op]
	}
	return out
}
