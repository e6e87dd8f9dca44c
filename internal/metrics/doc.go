// Package metrics collects factorization pool statistics.
//
// Metrics counts submitted, rejected and factored numbers and samples the
// time each factorization takes. It is safe for concurrent use by the
// producer and every worker.
//
// # Basic Usage
//
//	m := metrics.New()
//
//	start := time.Now()
//	// ... factor a number ...
//	m.RecordFactored(time.Since(start))
//
//	snap := m.Snapshot()
//	fmt.Printf("factored: %d, avg: %v, p99: %v\n",
//	    snap.Factored, snap.AverageLatency, snap.P99Latency)
//
// # Configuration
//
// NewWithConfig limits how many latency samples are kept for P99:
//
//	m := metrics.NewWithConfig(metrics.Config{MaxLatencySamples: 5000})
package metrics
