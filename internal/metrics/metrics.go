package metrics

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Config はメトリクスの設定
type Config struct {
	MaxLatencySamples int // P99 計算用に保持するサンプル数
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{MaxLatencySamples: 1000}
}

// Metrics はプールの処理統計を収集する
type Metrics struct {
	submitted      atomic.Uint64
	rejected       atomic.Uint64
	factored       atomic.Uint64
	totalLatencyNs atomic.Uint64

	mu                sync.RWMutex
	startTime         time.Time
	latencies         []time.Duration
	maxLatencySamples int
}

// New は新しいメトリクスを作成する
func New() *Metrics {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig は設定を指定してメトリクスを作成する
func NewWithConfig(config Config) *Metrics {
	samples := config.MaxLatencySamples
	if samples <= 0 {
		samples = DefaultConfig().MaxLatencySamples
	}
	return &Metrics{
		startTime:         time.Now(),
		latencies:         make([]time.Duration, 0, samples),
		maxLatencySamples: samples,
	}
}

// RecordSubmitted はキューに投入された数を記録する
func (m *Metrics) RecordSubmitted() {
	m.submitted.Add(1)
}

// RecordRejected は上限超過で拒否された数を記録する
func (m *Metrics) RecordRejected() {
	m.rejected.Add(1)
}

// RecordFactored は素因数分解の完了を記録する
func (m *Metrics) RecordFactored(latency time.Duration) {
	m.factored.Add(1)
	m.totalLatencyNs.Add(uint64(latency.Nanoseconds()))

	m.mu.Lock()
	if len(m.latencies) < m.maxLatencySamples {
		m.latencies = append(m.latencies, latency)
	}
	m.mu.Unlock()
}

// Submitted は投入数を返す
func (m *Metrics) Submitted() uint64 {
	return m.submitted.Load()
}

// Rejected は拒否数を返す
func (m *Metrics) Rejected() uint64 {
	return m.rejected.Load()
}

// Factored は分解済みの数を返す
func (m *Metrics) Factored() uint64 {
	return m.factored.Load()
}

// Pending は投入済みで未処理の数を返す
func (m *Metrics) Pending() uint64 {
	s, f := m.submitted.Load(), m.factored.Load()
	if f > s {
		return 0
	}
	return s - f
}

// Throughput は開始からの平均処理数/秒を返す
func (m *Metrics) Throughput() float64 {
	elapsed := time.Since(m.startTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(m.factored.Load()) / elapsed
}

// AverageLatency は平均処理時間を返す
func (m *Metrics) AverageLatency() time.Duration {
	total := m.factored.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.totalLatencyNs.Load() / total)
}

// P99Latency はP99処理時間を返す（サンプルベース）
func (m *Metrics) P99Latency() time.Duration {
	m.mu.RLock()
	sorted := slices.Clone(m.latencies)
	m.mu.RUnlock()

	if len(sorted) == 0 {
		return 0
	}
	slices.Sort(sorted)

	idx := int(float64(len(sorted)) * 0.99)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Snapshot はメトリクスのスナップショット
type Snapshot struct {
	Submitted      uint64        `json:"submitted"`
	Rejected       uint64        `json:"rejected"`
	Factored       uint64        `json:"factored"`
	Pending        uint64        `json:"pending"`
	Throughput     float64       `json:"throughput"`
	AverageLatency time.Duration `json:"average_latency_ns"`
	P99Latency     time.Duration `json:"p99_latency_ns"`
	Elapsed        time.Duration `json:"elapsed_ns"`
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Submitted:      m.Submitted(),
		Rejected:       m.Rejected(),
		Factored:       m.Factored(),
		Pending:        m.Pending(),
		Throughput:     m.Throughput(),
		AverageLatency: m.AverageLatency(),
		P99Latency:     m.P99Latency(),
		Elapsed:        time.Since(m.startTime),
	}
}
