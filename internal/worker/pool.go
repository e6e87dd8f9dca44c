package worker

import (
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"sync"
	"time"

	"lcm-pool/internal/events"
	"lcm-pool/internal/factor"
	"lcm-pool/internal/logger"
	"lcm-pool/internal/metrics"
	"lcm-pool/internal/primes"
	"lcm-pool/internal/queue"
)

const (
	// DefaultBound は素数テーブルと入力値の上限の既定値
	DefaultBound uint64 = 10000
	// MaxBound は設定できる上限の最大値
	MaxBound = primes.MaxBound
	// FallbackWorkers は並列度が取得できない、または1の場合のワーカー数
	FallbackWorkers = 4
)

var (
	ErrOutOfRange     = errors.New("number exceeds bound")
	ErrReservedZero   = errors.New("0 is reserved for shutdown")
	ErrNotStarted     = errors.New("pool is not started")
	ErrAlreadyStarted = errors.New("pool is already started")
	ErrClosed         = errors.New("pool is shut down")
)

// PoolConfig はワーカープールの設定
type PoolConfig struct {
	NumWorkers int    // ワーカー数（0でCPU数）
	Bound      uint64 // 上限（0で DefaultBound、MaxBound を超える値は MaxBound）
}

// DefaultPoolConfig はデフォルト設定を返す
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers: 0,
		Bound:      DefaultBound,
	}
}

// DefaultWorkerCount はハードウェア並列度を返す。1以下なら FallbackWorkers。
func DefaultWorkerCount() int {
	if n := runtime.NumCPU(); n > 1 {
		return n
	}
	return FallbackWorkers
}

type poolState int

const (
	poolIdle poolState = iota
	poolRunning
	poolClosed
)

// Pool はワーカーとキューを所有し、シャットダウン手順を管理する
type Pool struct {
	numWorkers int
	bound      uint64

	primes  *primes.Table
	queue   *queue.WorkQueue
	workers []*Worker

	metrics *metrics.Metrics
	bus     *events.Bus

	mu      sync.RWMutex
	state   poolState
	started time.Time
}

// NewPool は新しいワーカープールを作成する
// numWorkers が 0 以下の場合は DefaultWorkerCount を使用
func NewPool(numWorkers int) *Pool {
	config := DefaultPoolConfig()
	config.NumWorkers = numWorkers
	return NewPoolWithConfig(config)
}

// NewPoolWithConfig は設定を指定してワーカープールを作成する
func NewPoolWithConfig(config PoolConfig) *Pool {
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = DefaultWorkerCount()
	}
	bound := config.Bound
	if bound == 0 {
		bound = DefaultBound
	}
	if bound > MaxBound {
		logger.Warn("pool", "Bound %d exceeds maximum, using %d", bound, MaxBound)
		bound = MaxBound
	}
	return &Pool{
		numWorkers: numWorkers,
		bound:      bound,
		queue:      queue.New(),
		metrics:    metrics.New(),
	}
}

// SetEventBus はイベントバスを設定する。Start より前に呼ぶこと。
func (p *Pool) SetEventBus(bus *events.Bus) {
	p.bus = bus
}

// Start は素数テーブルを作成し、ワーカーを起動する
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case poolRunning:
		return ErrAlreadyStarted
	case poolClosed:
		return ErrClosed
	}

	p.primes = primes.Sieve(p.bound)
	p.workers = make([]*Worker, p.numWorkers)
	for i := range p.numWorkers {
		w := newWorker(i, p.queue, p.primes, p.metrics, p.bus)
		p.workers[i] = w
		go w.run()
	}

	p.state = poolRunning
	p.started = time.Now()

	logger.Info("pool", "Started %d workers (bound %d, %d primes)", p.numWorkers, p.bound, p.primes.Len())
	return nil
}

// Submit は数をキューに投入する。
// bound を超える数は ErrOutOfRange、0 は ErrReservedZero で拒否される。
func (p *Pool) Submit(n uint64) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch p.state {
	case poolIdle:
		return ErrNotStarted
	case poolClosed:
		return ErrClosed
	}

	if n == queue.Sentinel {
		return ErrReservedZero
	}
	if n > p.bound {
		p.metrics.RecordRejected()
		p.bus.Publish(events.NewNumberRejectedEvent(n, p.bound))
		return fmt.Errorf("%w: %d > %d", ErrOutOfRange, n, p.bound)
	}

	// RLock を保持したまま積むことで、Shutdown 後に実アイテムが積まれないことを保証する
	p.queue.Push(n)
	p.metrics.RecordSubmitted()
	p.bus.Publish(events.NewNumberSubmittedEvent(n))
	return nil
}

// WorkerResult は1ワーカー分の結果
type WorkerResult struct {
	ID       string       `json:"id"`
	Factored int          `json:"factored"`
	Table    factor.Table `json:"-"`
}

// Result はシャットダウン時のマージ結果
type Result struct {
	Table    factor.Table   `json:"-"`
	Workers  []WorkerResult `json:"workers"`
	Duration time.Duration  `json:"duration_ns"`
}

// LCM は uint64 の LCM を返す。桁あふれ時は factor.ErrOverflow。
func (r *Result) LCM() (uint64, error) {
	return factor.LCM(r.Table)
}

// BigLCM は桁あふれしない LCM を返す
func (r *Result) BigLCM() *big.Int {
	return factor.BigLCM(r.Table)
}

// Shutdown はワーカーごとに1つのセンチネルを積み、全ワーカーの終了を待って
// 各部分テーブルをマージしたグローバルテーブルを返す。
func (p *Pool) Shutdown() (*Result, error) {
	p.mu.Lock()
	switch p.state {
	case poolIdle:
		p.mu.Unlock()
		return nil, ErrNotStarted
	case poolClosed:
		p.mu.Unlock()
		return nil, ErrClosed
	}
	p.state = poolClosed
	workers := p.workers
	p.mu.Unlock()

	logger.Info("pool", "Shutting down: %d queued, sending %d sentinels", p.queue.Len(), len(workers))
	p.queue.PushSentinels(len(workers))

	result := &Result{
		Table:   factor.Table{},
		Workers: make([]WorkerResult, 0, len(workers)),
	}
	// 全ワーカーの終了を待ってからマージする
	for _, w := range workers {
		<-w.Done()
	}
	for _, w := range workers {
		table := w.Table()
		factor.MergeInto(result.Table, table)
		result.Workers = append(result.Workers, WorkerResult{
			ID:       w.ID(),
			Factored: w.Factored(),
			Table:    table,
		})
	}
	result.Duration = time.Since(p.started)

	lcm := result.BigLCM()
	p.bus.Publish(events.NewPoolShutdownEvent(result.Table.Clone(), lcm.String()))
	logger.Info("pool", "Shutdown complete: %d numbers merged into %d primes, LCM %s",
		p.metrics.Factored(), len(result.Table), lcm)

	return result, nil
}

// NumWorkers はワーカー数を返す
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Bound は入力値の上限を返す
func (p *Pool) Bound() uint64 {
	return p.bound
}

// QueueSize は未処理の数を返す
func (p *Pool) QueueSize() int {
	return p.queue.Len()
}

// Running は Start 後かつ Shutdown 前かを返す
func (p *Pool) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == poolRunning
}

// Metrics はプールのメトリクスを返す
func (p *Pool) Metrics() *metrics.Metrics {
	return p.metrics
}

// WorkerStates は各ワーカーの現在の状態を返す
func (p *Pool) WorkerStates() map[string]State {
	p.mu.RLock()
	workers := p.workers
	p.mu.RUnlock()

	states := make(map[string]State, len(workers))
	for _, w := range workers {
		states[w.ID()] = w.State()
	}
	return states
}
