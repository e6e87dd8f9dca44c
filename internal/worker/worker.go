package worker

import (
	"fmt"
	"sync/atomic"
	"time"

	"lcm-pool/internal/events"
	"lcm-pool/internal/factor"
	"lcm-pool/internal/logger"
	"lcm-pool/internal/metrics"
	"lcm-pool/internal/primes"
	"lcm-pool/internal/queue"
)

// State はワーカーの状態を表す
type State int32

const (
	StateWaiting State = iota
	StateFactoring
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateFactoring:
		return "factoring"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Worker はキューから数を取り出して素因数分解するゴルーチン
type Worker struct {
	id     string
	queue  *queue.WorkQueue
	primes *primes.Table

	metrics *metrics.Metrics
	bus     *events.Bus

	// table と factored は run の中でのみ更新され、done が閉じた後に読まれる
	table    factor.Table
	factored int

	state atomic.Int32
	done  chan struct{}
}

func newWorker(index int, q *queue.WorkQueue, p *primes.Table, m *metrics.Metrics, bus *events.Bus) *Worker {
	return &Worker{
		id:      fmt.Sprintf("worker-%d", index+1),
		queue:   q,
		primes:  p,
		metrics: m,
		bus:     bus,
		table:   factor.Table{},
		done:    make(chan struct{}),
	}
}

// ID はワーカーIDを返す
func (w *Worker) ID() string {
	return w.id
}

// State は現在の状態を返す
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Done はワーカー終了時に閉じられるチャネルを返す
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Table はワーカーの部分テーブルを返す。Done が閉じるまで待つ。
func (w *Worker) Table() factor.Table {
	<-w.done
	return w.table
}

// Factored は処理した数の個数を返す。Done が閉じるまで待つ。
func (w *Worker) Factored() int {
	<-w.done
	return w.factored
}

// run はセンチネルを受け取るまでキューを処理する
func (w *Worker) run() {
	defer close(w.done)

	for {
		n := w.queue.Take()
		if n == queue.Sentinel {
			w.state.Store(int32(StateTerminated))
			logger.Debug(w.id, "Sentinel received after %d numbers", w.factored)
			w.bus.Publish(events.NewWorkerTerminatedEvent(w.id, w.factored))
			return
		}

		w.state.Store(int32(StateFactoring))
		start := time.Now()

		factors := factor.Factorize(w.primes, n)
		factor.MergeInto(w.table, factors)
		w.factored++

		w.metrics.RecordFactored(time.Since(start))
		w.bus.Publish(events.NewNumberFactoredEvent(w.id, n, factors))
		logger.Debug(w.id, "Factored %d = %s", n, factors)

		w.state.Store(int32(StateWaiting))
	}
}
