package queue

import "sync"

// Sentinel はシャットダウンを表す予約値。有効な入力としては使われない。
const Sentinel uint64 = 0

// WorkQueue はミューテックスと条件変数で保護された LIFO キュー
type WorkQueue struct {
	mu        sync.Mutex
	nonEmpty  *sync.Cond
	items     []uint64
	sentinels int
}

// New は空のキューを作成する
func New() *WorkQueue {
	q := &WorkQueue{}
	q.nonEmpty = sync.NewCond(&q.mu)
	return q
}

// Push はアイテムを積み、待機中のワーカーを全て起こす
func (q *WorkQueue) Push(item uint64) {
	q.mu.Lock()
	if item == Sentinel {
		q.sentinels++
	} else {
		q.items = append(q.items, item)
	}
	q.mu.Unlock()
	q.nonEmpty.Broadcast()
}

// PushSentinels は n 個のセンチネルを積む
func (q *WorkQueue) PushSentinels(n int) {
	if n <= 0 {
		return
	}
	q.mu.Lock()
	q.sentinels += n
	q.mu.Unlock()
	q.nonEmpty.Broadcast()
}

// Take は最後に積まれたアイテムを取り出す。空の間はブロックする。
// 実アイテムが残っている間はセンチネルを返さない。
func (q *WorkQueue) Take() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && q.sentinels == 0 {
		q.nonEmpty.Wait()
	}

	if n := len(q.items); n > 0 {
		item := q.items[n-1]
		q.items = q.items[:n-1]
		return item
	}

	q.sentinels--
	return Sentinel
}

// Len は保留中の実アイテム数を返す
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// PendingSentinels は未消費のセンチネル数を返す
func (q *WorkQueue) PendingSentinels() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sentinels
}
