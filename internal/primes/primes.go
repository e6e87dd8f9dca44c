package primes

import (
	"iter"
	"sort"
)

// MaxBound は Sieve が受け付ける上限の最大値。マーキング配列は bound+1 バイト。
const MaxBound uint64 = 1 << 26

// Table は bound 以下の素数を昇順に保持する不変テーブル
type Table struct {
	bound  uint64
	primes []uint64
}

// Sieve は 2 から bound までの素数テーブルを作成する。
// bound が MaxBound を超える場合は MaxBound に切り詰める。
func Sieve(bound uint64) *Table {
	bound = min(bound, MaxBound)
	t := &Table{bound: bound}
	if bound < 2 {
		return t
	}

	// composite[i] が true なら i は合成数
	composite := make([]bool, bound+1)
	for p := uint64(2); p*p <= bound; p++ {
		if composite[p] {
			continue
		}
		for m := p * p; m <= bound; m += p {
			composite[m] = true
		}
	}

	for n := uint64(2); n <= bound; n++ {
		if !composite[n] {
			t.primes = append(t.primes, n)
		}
	}
	return t
}

// Bound はテーブル生成時の上限を返す
func (t *Table) Bound() uint64 {
	return t.bound
}

// Len は素数の個数を返す
func (t *Table) Len() int {
	return len(t.primes)
}

// At は i 番目（0始まり）の素数を返す
func (t *Table) At(i int) uint64 {
	return t.primes[i]
}

// Contains は p がテーブルに含まれるかを返す
func (t *Table) Contains(p uint64) bool {
	i := sort.Search(len(t.primes), func(i int) bool { return t.primes[i] >= p })
	return i < len(t.primes) && t.primes[i] == p
}

// All は素数を昇順に列挙する
func (t *Table) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for _, p := range t.primes {
			if !yield(p) {
				return
			}
		}
	}
}

// Slice はテーブルのコピーを返す
func (t *Table) Slice() []uint64 {
	out := make([]uint64, len(t.primes))
	copy(out, t.primes)
	return out
}
