package factor

import (
	"errors"
	"fmt"
	"maps"
	"math/big"
	"math/bits"
	"slices"
	"strings"

	"lcm-pool/internal/primes"
)

// ErrOverflow は LCM が uint64 に収まらない場合に返される
var ErrOverflow = errors.New("lcm overflows uint64")

// Table は素数から指数への対応
type Table map[uint64]uint

// Term は Table の1要素
type Term struct {
	Prime    uint64 `json:"prime"`
	Exponent uint   `json:"exponent"`
}

// Factorize は n を素因数分解する。
// n の素因数は全て table に含まれている必要がある（n <= table.Bound()）。
// n <= 1 は空のテーブルになる。
func Factorize(table *primes.Table, n uint64) Table {
	result := Table{}
	remainder := n

	for i := 0; remainder > 1 && i < table.Len(); {
		p := table.At(i)
		if p*p > remainder {
			// 残りは素数
			break
		}
		if remainder%p == 0 {
			remainder /= p
			result[p]++
			continue
		}
		i++
	}

	if remainder > 1 {
		result[remainder]++
	}
	return result
}

// MergeInto は source の各素数について target の指数を大きい方に更新する
func MergeInto(target, source Table) {
	for p, e := range source {
		if cur, ok := target[p]; !ok || cur < e {
			target[p] = e
		}
	}
}

// Merge は a と b をマージした新しいテーブルを返す。引数は変更しない。
func Merge(a, b Table) Table {
	out := make(Table, max(len(a), len(b)))
	MergeInto(out, a)
	MergeInto(out, b)
	return out
}

// Clone はテーブルのコピーを返す
func (t Table) Clone() Table {
	if t == nil {
		return Table{}
	}
	return maps.Clone(t)
}

// Equal は2つのテーブルが同じ内容かを返す
func Equal(a, b Table) bool {
	return maps.Equal(a, b)
}

// Terms は素数の昇順に並べた要素を返す
func (t Table) Terms() []Term {
	keys := slices.Sorted(maps.Keys(t))
	terms := make([]Term, 0, len(keys))
	for _, p := range keys {
		terms = append(terms, Term{Prime: p, Exponent: t[p]})
	}
	return terms
}

// String は "{2:2, 3:1}" 形式で返す
func (t Table) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, term := range t.Terms() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d:%d", term.Prime, term.Exponent)
	}
	sb.WriteByte('}')
	return sb.String()
}

// LCM は prime^exponent の積を返す。uint64 を超える場合は ErrOverflow。
func LCM(t Table) (uint64, error) {
	result := uint64(1)
	for _, term := range t.Terms() {
		for range term.Exponent {
			hi, lo := bits.Mul64(result, term.Prime)
			if hi != 0 {
				return 0, fmt.Errorf("%w: %s", ErrOverflow, t)
			}
			result = lo
		}
	}
	return result, nil
}

// BigLCM は桁あふれしない LCM を返す
func BigLCM(t Table) *big.Int {
	result := big.NewInt(1)
	pow := new(big.Int)
	for _, term := range t.Terms() {
		pow.Exp(new(big.Int).SetUint64(term.Prime), big.NewInt(int64(term.Exponent)), nil)
		result.Mul(result, pow)
	}
	return result
}
