// Package factor implements trial-division factorization against a prime
// table and the max-exponent merge used to build a least common multiple.
//
// A Table maps each prime to an exponent. Merging two tables keeps, per
// prime, the larger exponent, so the merged table of a set of numbers is
// exactly the factorization of their LCM:
//
//	primes := primes.Sieve(10000)
//	acc := factor.Table{}
//	for _, n := range []uint64{4, 6} {
//	    factor.MergeInto(acc, factor.Factorize(primes, n))
//	}
//	lcm, err := factor.LCM(acc) // 12, nil
//
// Merge is associative, commutative and idempotent, so tables may be
// combined in any order.
package factor
