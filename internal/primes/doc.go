// Package primes builds the read-only prime table used by the factorizer.
//
// The table is produced once by a sieve of Eratosthenes over a boolean
// marking array and is never mutated afterwards, so it can be shared by
// any number of goroutines without locking.
//
//	table := primes.Sieve(10000)
//	for p := range table.All() {
//	    fmt.Println(p)
//	}
package primes
