// Package worker provides the pool of factorization workers.
//
// A Pool owns a shared LIFO work queue, the prime table and a fixed set of
// Worker goroutines. Each worker takes numbers from the queue, factors them
// by trial division and folds the result into its own private factor
// table. Shutdown hands every worker exactly one sentinel, joins them all
// and merges their tables into the global table whose product of prime
// powers is the LCM of every accepted number.
//
// # Basic Usage
//
//	pool := worker.NewPool(4) // 4 workers, bound 10000
//	if err := pool.Start(); err != nil {
//	    return err
//	}
//
//	for _, n := range []uint64{4, 6} {
//	    if err := pool.Submit(n); err != nil {
//	        // worker.ErrOutOfRange for n > bound
//	    }
//	}
//
//	result, err := pool.Shutdown()
//	lcm := result.BigLCM() // 12
//
// # Configuration
//
// Use NewPoolWithConfig for a custom bound:
//
//	config := worker.PoolConfig{
//	    NumWorkers: 0,      // hardware parallelism, 4 when it is 1
//	    Bound:      100000, // prime table and input limit
//	}
//	pool := worker.NewPoolWithConfig(config)
//
// # Shutdown
//
// Shutdown must be called exactly once after Start. It never strands
// queued numbers: sentinels are only handed out once no real number is
// pending, and the global table is merged after every worker has exited.
package worker
