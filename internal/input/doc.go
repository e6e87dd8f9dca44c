// Package input reads the stream of numbers and forwards them to a pool.
//
// Numbers are whitespace separated. Reading stops at the first 0 or at end
// of input; the terminating 0 is never forwarded. Tokens that are not
// non-negative integers are logged and skipped, and numbers the pool
// rejects as out of range are counted and skipped.
package input
