// Package queue provides the shared LIFO work queue between the producer
// and the factorization workers.
//
// Items are guarded by a single mutex and a condition variable that is
// broadcast on every push. Shutdown sentinels are counted separately from
// real items and are handed out only when no real item is pending, so a
// worker never stops while submitted work is still queued. Every sentinel
// is taken by exactly one caller of Take.
package queue
