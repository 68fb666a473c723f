// Package orderbook assembles level-2 snapshots into a Book: one arena tree of
// price levels per side, bulk-loaded balanced from the snapshot and extended
// one order at a time afterwards.
//
// A Book is owned by a single goroutine. Callers that share books across
// goroutines publish them once built and do not mutate them afterwards.
package orderbook
