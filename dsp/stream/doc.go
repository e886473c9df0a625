// Package stream serializes samples from many producers into one comb bank.
//
// A [comb.Bank] must be mutated by a single owner. A [Feeder] is that
// owner: [Feeder.Run] processes submitted blocks on one goroutine in the
// order they were queued while any number of goroutines call
// [Feeder.Submit]. Ordering between concurrent producers is the order in
// which their blocks enter the queue.
package stream
