// Package memory provides allocation helpers shared by the order book.
//
// Resting orders are allocated from a typed Pool and handed back once they
// are fully filled and compacted out of their collection.
package memory
