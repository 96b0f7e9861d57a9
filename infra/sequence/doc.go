// Package sequence issues the arrival numbers behind time priority.
//
// Order ids are per book, but sequence numbers come from whichever
// Sequencer the book was built with. Handing one Sequencer to several
// books orders their submissions on a single timeline, so an order's Seq
// can be compared across books. The outbox starts from its persisted
// high-water mark and moves forward with AdvanceTo.
package sequence
