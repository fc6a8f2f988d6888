// Package transport owns the connection between the main (presentation)
// side and the editor worker.
//
// A Transport delivers typed protocol messages asynchronously, FIFO per
// direction, with the two directions independent of each other. It also
// carries the wake flag: a single shared 32-bit cell the main side stores 1
// into whenever the worker should resume from a blocking wait. The flag is
// a level, not a counter; redundant signals collapse and the consumer side
// resets the cell.
//
// Two transports are provided. Pair links a main-side Transport to a
// worker-side Endpoint over in-process channels and a genuinely shared
// wake cell. Pipe frames messages as newline-delimited JSON over a byte
// stream for subprocess workers; the wake signal is emulated with a tiny
// advisory frame because memory cannot be shared across the stream.
package transport
