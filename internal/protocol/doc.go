// Package protocol defines the message types exchanged between the main
// (presentation) side and the editor worker, and a JSON wire codec for
// transports that cross a process boundary.
//
// Messages are closed tagged variants. Outbound messages travel main to
// worker (start, resize, key); inbound messages travel worker to main
// (draw, started, exit, fatal). A draw message carries exactly one
// Instruction, itself a closed tagged variant dispatched by Op.
//
// Both directions are FIFO per direction with no ordering guarantee between
// directions. Messages are immutable once constructed and carry no identity
// beyond their content.
package protocol
