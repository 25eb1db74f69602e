// Package protocol owns the BITS transmission contract and its front door.
//
// Ownership boundary:
// - bits: hex to bit sequence, cursor reads and writes
// - packet: packet tree, recursive-descent parser, encoder
// - eval: folding a packet tree into one integer
// - this package: decode sessions, limits, batch decode, error kinds
package protocol
