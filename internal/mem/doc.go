// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// AllocAligned returns heap slices aligned to any power-of-two boundary so
// that multi-byte and atomic accesses at aligned offsets hit naturally
// aligned addresses.
package mem
