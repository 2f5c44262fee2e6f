// Package suballoc holds the ambient utilities shared by the buddy and ring
// suballocators: sentinel errors, power-of-two validation, debug-only
// invariant checking, and statistics accumulators. It has no allocation
// logic of its own.
package suballoc
