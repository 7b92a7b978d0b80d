// Package message hides, finds and strips text payloads in PNG containers.
//
// Chunk type text supplied by a caller is checked here, before any chunk is
// built or looked up: it must be four ASCII letters with the reserved bit
// set. Containers produced by png.Parse already satisfy the same rule, so a
// type that fails the check can never match.
package message
