// Package png owns the PNG container model.
//
// Ownership boundary:
// - signature check and chunk framing (see package chunk)
// - ordered chunk list: append, lookup, removal
// - serialization back to the exact wire layout
//
// Pixel data, IDAT compression and chunk ordering rules beyond framing are
// not interpreted here. The package never performs I/O on its own and never
// logs; every failure is returned as an error wrapping one of the package
// sentinels.
package png
