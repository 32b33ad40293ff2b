//go:build tinygo

package kernel

// HeapSize (H) is the arena's total byte capacity on a bare-metal
// board build. spec.md's default is 2 KiB; boards with more SRAM can
// raise this up to 512 KiB by replacing this file's constant, the way
// the teacher picks flash/display sizes per board in hal's per-board
// constructors.
const HeapSize = 2048
