//go:build !tinygo

package kernel

// HeapSize (H) is the arena's total byte capacity on the host
// simulation build. Host tests favor a larger arena than a real board
// would carry so that compaction scenarios have room to be interesting
// without immediately forcing a compact() on every alloc.
const HeapSize = 64 * 1024
