package kernel

import "encoding/binary"

// blockHeader precedes every payload in the arena.
//
// Layout (little-endian, headerSize=12 bytes):
//   - u32: size (payload bytes, multiple of 4)
//   - i32: owner task id, or -1 for kernel
//   - u8:  in_use flag
//   - i16: handle_id, reserved, -1 if unused
//   - 1 byte padding
type blockHeader struct {
	size     uint32
	owner    int32
	inUse    bool
	handleID int16
}

func putBlockHeader(buf []byte, h blockHeader) {
	binary.LittleEndian.PutUint32(buf[0:4], h.size)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.owner))
	if h.inUse {
		buf[8] = 1
	} else {
		buf[8] = 0
	}
	binary.LittleEndian.PutUint16(buf[9:11], uint16(h.handleID))
	buf[11] = 0
}

func getBlockHeader(buf []byte) blockHeader {
	return blockHeader{
		size:     binary.LittleEndian.Uint32(buf[0:4]),
		owner:    int32(binary.LittleEndian.Uint32(buf[4:8])),
		inUse:    buf[8] != 0,
		handleID: int16(binary.LittleEndian.Uint16(buf[9:11])),
	}
}

// Alloc places a new block of n payload bytes (rounded up to a
// multiple of 4) at the current bump pointer, owned by the calling
// task context. It returns the null Ptr for n==0. If the arena is
// full it compacts once and retries; a retry that still fails
// returns null (spec.md's ERR_NO_MEMORY is surfaced by syscall.go,
// which treats a null Ptr from alloc as that error).
func (k *Kernel) Alloc(ctx *TaskContext, n uint32) Ptr {
	if n == 0 {
		return 0
	}
	n = (n + 3) &^ 3

	need := uint32(headerSize) + n
	if k.heapUsed+need > HeapSize {
		k.Compact(ctx)
		if k.heapUsed+need > HeapSize {
			return 0
		}
	}

	at := k.heapUsed
	putBlockHeader(k.heap[at:at+headerSize], blockHeader{
		size:     n,
		owner:    int32(ctx.id),
		inUse:    true,
		handleID: -1,
	})
	k.heapUsed += need

	k.tasks[ctx.id].MemoryUsed += n
	return Ptr(at + headerSize)
}

// Free marks the block at p not-in-use. The null pointer is a no-op.
// Freeing an already-free block emits a diagnostic and returns
// without touching memory_used twice.
func (k *Kernel) Free(ctx *TaskContext, p Ptr) {
	if p == 0 {
		return
	}
	at := uint32(p) - headerSize
	h := getBlockHeader(k.heap[at : at+headerSize])
	if !h.inUse {
		k.diagSink().WriteLineString("kernel: free of already-free block")
		return
	}
	h.inUse = false
	putBlockHeader(k.heap[at:at+headerSize], h)

	if h.owner >= 0 && int(h.owner) < T {
		k.tasks[h.owner].MemoryUsed -= h.size
	}
}

// Available returns the number of bytes not yet claimed by heap_used.
func (k *Kernel) Available() uint32 {
	return HeapSize - k.heapUsed
}

// Compact walks the arena once, sliding every in-use block forward to
// close the gaps left by freed blocks, and shrinks heap_used to the
// new high-water mark. Every pointer any task is holding onto is
// invalidated by this call; the kernel warns on the sink whenever it
// relocates at least one block.
func (k *Kernel) Compact(ctx *TaskContext) {
	var read, write uint32
	moved := false

	for read < k.heapUsed {
		if read+headerSize > HeapSize {
			k.Panic(ctx, "heap corruption")
			return
		}
		h := getBlockHeader(k.heap[read : read+headerSize])
		span := headerSize + h.size
		if read+span > HeapSize {
			k.Panic(ctx, "heap corruption")
			return
		}
		if h.inUse {
			if write != read {
				copy(k.heap[write:write+span], k.heap[read:read+span])
				moved = true
			}
			write += span
		}
		read += span
	}

	if write > HeapSize {
		k.Panic(ctx, "heap corruption")
		return
	}

	k.heapUsed = write
	if moved {
		k.diagSink().WriteLineString("kernel: compaction relocated blocks, outstanding pointers invalid")
	}
}

// sweepOwnedBy frees every still-in-use block owned by id, used by
// kill_task so invariant 3 (sum of memory_used over non-EMPTY tasks
// equals sum of in-use block sizes) never goes stale once a task is
// gone. See DESIGN.md's open question 1 for why this kernel chose
// sweep-on-kill over leaking blocks until the next compaction.
func (k *Kernel) sweepOwnedBy(id TaskID) {
	var read uint32
	for read < k.heapUsed {
		h := getBlockHeader(k.heap[read : read+headerSize])
		span := headerSize + h.size
		if h.inUse && h.owner == int32(id) {
			h.inUse = false
			putBlockHeader(k.heap[read:read+headerSize], h)
		}
		read += span
	}
	k.tasks[id].MemoryUsed = 0
}
