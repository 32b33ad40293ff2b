package kernel

import "sparkcore/extfs"

// OpenFile finds the lowest free file-handle slot, opens path against
// the configured external filesystem medium, and records ownership.
// The caller must hold PermSD; the dispatcher does not check this
// bit for file calls, so this is the only PermSD gate, both for
// syscall-routed calls and for direct Go calls from tests and app
// wiring.
func (c *TaskContext) OpenFile(path string, write bool) (int, ErrKind) {
	k := c.k
	if !k.tasks[c.id].Has(PermSD) {
		return -1, ErrPermission
	}
	if k.fs == nil {
		return -1, ErrIOError
	}

	slot := -1
	for h := 0; h < F; h++ {
		if !k.files[h].InUse {
			slot = h
			break
		}
	}
	if slot == -1 {
		return -1, ErrNoMemory
	}

	obj, err := k.fs.Open(path, write)
	if err != nil {
		return -1, mapExtfsErr(err)
	}
	if obj.IsDirectory() {
		_ = obj.Close()
		return -1, ErrInvalidParam
	}

	k.files[slot] = FileHandle{Object: obj, Owner: c.id, InUse: true, CanWrite: write}
	k.tasks[c.id].FileHandles[slot] = true
	return slot, OK
}

// CloseFile releases the external resource and clears the owner's
// bitmap bit. A handle already closed (or never opened, or owned by
// another task) returns ErrInvalidParam, giving close(h) its
// idempotent-close-then-error-on-second-call law.
func (c *TaskContext) CloseFile(handle int) ErrKind {
	k := c.k
	if handle < 0 || handle >= F {
		return ErrInvalidParam
	}
	fh := &k.files[handle]
	if !fh.InUse || fh.Owner != c.id {
		return ErrInvalidParam
	}
	_ = fh.Object.Close()
	k.closeFile(c.id, handle)
	return OK
}

// closeFile is the internal release used by both CloseFile and
// KillTask's cleanup sweep; unlike CloseFile it assumes the caller
// already validated ownership (or is cleaning up on the owner's
// behalf during a kill). It closes the row's Object itself whenever
// the row is still in use by owner, which is how KillTask releases
// the external resource.
func (k *Kernel) closeFile(owner TaskID, handle int) {
	fh := &k.files[handle]
	if fh.InUse && fh.Owner == owner {
		if fh.Object != nil {
			_ = fh.Object.Close()
		}
		*fh = FileHandle{}
	}
	k.tasks[owner].FileHandles[handle] = false
}

// ReadFile requires the handle be open and owned by the caller.
func (c *TaskContext) ReadFile(handle int, buf []byte) (int, ErrKind) {
	k := c.k
	if handle < 0 || handle >= F {
		return 0, ErrInvalidParam
	}
	fh := &k.files[handle]
	if !fh.InUse || fh.Owner != c.id {
		return 0, ErrInvalidParam
	}
	n, err := fh.Object.Read(buf)
	if err != nil {
		return 0, ErrIOError
	}
	return n, OK
}

// WriteFile requires the handle be open for writing and owned by the
// caller.
func (c *TaskContext) WriteFile(handle int, buf []byte) (int, ErrKind) {
	k := c.k
	if handle < 0 || handle >= F {
		return 0, ErrInvalidParam
	}
	fh := &k.files[handle]
	if !fh.InUse || fh.Owner != c.id {
		return 0, ErrInvalidParam
	}
	if !fh.CanWrite {
		return 0, ErrPermission
	}
	n, err := fh.Object.Write(buf)
	if err != nil {
		return 0, ErrIOError
	}
	return n, OK
}

// OpenDir mirrors OpenFile for directories.
func (c *TaskContext) OpenDir(path string) (int, ErrKind) {
	k := c.k
	if !k.tasks[c.id].Has(PermSD) {
		return -1, ErrPermission
	}
	if k.fs == nil {
		return -1, ErrIOError
	}

	slot := -1
	for h := 0; h < D; h++ {
		if !k.dirs[h].InUse {
			slot = h
			break
		}
	}
	if slot == -1 {
		return -1, ErrNoMemory
	}

	obj, err := k.fs.Open(path, false)
	if err != nil {
		return -1, mapExtfsErr(err)
	}
	if !obj.IsDirectory() {
		_ = obj.Close()
		return -1, ErrInvalidParam
	}

	k.dirs[slot] = DirHandle{Object: obj, Owner: c.id, InUse: true}
	k.tasks[c.id].DirHandles[slot] = true
	return slot, OK
}

// CloseDir is CloseFile's counterpart for directory handles.
func (c *TaskContext) CloseDir(handle int) ErrKind {
	k := c.k
	if handle < 0 || handle >= D {
		return ErrInvalidParam
	}
	dh := &k.dirs[handle]
	if !dh.InUse || dh.Owner != c.id {
		return ErrInvalidParam
	}
	_ = dh.Object.Close()
	k.closeDir(c.id, handle)
	return OK
}

func (k *Kernel) closeDir(owner TaskID, handle int) {
	dh := &k.dirs[handle]
	if dh.InUse && dh.Owner == owner {
		if dh.Object != nil {
			_ = dh.Object.Close()
		}
		*dh = DirHandle{}
	}
	k.tasks[owner].DirHandles[handle] = false
}

// ReadDirNext advances a directory handle to its next child, opening
// it as a new file or directory handle in the caller's own table so
// the child can subsequently be read/written like any other handle.
// ok is false once the directory is exhausted.
func (c *TaskContext) ReadDirNext(handle int) (childHandle int, isDir bool, ok bool, errKind ErrKind) {
	k := c.k
	if handle < 0 || handle >= D {
		return -1, false, false, ErrInvalidParam
	}
	dh := &k.dirs[handle]
	if !dh.InUse || dh.Owner != c.id {
		return -1, false, false, ErrInvalidParam
	}

	child, present, err := dh.Object.OpenNextChild()
	if err != nil {
		return -1, false, false, ErrIOError
	}
	if !present {
		return -1, false, false, OK
	}

	if child.IsDirectory() {
		slot := -1
		for h := 0; h < D; h++ {
			if !k.dirs[h].InUse {
				slot = h
				break
			}
		}
		if slot == -1 {
			_ = child.Close()
			return -1, false, false, ErrNoMemory
		}
		k.dirs[slot] = DirHandle{Object: child, Owner: c.id, InUse: true}
		k.tasks[c.id].DirHandles[slot] = true
		return slot, true, true, OK
	}

	slot := -1
	for h := 0; h < F; h++ {
		if !k.files[h].InUse {
			slot = h
			break
		}
	}
	if slot == -1 {
		_ = child.Close()
		return -1, false, false, ErrNoMemory
	}
	k.files[slot] = FileHandle{Object: child, Owner: c.id, InUse: true}
	k.tasks[c.id].FileHandles[slot] = true
	return slot, false, true, OK
}

// mapExtfsErr adapts extfs's error sentinels to the kernel's own
// error kinds at the handle-table boundary, the only place the two
// error spaces meet.
func mapExtfsErr(err error) ErrKind {
	switch err {
	case nil:
		return OK
	case extfs.ErrNotFound:
		return ErrNotFound
	case extfs.ErrExists:
		return ErrInvalidParam
	case extfs.ErrNotDir, extfs.ErrIsDir:
		return ErrInvalidParam
	default:
		return ErrIOError
	}
}
