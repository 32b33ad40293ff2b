package kernel

// Kind is a stable numeric syscall tag. The table is append-only:
// once assigned, a value's meaning can never change, only new values
// may be added at the end, so a stale binary's syscall numbers stay
// valid against a newer kernel.
type Kind uint16

const (
	KindCreateTask Kind = iota
	KindKillTask
	KindYield
	KindSleep
	KindAlloc
	KindFree
	KindAvailable
	KindCompact
	KindSend
	KindReceive
	KindPoll
	KindSemCreate
	KindSemWait
	KindSemPost
	KindSemDestroy
	KindOpenFile
	KindCloseFile
	KindReadFile
	KindWriteFile
	KindOpenDir
	KindCloseDir
	KindReadDirNext
	KindFSExists
	KindFSRemove
	KindFSMkdir
	KindFSRmdir
	KindGPIOConfigure
	KindGPIORead
	KindGPIOWrite
	KindI2CWireBegin
	KindI2CWireTx
	KindI2CWireRequest
	KindI2CWireRx
	KindSPIBegin
	KindSPITransferByte
	KindSPIEnd

	// KindGetTime, KindPrint, KindDbgPrint, and KindTaskList expose the
	// clock and diagnostic sink to task code directly through the
	// syscall surface, the way the original kernel's SYS_GET_TIME
	// (the only "system operation" tag it actually dispatched) did;
	// print/debug-print/task-list are carried forward from its
	// SyscallType enum even though its own switch never wired them in.
	KindGetTime
	KindPrint
	KindDbgPrint
	KindTaskList
)

func (k Kind) String() string {
	switch k {
	case KindCreateTask:
		return "create_task"
	case KindKillTask:
		return "kill_task"
	case KindYield:
		return "yield"
	case KindSleep:
		return "sleep"
	case KindAlloc:
		return "alloc"
	case KindFree:
		return "free"
	case KindAvailable:
		return "available"
	case KindCompact:
		return "compact"
	case KindSend:
		return "send"
	case KindReceive:
		return "receive"
	case KindPoll:
		return "poll"
	case KindSemCreate:
		return "sem_create"
	case KindSemWait:
		return "sem_wait"
	case KindSemPost:
		return "sem_post"
	case KindSemDestroy:
		return "sem_destroy"
	case KindOpenFile:
		return "open_file"
	case KindCloseFile:
		return "close_file"
	case KindReadFile:
		return "read_file"
	case KindWriteFile:
		return "write_file"
	case KindOpenDir:
		return "open_dir"
	case KindCloseDir:
		return "close_dir"
	case KindReadDirNext:
		return "read_dir_next"
	case KindFSExists:
		return "fs_exists"
	case KindFSRemove:
		return "fs_remove"
	case KindFSMkdir:
		return "fs_mkdir"
	case KindFSRmdir:
		return "fs_rmdir"
	case KindGPIOConfigure:
		return "gpio_configure"
	case KindGPIORead:
		return "gpio_read"
	case KindGPIOWrite:
		return "gpio_write"
	case KindI2CWireBegin:
		return "i2c_wire_begin"
	case KindI2CWireTx:
		return "i2c_wire_tx"
	case KindI2CWireRequest:
		return "i2c_wire_request"
	case KindI2CWireRx:
		return "i2c_wire_rx"
	case KindSPIBegin:
		return "spi_begin"
	case KindSPITransferByte:
		return "spi_transfer_byte"
	case KindSPIEnd:
		return "spi_end"
	case KindGetTime:
		return "get_time"
	case KindPrint:
		return "print"
	case KindDbgPrint:
		return "dbg_print"
	case KindTaskList:
		return "task_list"
	default:
		return "unknown"
	}
}

// driverPermission reports the permission bit the dispatcher must
// see before forwarding a driver-style call, or 0 for calls that
// carry no such gate. The dispatcher is the only layer that performs
// this check — every hal.GPIO/I2C/SPI implementation, and every
// kernel component function, assumes its caller was already
// authorized by the time it is invoked.
func driverPermission(k Kind) Permission {
	switch k {
	case KindGPIOConfigure, KindGPIORead, KindGPIOWrite:
		return PermGPIO
	case KindI2CWireBegin, KindI2CWireTx, KindI2CWireRequest, KindI2CWireRx:
		return PermI2C
	case KindSPIBegin, KindSPITransferByte, KindSPIEnd:
		return PermSPI
	default:
		return 0
	}
}

// Syscall is the single entry point tasks (and test code standing in
// for them) route every operation through. It casts the four opaque
// arguments to the shapes each Kind expects via the any type, checks
// caller permission for driver-gated calls, and returns a signed
// result: non-negative is success (or a handle/semaphore id),
// negative is one of the ErrKind values in types.go cast to int64.
// The one exception is read_dir_next, which returns -1 (the same
// value as ErrInvalidCall) once the directory is exhausted.
// Unknown tags return ErrInvalidCall. Driver components never see an
// unauthorized caller — that check happens here, once, before
// dispatch, as does the PermCreateTask check for create_task. File
// and directory opens are not gated here: OpenFile and OpenDir check
// PermSD themselves.
func (c *TaskContext) Syscall(kind Kind, a1, a2, a3, a4 any) int64 {
	k := c.k

	if perm := driverPermission(kind); perm != 0 {
		if !k.tasks[c.id].Has(perm) {
			return int64(ErrPermission)
		}
	}

	switch kind {
	case KindCreateTask:
		name, _ := a1.(string)
		entry, _ := a2.(EntryPoint)
		if !k.tasks[c.id].Has(PermCreateTask) {
			return int64(ErrPermission)
		}
		id, err := k.CreateTask(name, entry)
		if err != OK {
			return int64(err)
		}
		return int64(id)

	case KindKillTask:
		id, _ := a1.(TaskID)
		return int64(k.KillTask(id))

	case KindYield:
		c.Yield()
		return int64(OK)

	case KindSleep:
		ms, _ := a1.(uint32)
		c.Sleep(ms)
		return int64(OK)

	case KindAlloc:
		n, _ := a1.(uint32)
		p := k.Alloc(c, n)
		if p == 0 {
			return int64(ErrNoMemory)
		}
		return int64(p)

	case KindFree:
		p, _ := a1.(Ptr)
		k.Free(c, p)
		return int64(OK)

	case KindAvailable:
		return int64(k.Available())

	case KindCompact:
		k.Compact(c)
		return int64(OK)

	case KindSend:
		to, _ := a1.(TaskID)
		data, _ := a2.([]byte)
		length, _ := a3.(int)
		return int64(c.Send(to, data, length))

	case KindReceive:
		buf, _ := a1.([]byte)
		maxlen, _ := a2.(int)
		from, _ := a3.(*TaskID)
		n, err := c.Receive(buf, maxlen, from)
		if err != OK {
			return int64(err)
		}
		return int64(n)

	case KindPoll:
		return int64(c.Poll())

	case KindSemCreate:
		initial, _ := a1.(int)
		max, _ := a2.(int)
		name, _ := a3.(string)
		id, err := c.SemCreate(initial, max, name)
		if err != OK {
			return int64(err)
		}
		return int64(id)

	case KindSemWait:
		id, _ := a1.(int)
		timeout, _ := a2.(uint32)
		return int64(c.SemWait(id, timeout))

	case KindSemPost:
		id, _ := a1.(int)
		return int64(c.SemPost(id))

	case KindSemDestroy:
		id, _ := a1.(int)
		return int64(c.SemDestroy(id))

	case KindOpenFile:
		path, _ := a1.(string)
		write, _ := a2.(bool)
		h, err := c.OpenFile(path, write)
		if err != OK {
			return int64(err)
		}
		return int64(h)

	case KindCloseFile:
		h, _ := a1.(int)
		return int64(c.CloseFile(h))

	case KindReadFile:
		h, _ := a1.(int)
		buf, _ := a2.([]byte)
		n, err := c.ReadFile(h, buf)
		if err != OK {
			return int64(err)
		}
		return int64(n)

	case KindWriteFile:
		h, _ := a1.(int)
		buf, _ := a2.([]byte)
		n, err := c.WriteFile(h, buf)
		if err != OK {
			return int64(err)
		}
		return int64(n)

	case KindOpenDir:
		path, _ := a1.(string)
		h, err := c.OpenDir(path)
		if err != OK {
			return int64(err)
		}
		return int64(h)

	case KindCloseDir:
		h, _ := a1.(int)
		return int64(c.CloseDir(h))

	case KindReadDirNext:
		h, _ := a1.(int)
		child, _, ok, err := c.ReadDirNext(h)
		if err != OK {
			return int64(err)
		}
		if !ok {
			return -1
		}
		return int64(child)

	case KindFSExists:
		path, _ := a1.(string)
		if k.fs == nil {
			return int64(ErrIOError)
		}
		if k.fs.Exists(path) {
			return 1
		}
		return 0

	case KindFSRemove:
		path, _ := a1.(string)
		if k.fs == nil {
			return int64(ErrIOError)
		}
		return int64(mapExtfsErr(k.fs.Remove(path)))

	case KindFSMkdir:
		path, _ := a1.(string)
		if k.fs == nil {
			return int64(ErrIOError)
		}
		return int64(mapExtfsErr(k.fs.Mkdir(path)))

	case KindFSRmdir:
		path, _ := a1.(string)
		if k.fs == nil {
			return int64(ErrIOError)
		}
		return int64(mapExtfsErr(k.fs.Rmdir(path)))

	case KindGPIOConfigure:
		pin, _ := a1.(int)
		mode, _ := a2.(int)
		return int64(c.gpioConfigure(pin, mode))

	case KindGPIORead:
		pin, _ := a1.(int)
		level, err := c.gpioRead(pin)
		if err != OK {
			return int64(err)
		}
		if level {
			return 1
		}
		return 0

	case KindGPIOWrite:
		pin, _ := a1.(int)
		level, _ := a2.(bool)
		return int64(c.gpioWrite(pin, level))

	case KindI2CWireBegin:
		addr, _ := a1.(uint16)
		return int64(c.i2cWireBegin(addr))

	case KindI2CWireTx:
		addr, _ := a1.(uint16)
		data, _ := a2.([]byte)
		return int64(c.i2cWireTx(addr, data))

	case KindI2CWireRequest:
		addr, _ := a1.(uint16)
		n, _ := a2.(int)
		return int64(c.i2cWireRequest(addr, n))

	case KindI2CWireRx:
		buf, _ := a1.([]byte)
		return int64(c.i2cWireRx(buf))

	case KindSPIBegin:
		return int64(c.spiBegin())

	case KindSPITransferByte:
		b, _ := a1.(byte)
		out, err := c.spiTransferByte(b)
		if err != OK {
			return int64(err)
		}
		return int64(out)

	case KindSPIEnd:
		c.spiEnd()
		return int64(OK)

	case KindGetTime:
		return int64(k.now())

	case KindPrint:
		msg, _ := a1.(string)
		c.Print(msg)
		return int64(OK)

	case KindDbgPrint:
		msg, _ := a1.(string)
		k.DebugPrint(msg)
		return int64(OK)

	case KindTaskList:
		k.DumpTaskListing()
		return int64(OK)

	default:
		return int64(ErrInvalidCall)
	}
}
