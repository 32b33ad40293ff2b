// Package extfs declares the external filesystem interface spec.md §6
// names: open/close/read/write/exists/remove/size/mkdir/rmdir/
// open_next_child/is_directory/name/rewind. The kernel never
// interprets a path string; it only passes one through to Medium.Open
// and stores the returned Object in a file or directory handle slot.
package extfs

import "errors"

var (
	// ErrNotFound mirrors a path that does not resolve.
	ErrNotFound = errors.New("extfs: not found")
	// ErrExists mirrors creating something that is already there.
	ErrExists = errors.New("extfs: already exists")
	// ErrIO mirrors a medium-level failure (bad sector, bus error, ...).
	ErrIO = errors.New("extfs: io error")
	// ErrNotDir means a path that was expected to be a directory is not.
	ErrNotDir = errors.New("extfs: not a directory")
	// ErrIsDir means a path that was expected to be a file is a directory.
	ErrIsDir = errors.New("extfs: is a directory")
)

// Medium is the external filesystem the kernel's file/dir handle
// tables open objects against. Implementations back this with an SD
// card (TinyGo build) or a host directory tree (host build).
type Medium interface {
	Open(path string, write bool) (Object, error)
	Exists(path string) bool
	Remove(path string) error
	Mkdir(path string) error
	Rmdir(path string) error
}

// Object is one open file or directory.
type Object interface {
	Close() error
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	Size() uint32
	Name() string
	IsDirectory() bool
	Rewind() error
	// OpenNextChild advances a directory object to its next entry and
	// returns it, or ok=false once exhausted. Calling it on a file
	// object is an error.
	OpenNextChild() (child Object, ok bool, err error)
}
