//go:build tinygo && baremetal

package extfs

import (
	"errors"
	"io"
	"os"

	"machine"

	"tinygo.org/x/drivers/sdcard"
	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/fatfs"
)

// SDCard is a Medium backed by a FAT-formatted SD card, grounded
// directly on the teacher's picocalc SD wiring: SPI0 with CS/SCK/
// SDO/SDI on GP18/GP19/GP16/GP17.
type SDCard struct {
	sd  *sdcard.Device
	fat *fatfs.FATFS
}

// NewSDCard configures and mounts the SD card. It does not
// auto-format removable media: a mount failure is returned as-is.
func NewSDCard() (*SDCard, error) {
	sd := sdcard.New(machine.SPI0, machine.GP18, machine.GP19, machine.GP16, machine.GP17)
	if err := sd.Configure(); err != nil {
		return nil, err
	}
	fat := fatfs.New(&sd).Configure(&fatfs.Config{SectorSize: fatfs.SectorSize})
	if err := fat.Mount(); err != nil {
		return nil, err
	}
	return &SDCard{sd: &sd, fat: fat}, nil
}

func (c *SDCard) Open(path string, write bool) (Object, error) {
	flag := os.O_RDONLY
	if write {
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := c.fat.OpenFile(path, flag)
	if err != nil {
		return nil, mapFatErr(err)
	}
	info, err := c.fat.Stat(path)
	if err != nil {
		_ = f.Close()
		return nil, mapFatErr(err)
	}
	if info.IsDir() {
		entries, err := f.Readdir(0)
		if err != nil {
			_ = f.Close()
			return nil, mapFatErr(err)
		}
		_ = f.Close()
		return &sdDir{card: c, path: path, entries: entries}, nil
	}
	return &sdFile{f: f, name: info.Name()}, nil
}

func (c *SDCard) Exists(path string) bool {
	_, err := c.fat.Stat(path)
	return err == nil
}

func (c *SDCard) Remove(path string) error {
	return mapFatErr(c.fat.Remove(path))
}

func (c *SDCard) Mkdir(path string) error {
	return mapFatErr(c.fat.Mkdir(path, 0o777))
}

func (c *SDCard) Rmdir(path string) error {
	return mapFatErr(c.fat.Remove(path))
}

type sdFile struct {
	f    tinyfs.File
	name string
}

func (f *sdFile) Close() error { return f.f.Close() }

func (f *sdFile) Read(buf []byte) (int, error) {
	n, err := f.f.Read(buf)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

func (f *sdFile) Write(buf []byte) (int, error) { return f.f.Write(buf) }

func (f *sdFile) Size() uint32 {
	off, err := f.f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0
	}
	_, _ = f.f.Seek(off, io.SeekStart)
	return uint32(off)
}

func (f *sdFile) Name() string      { return f.name }
func (f *sdFile) IsDirectory() bool { return false }

func (f *sdFile) Rewind() error {
	_, err := f.f.Seek(0, io.SeekStart)
	return err
}

func (f *sdFile) OpenNextChild() (Object, bool, error) {
	return nil, false, ErrNotDir
}

type sdDir struct {
	card    *SDCard
	path    string
	entries []os.FileInfo
	idx     int
	name    string
}

func (d *sdDir) Close() error { return nil }

func (d *sdDir) Read(buf []byte) (int, error)  { return 0, ErrIsDir }
func (d *sdDir) Write(buf []byte) (int, error) { return 0, ErrIsDir }

func (d *sdDir) Size() uint32       { return uint32(len(d.entries)) }
func (d *sdDir) Name() string       { return d.name }
func (d *sdDir) IsDirectory() bool  { return true }

func (d *sdDir) Rewind() error {
	d.idx = 0
	return nil
}

func (d *sdDir) OpenNextChild() (Object, bool, error) {
	for d.idx < len(d.entries) {
		e := d.entries[d.idx]
		d.idx++
		name := e.Name()
		if name == "." || name == ".." {
			continue
		}
		child, err := d.card.Open(d.path+"/"+name, false)
		if err != nil {
			return nil, false, err
		}
		return child, true, nil
	}
	return nil, false, nil
}

func mapFatErr(err error) error {
	if err == nil {
		return nil
	}
	var fr fatfs.FileResult
	if errors.As(err, &fr) {
		switch fr {
		case fatfs.FileResultNoFile, fatfs.FileResultNoPath:
			return ErrNotFound
		case fatfs.FileResultExist:
			return ErrExists
		default:
			return ErrIO
		}
	}
	return ErrIO
}
