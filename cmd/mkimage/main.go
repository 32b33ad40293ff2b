//go:build !tinygo

// mkimage validates a host directory meant to back the external
// filesystem and prints a summary of the board's compile-time kernel
// constants, the way the teacher's mkflash built a flashable LittleFS
// image from a host source tree. This kernel never ships its own
// filesystem image — the external medium is read straight off a
// directory tree (extfs.HostTree) or an SD card — so mkimage's job
// narrows to sanity-checking that tree and reporting the kernel
// constants compiled into this host build (HeapSize is the host value
// from config_host.go, not a board build's value).
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sparkcore/kernel"
)

func main() {
	var srcDir string
	flag.StringVar(&srcDir, "src", "", "Host directory to validate as the external filesystem root.")
	flag.Parse()

	if srcDir == "" {
		fmt.Fprintln(os.Stderr, "error: -src is required")
		os.Exit(2)
	}

	nFiles, nDirs, err := walk(srcDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Printf("fsroot %q: %d files, %d directories\n", srcDir, nFiles, nDirs)
	fmt.Printf("kernel config: T=%d F=%d D=%d Q=%d P=%d S=%d watchdog_timeout_ms=%d heap=%d bytes\n",
		kernel.T, kernel.F, kernel.D, kernel.Q, kernel.P, kernel.S, kernel.WatchdogTimeoutMS, kernel.HeapSize)

	if nFiles > kernel.F {
		fmt.Printf("warning: %d files on disk exceeds F=%d file-handle slots; not every file can be open at once\n", nFiles, kernel.F)
	}
	if nDirs > kernel.D {
		fmt.Printf("warning: %d directories on disk exceeds D=%d dir-handle slots; not every directory can be open at once\n", nDirs, kernel.D)
	}
}

func walk(root string) (files, dirs int, err error) {
	root = filepath.Clean(root)
	st, err := os.Stat(root)
	if err != nil {
		return 0, 0, fmt.Errorf("stat %q: %w", root, err)
	}
	if !st.IsDir() {
		return 0, 0, fmt.Errorf("%q is not a directory", root)
	}

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if entry.IsDir() {
			dirs++
			return nil
		}
		if entry.Type().IsRegular() {
			files++
		}
		return nil
	})
	if walkErr != nil {
		return 0, 0, fmt.Errorf("walk %q: %w", root, walkErr)
	}
	return files, dirs, nil
}
