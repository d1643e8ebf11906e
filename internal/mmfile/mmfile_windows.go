//go:build windows

package mmfile

import "os"

// Map reads the entire file into memory on Windows. A true mapping via
// golang.org/x/sys/windows is not used here: ESE files opened for read-only
// analysis are typically copies pulled off a live system, and a full read
// keeps the reader independent of Windows' exclusive-lock semantics on
// database files that may still be open by another process.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}

// Size returns a conservative default page size on this platform.
func Size() int {
	return 4096
}
