// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package wasi

import (
	"os"

	"golang.org/x/sys/unix"
)

// rawFile writes directly through the fd with unix.Write, bypassing
// (*os.File).Write's internal buffering expectations so that fd_write's
// own partial-write loop (spec §4.5) is the one doing the looping.
type rawFile struct {
	fd int
}

func newRawFile(f *os.File) *rawFile {
	return &rawFile{fd: int(f.Fd())}
}

func (r *rawFile) Write(p []byte) (int, error) {
	return unix.Write(r.fd, p)
}
