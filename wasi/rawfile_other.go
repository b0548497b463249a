// +build !aix,!darwin,!dragonfly,!freebsd,!linux,!netbsd,!openbsd,!solaris

package wasi

import "os"

// rawFile falls back to (*os.File).Write on every platform that
// rawfile_unix.go is not built for.
type rawFile struct {
	f *os.File
}

func newRawFile(f *os.File) *rawFile {
	return &rawFile{f: f}
}

func (r *rawFile) Write(p []byte) (int, error) {
	return r.f.Write(p)
}
