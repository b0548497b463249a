package interpreter

import "strings"

// isBoundsError reports whether err is a Go runtime error produced by an
// out-of-bounds slice/array access, the shape an out-of-bounds I32Store or
// memory read takes once it reaches Go's own bounds checking. This
// mirrors the teacher's exec.TranslateRuntimeError, which classifies the
// same family of runtime.Error messages as a memory trap.
func isBoundsError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "runtime error: index out of range") ||
		strings.HasPrefix(msg, "runtime error: slice bounds out of range")
}
