//go:build go1.24 && !go1.26 && (amd64 || arm64)

package gid

import "unsafe"

// getg returns the current goroutine's runtime.g pointer. Implemented in
// gid_amd64.s / gid_arm64.s.
//
//go:noescape
func getg() uintptr

// getID loads the goid field at the version-specific offset. Falls back
// to stack parsing if the g pointer is somehow nil.
//
//go:nosplit
//go:nocheckptr
func getID() int64 {
	gp := getg()
	if gp == 0 {
		return slowID()
	}
	return int64(*(*uint64)(unsafe.Pointer(gp + goidOffset)))
}
