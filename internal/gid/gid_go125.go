//go:build go1.25 && !go1.26 && (amd64 || arm64)

// Go 1.25 layout: gobuf shrank to 6 pointers, placing goid at byte
// offset 152.
//
//	stack          16      0
//	stackguard0     8     16
//	stackguard1     8     24
//	_panic          8     32
//	_defer          8     40
//	m               8     48
//	sched (gobuf)  48     56
//	syscallsp       8    104
//	syscallpc       8    112
//	syscallbp       8    120
//	stktopsp        8    128
//	param           8    136
//	atomicstatus    4    144
//	stackLock       4    148
//	goid            8    152  <- target

package gid

const goidOffset = 152
