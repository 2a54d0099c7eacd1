//go:build go1.24 && !go1.25 && (amd64 || arm64)

// Go 1.24 layout: the gobuf struct inside runtime.g is 7 pointers wide,
// placing goid at byte offset 160.
//
//	stack          16      0
//	stackguard0     8     16
//	stackguard1     8     24
//	_panic          8     32
//	_defer          8     40
//	m               8     48
//	sched (gobuf)  56     56
//	syscallsp       8    112
//	syscallpc       8    120
//	syscallbp       8    128
//	stktopsp        8    136
//	param           8    144
//	atomicstatus    4    152
//	stackLock       4    156
//	goid            8    160  <- target

package gid

const goidOffset = 160
