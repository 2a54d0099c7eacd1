package gid

import "runtime"

// slowID parses the goroutine id out of the first runtime.Stack line,
// which always reads "goroutine N [state]:". Universal but costs
// microseconds; used only where the g-struct fast path is unavailable.
func slowID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseID(buf[:n])
}

// parseID extracts N from "goroutine N [". Returns 0 if the prefix is
// not present.
func parseID(b []byte) int64 {
	const prefix = "goroutine "
	if len(b) < len(prefix) || string(b[:len(prefix)]) != prefix {
		return 0
	}
	var id int64
	for _, c := range b[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
