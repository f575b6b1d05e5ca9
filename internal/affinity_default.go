//go:build !wasm

package internal

import (
	"github.com/petermattis/goid"
)

// affinity remembers the goroutine a container was initialized on.
type affinity struct {
	gid   int64
	bound bool
}

func (a *affinity) bind() {
	a.gid = getGID()
	a.bound = true
}

// check reports whether the caller runs on the bound goroutine.
func (a *affinity) check(op string) bool {
	if !a.bound {
		return true
	}
	if gid := getGID(); gid != a.gid {
		log.Warningf("%s called from goroutine %d, container is bound to %d", op, gid, a.gid)
		return false
	}
	return true
}

func getGID() int64 {
	return goid.Get()
}
