//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

var runtimes sync.Map

// GetRuntime returns the runtime of the calling goroutine, creating one with
// DefaultConfig on first use.
func GetRuntime() *Runtime {
	gid := goid.Get()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r := NewRuntime(DefaultConfig())
	runtimes.Store(gid, r)
	return r
}

// SetRuntime installs r for the calling goroutine. A nil runtime forgets the
// current one.
func SetRuntime(r *Runtime) {
	gid := goid.Get()

	if r == nil {
		runtimes.Delete(gid)
		return
	}

	runtimes.Store(gid, r)
}
