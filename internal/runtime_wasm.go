//go:build wasm

package internal

var globalRuntime *Runtime

func GetRuntime() *Runtime {
	if globalRuntime == nil {
		globalRuntime = NewRuntime(DefaultConfig())
	}

	return globalRuntime
}

func SetRuntime(r *Runtime) {
	globalRuntime = r
}
