package xc

import (
	"os"

	units "github.com/docker/go-units"
)

func humanBytes(n int) string {
	return units.BytesSize(float64(n))
}

func exitProcess(code int) {
	os.Exit(code)
}

// fatalf reports an invariant violation and aborts the process. The runtime
// cannot continue on a corrupt heap.
func (rt *Runtime) fatalf(format string, args ...any) {
	rt.log.Errorf("fatal: "+format, args...)
	rt.abort(1)
}
