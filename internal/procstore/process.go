package procstore

import (
	"os"
	"syscall"
)

// processAlive reports whether pid refers to a still-running process,
// using signal 0 which the kernel delivers to no one but still
// validates the pid exists and is reachable.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
