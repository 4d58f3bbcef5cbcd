//go:build unix

package spawn

import "syscall"

// detachedProcAttr puts the worker in its own session so it survives the
// hook's process group being torn down by the host.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
