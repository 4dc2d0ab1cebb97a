//go:build !windows

package cmd

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyReload registers ch for SIGHUP so a running daemon reloads its
// rule list without restarting.
func notifyReload(ch chan<- os.Signal) {
	signal.Notify(ch, syscall.SIGHUP)
}
