package cmd

import "os"

// notifyReload is a no-op on windows; there is no SIGHUP. Use the
// reload command instead.
func notifyReload(ch chan<- os.Signal) {}
