package internal

import "sync"

// extended holds every host that received a mailer.
var extended sync.Map

// claimHost marks host as extended. It reports false if it already was.
func claimHost(host Host) bool {
	_, loaded := extended.LoadOrStore(host, struct{}{})
	return !loaded
}

// releaseHost undoes claimHost after a failed extension.
func releaseHost(host Host) {
	extended.Delete(host)
}
