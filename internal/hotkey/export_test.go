package hotkey

// Pending returns the number of queued, undelivered events.
func (l *Listener) Pending() int {
	return len(l.events)
}

var (
	DetectDisplayServerFor = detectDisplayServer
	HasPortalSupportFor    = hasPortalSupport
	PortalTrigger          = portalTrigger
	SelectBackendFor       = selectBackend
)
