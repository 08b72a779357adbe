// Package notification shows errors that must reach the user before any
// window exists, such as a failed startup.
package notification

import "screen-translate/src/logutil"

const maxMessageLen = 1000

func trim(message string) string {
	if len(message) > maxMessageLen {
		return message[:maxMessageLen] + "..."
	}
	return message
}

// ShowBlockingError displays message and returns once the user dismissed it.
func ShowBlockingError(title, message string) {
	message = trim(message)
	logutil.Debugf("notification: %s: %s", title, message)
	showBlocking(title, message)
}
