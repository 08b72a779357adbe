//go:build !windows

package notification

import (
	"fmt"
	"log"
	"os"
)

// Without a native dialog the message goes to the log and stderr.
func showBlocking(title, message string) {
	log.Printf("%s: %s", title, message)
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}
