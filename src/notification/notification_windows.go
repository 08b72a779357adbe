//go:build windows

package notification

import (
	"log"

	"golang.org/x/sys/windows"
)

func showBlocking(title, message string) {
	log.Printf("%s: %s", title, message)
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	messagePtr, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return
	}
	if _, err := windows.MessageBox(0, messagePtr, titlePtr, windows.MB_OK|windows.MB_ICONERROR|windows.MB_TOPMOST); err != nil {
		log.Printf("notification: MessageBox failed: %v", err)
	}
}
