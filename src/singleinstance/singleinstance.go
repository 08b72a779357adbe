// Package singleinstance keeps one resident process per user session and lets
// later invocations hand it a command over loopback TCP.
//
// Wire format, one line each way:
//
//	PING\n                  -> PONG\n
//	COMMAND select-area\n   -> OK\n | ERROR <message>\n
package singleinstance

import (
	"errors"
	"time"

	"screen-translate/src/messages"
)

const (
	residentHost   = "127.0.0.1"
	pingRequest    = "PING\n"
	pongResponse   = "PONG\n"
	commandPrefix  = "COMMAND "
	okResponse     = "OK\n"
	errorPrefix    = "ERROR "
	requestTimeout = 3 * time.Second
)

var ErrAlreadyRunning = errors.New("another instance is already running")

// Sink receives delegated commands. messages.Queue satisfies it.
type Sink interface {
	Push(cmd messages.Command)
}
