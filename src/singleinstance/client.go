package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"screen-translate/src/messages"
)

// Send delegates cmd to a running resident. delegated is false when no
// resident answered.
func Send(ctx context.Context, cmd messages.Command) (delegated bool, err error) {
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return false, nil
	}
	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(requestTimeout))

	if _, err := fmt.Fprintf(conn, "%s%s\n", commandPrefix, cmd); err != nil {
		return true, err
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return true, err
	}
	switch {
	case resp == okResponse:
		return true, nil
	case strings.HasPrefix(resp, errorPrefix):
		return true, errors.New(strings.TrimSpace(strings.TrimPrefix(resp, errorPrefix)))
	default:
		return true, fmt.Errorf("unexpected response %q", resp)
	}
}
