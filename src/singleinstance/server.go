package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"screen-translate/src/messages"
)

// Server answers pings and forwards delegated commands to its sink.
type Server struct {
	sink Sink

	mu   sync.Mutex
	lis  net.Listener
	port int
	done chan struct{}
}

func NewServer(sink Sink) *Server { return &Server{sink: sink} }

// Start refuses to run next to a live resident, then binds the first free
// port of the configured range.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	if port, ok := DetectResidentPort(ctx); ok {
		return fmt.Errorf("%w (port %d)", ErrAlreadyRunning, port)
	}

	start, end := getPortRange()
	var lastErr error
	for port := start; port <= end; port++ {
		addr := fmt.Sprintf("%s:%d", residentHost, port)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		s.lis, s.port = lis, port
		s.done = make(chan struct{})
		log.Printf("singleinstance: listening on %s", addr)
		go s.acceptLoop(lis, s.done)
		return nil
	}
	return fmt.Errorf("singleinstance: no free port in %d-%d: %w", start, end, lastErr)
}

// Port returns the bound port (0 if not started).
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *Server) acceptLoop(lis net.Listener, done chan struct{}) {
	defer close(done)
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		s.handle(c)
	}
}

func (s *Server) handle(c net.Conn) {
	defer c.Close()
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(requestTimeout))

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("singleinstance: read from %s: %v", remote, err)
		return
	}

	var resp string
	switch {
	case line == pingRequest:
		resp = pongResponse
	case strings.HasPrefix(line, commandPrefix):
		name := strings.TrimSpace(strings.TrimPrefix(line, commandPrefix))
		cmd, err := messages.ParseCommand(name)
		if err != nil {
			resp = errorPrefix + err.Error() + "\n"
			break
		}
		log.Printf("singleinstance: %s delegated by %s", cmd, remote)
		s.sink.Push(cmd)
		resp = okResponse
	default:
		resp = errorPrefix + "unknown request\n"
	}
	if _, err := c.Write([]byte(resp)); err != nil {
		log.Printf("singleinstance: write to %s: %v", remote, err)
	}
}

// Close releases the port and waits for the accept loop to exit.
func (s *Server) Close() error {
	s.mu.Lock()
	lis, done := s.lis, s.done
	s.lis, s.port = nil, 0
	s.mu.Unlock()
	if lis == nil {
		return nil
	}
	err := lis.Close()
	<-done
	return err
}
