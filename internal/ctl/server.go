// Package ctl exposes a running scheduler's control surface over a unix
// socket so the CLI can register tasks, set isolation, and query status from
// another process.
package ctl

import (
	"encoding/json"
	"fmt"
	"net"
	"os"

	"github.com/sirupsen/logrus"

	"gamesched/internal/sched"
)

// DefaultSocket is where a running scheduler listens for control commands.
const DefaultSocket = "/tmp/gamesched.sock"

// Request is one control-surface call.
type Request struct {
	Op    string       `json:"op"`
	Task  sched.TaskID `json:"task,omitempty"`
	Class string       `json:"class,omitempty"`
	CPU   int          `json:"cpu,omitempty"`
	CPUs  []int        `json:"cpus,omitempty"`
}

// Response carries the outcome back to the CLI.
type Response struct {
	Err    string               `json:"err,omitempty"`
	Status *sched.Status        `json:"status,omitempty"`
	Stats  *sched.StatsSnapshot `json:"stats,omitempty"`
}

// Server serves a policy's control surface. One request per connection.
type Server struct {
	policy *sched.Policy
	ln     net.Listener
	path   string
}

// NewServer binds the control socket. Binding fails when another instance
// already holds it.
func NewServer(p *sched.Policy, path string) (*Server, error) {
	if path == "" {
		path = DefaultSocket
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("control socket %s: %w (is another instance running?)", path, err)
	}
	return &Server{policy: p, ln: ln, path: path}, nil
}

// Serve accepts control connections until Close is called.
func (s *Server) Serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

// Close stops accepting and removes the socket file.
func (s *Server) Close() {
	s.ln.Close()
	os.Remove(s.path)
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		logrus.WithError(err).Debug("bad control request")
		return
	}
	if err := json.NewEncoder(conn).Encode(s.apply(req)); err != nil {
		logrus.WithError(err).Debug("control reply failed")
	}
}

func (s *Server) apply(req Request) Response {
	reg := s.policy.Registry()
	switch req.Op {
	case "add":
		c, err := sched.ParseClass(req.Class)
		if err != nil {
			return errResponse(err)
		}
		if err := reg.SetPriority(req.Task, c); err != nil {
			return errResponse(err)
		}
	case "remove":
		reg.ClearPriority(req.Task)
	case "isolate":
		if err := reg.SetIsolated(req.CPUs...); err != nil {
			return errResponse(err)
		}
	case "clear-isolation":
		reg.ClearIsolation()
	case "pin":
		if err := reg.Pin(req.Task, req.CPU); err != nil {
			return errResponse(err)
		}
	case "unpin":
		reg.Unpin(req.Task)
	case "status":
		st := s.policy.Status()
		return Response{Status: &st}
	case "stats":
		sn := s.policy.Stats().Snapshot()
		return Response{Stats: &sn}
	default:
		return errResponse(fmt.Errorf("unknown op %q", req.Op))
	}
	return Response{}
}

func errResponse(err error) Response {
	return Response{Err: err.Error()}
}
