package ctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// Do sends one control request to a running scheduler and returns its reply.
func Do(path string, req Request) (Response, error) {
	if path == "" {
		path = DefaultSocket
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return Response{}, fmt.Errorf("scheduler is not running (start it first with: gamesched run): %w", err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, err
	}
	if resp.Err != "" {
		return resp, errors.New(resp.Err)
	}
	return resp, nil
}
