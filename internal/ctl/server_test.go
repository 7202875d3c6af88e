package ctl

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamesched/internal/sched"
)

// nopHost satisfies sched.Host; control-surface tests never schedule.
type nopHost struct{}

func (nopHost) DefaultSelectCPU(*sched.Task, int, sched.WakeFlags) (int, bool) { return 0, false }
func (nopHost) TestAndClearIdle(int) bool                                      { return false }
func (nopHost) DispatchDirect(*sched.Task, int)                                {}

func startServer(t *testing.T) string {
	t.Helper()
	p, err := sched.New(sched.Config{MaxCPUs: 4, TickMS: 5, SliceTicks: 5, IsolationEnabled: true}, nopHost{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ctl.sock")
	srv, err := NewServer(p, path)
	require.NoError(t, err)
	go srv.Serve()
	t.Cleanup(srv.Close)
	return path
}

func TestServer_AddStatusRemoveRoundTrip(t *testing.T) {
	path := startServer(t)

	_, err := Do(path, Request{Op: "add", Task: 7, Class: "render"})
	require.NoError(t, err)

	resp, err := Do(path, Request{Op: "status"})
	require.NoError(t, err)
	require.NotNil(t, resp.Status)
	require.Len(t, resp.Status.Tasks, 1)
	assert.Equal(t, sched.TaskID(7), resp.Status.Tasks[0].ID)
	assert.Equal(t, "render", resp.Status.Tasks[0].Class)

	_, err = Do(path, Request{Op: "remove", Task: 7})
	require.NoError(t, err)

	resp, err = Do(path, Request{Op: "status"})
	require.NoError(t, err)
	assert.Empty(t, resp.Status.Tasks)
}

func TestServer_IsolatePinStats(t *testing.T) {
	path := startServer(t)

	_, err := Do(path, Request{Op: "isolate", CPUs: []int{2, 3}})
	require.NoError(t, err)
	_, err = Do(path, Request{Op: "pin", Task: 1, CPU: 2})
	require.NoError(t, err)

	resp, err := Do(path, Request{Op: "status"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, resp.Status.Isolated)
	require.Len(t, resp.Status.Tasks, 1)
	assert.Equal(t, 2, resp.Status.Tasks[0].PinnedCPU)

	resp, err = Do(path, Request{Op: "stats"})
	require.NoError(t, err)
	require.NotNil(t, resp.Stats)
	assert.Zero(t, resp.Stats.PriorityDispatches)
}

func TestServer_RejectsBadRequests(t *testing.T) {
	path := startServer(t)

	_, err := Do(path, Request{Op: "add", Task: 1, Class: "fast"})
	assert.ErrorContains(t, err, "render or other")

	_, err = Do(path, Request{Op: "isolate", CPUs: []int{4}})
	assert.ErrorContains(t, err, "out of range")

	_, err = Do(path, Request{Op: "bogus"})
	assert.ErrorContains(t, err, "unknown op")
}

func TestDo_NoServer(t *testing.T) {
	_, err := Do(filepath.Join(t.TempDir(), "nope.sock"), Request{Op: "status"})
	assert.ErrorContains(t, err, "not running")
}
