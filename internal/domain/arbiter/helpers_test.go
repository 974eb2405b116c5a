package arbiter

import (
	"fmt"
	"sync"
	"testing"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/policy"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"github.com/stretchr/testify/require"
)

// recorder captures outbound signals as short strings
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) ModeChanged(mode string, app int32) { r.add("changed %s@%d", mode, app) }
func (r *recorder) ReleaseResource(res types.Resource, app int32) {
	r.add("release %s@%d", res, app)
}
func (r *recorder) ModeEnded(mode string, app int32) { r.add("ended %s@%d", mode, app) }
func (r *recorder) Suspended()                       { r.add("suspended") }
func (r *recorder) Resumed()                         { r.add("resumed") }

// take returns and forgets the recorded events
func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func testPolicies() []policy.Entry {
	return []policy.Entry{
		{Mode: "home", App: 0, Display: 1},
		{Mode: "idle", App: -1},
		{Mode: "radio", App: 2, Audio: 2, Tuner: 1},
		{Mode: "video", App: 3, Audio: 3, Display: 3, Full: true, Resume: true},
		{Mode: "videobg", App: 3, Audio: 3},
		{Mode: "navi", App: 4, Audio: 4, Display: 2, Mixing: true},
		{Mode: "guide", App: 7, Audio: 5, Mixing: true},
		{Mode: "call", App: 5, Audio: 9, Display: 9},
		{Mode: "alert", App: 6, Audio: 1, Display: 9},
		{Mode: "camera", App: 8, Display: 5, Full: true, Resume: true},
		{Mode: "alarm", App: 9, Display: 6, Full: true},
		{Mode: "phone", App: 1, Audio: 1, Exclusive: 5},
		{Mode: "carplay", App: 4, Display: 1, Exclusive: 5},
		{Mode: "scan", App: 10, Tuner: 2, Resume: true},
	}
}

func newTestEngine(t *testing.T) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	return New(policy.New(testPolicies()), rec, nil), rec
}

// step runs the pending command on the calling goroutine
func step(e *Engine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.process()
}

// mustGrant admits and applies a request, discarding the signals it produced
func mustGrant(t *testing.T, e *Engine, rec *recorder, mode string, app int32) {
	t.Helper()
	require.True(t, e.RequestMode(mode, app), "%s@%d should be admitted", mode, app)
	step(e)
	rec.take()
}

func modes(holders []types.HolderView) []string {
	out := make([]string, len(holders))
	for i, h := range holders {
		out[i] = fmt.Sprintf("%s@%d", h.Mode, h.App)
	}
	return out
}
