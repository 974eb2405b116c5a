package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/arbiter"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/policy"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu       sync.Mutex
	admit    bool
	accept   bool
	waitErr  error
	calls    []string
	released types.Resource
}

func (f *fakeEngine) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeEngine) RequestMode(mode string, app int32) bool {
	f.record("request " + mode)
	return f.admit
}

func (f *fakeEngine) EndMode(mode string, app int32) bool {
	f.record("end " + mode)
	return f.accept
}

func (f *fakeEngine) ReleaseDone(resources types.Resource, app int32) {
	f.record("release-done")
	f.released = resources
}

func (f *fakeEngine) Suspend() { f.record("suspend") }
func (f *fakeEngine) Resume()  { f.record("resume") }

func (f *fakeEngine) Snapshot() types.StateView {
	return types.StateView{
		Audio:  []types.HolderView{{Mode: "radio", App: 2, Audio: 3, State: "granting"}},
		Ledger: map[int32]types.Resource{2: types.ResourceAudio},
	}
}

func (f *fakeEngine) WaitIdle(ctx context.Context) error {
	f.record("wait")
	return f.waitErr
}

func testTable() *policy.Table {
	return policy.New([]policy.Entry{
		{Mode: policy.DefaultMode, App: policy.DefaultApp, Audio: 1, Display: 1, Resume: true},
		{Mode: "radio", App: 2, Audio: 3, Display: 2, Tuner: 3, Resume: true},
		{Mode: "video", App: 3, Audio: 4, Display: 4, Full: true, Resume: true},
	})
}

func newRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h.Register(router)
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	router := newRouter(NewHandlers(&fakeEngine{}, testTable(), nil))

	rec := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChangeMode(t *testing.T) {
	engine := &fakeEngine{admit: true}
	router := newRouter(NewHandlers(engine, testTable(), nil))

	rec := do(router, http.MethodPost, "/modes/change", `{"mode":"radio","app":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result types.ModeResult
	decode(t, rec, &result)
	assert.True(t, result.Admitted)
	assert.Equal(t, []string{"request radio"}, engine.calls)
}

func TestChangeModeRejectsInvalidBody(t *testing.T) {
	engine := &fakeEngine{}
	router := newRouter(NewHandlers(engine, testTable(), nil))

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/modes/change", `{"app":2}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/modes/change", `not json`).Code)
	assert.Empty(t, engine.calls)
}

func TestChangeModeWait(t *testing.T) {
	engine := &fakeEngine{admit: true}
	router := newRouter(NewHandlers(engine, testTable(), nil))

	rec := do(router, http.MethodPost, "/modes/change?wait=true", `{"mode":"radio","app":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"request radio", "wait"}, engine.calls)
}

func TestChangeModeWaitSkippedWhenRejected(t *testing.T) {
	engine := &fakeEngine{admit: false}
	router := newRouter(NewHandlers(engine, testTable(), nil))

	rec := do(router, http.MethodPost, "/modes/change?wait=true", `{"mode":"radio","app":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"admitted":false}`, rec.Body.String())
	assert.Equal(t, []string{"request radio"}, engine.calls)
}

func TestChangeModeWaitFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"stopped", arbiter.ErrNotRunning, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(NewHandlers(&fakeEngine{admit: true, waitErr: tt.err}, testTable(), nil))

			rec := do(router, http.MethodPost, "/modes/change?wait=1", `{"mode":"radio","app":2}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"admitted":true`)
		})
	}
}

func TestEndMode(t *testing.T) {
	engine := &fakeEngine{accept: true}
	router := newRouter(NewHandlers(engine, testTable(), nil))

	rec := do(router, http.MethodPost, "/modes/end", `{"mode":"video","app":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accepted":true}`, rec.Body.String())
}

func TestReleaseDone(t *testing.T) {
	engine := &fakeEngine{}
	router := newRouter(NewHandlers(engine, testTable(), nil))

	rec := do(router, http.MethodPost, "/resources/release-done", `{"resources":3,"app":2}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, types.ResourceDisplay|types.ResourceAudio, engine.released)

	rec = do(router, http.MethodPost, "/resources/release-done", `{"app":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuspendResume(t *testing.T) {
	engine := &fakeEngine{}
	router := newRouter(NewHandlers(engine, testTable(), nil))

	assert.Equal(t, http.StatusNoContent, do(router, http.MethodPost, "/system/suspend", "").Code)
	assert.Equal(t, http.StatusNoContent, do(router, http.MethodPost, "/system/resume", "").Code)
	assert.Equal(t, []string{"suspend", "resume"}, engine.calls)
}

func TestState(t *testing.T) {
	router := newRouter(NewHandlers(&fakeEngine{}, testTable(), nil))

	rec := do(router, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state types.StateView
	decode(t, rec, &state)
	require.Len(t, state.Audio, 1)
	assert.Equal(t, "radio", state.Audio[0].Mode)
	assert.Equal(t, types.ResourceAudio, state.Ledger[2])
}

func TestPolicies(t *testing.T) {
	router := newRouter(NewHandlers(&fakeEngine{}, testTable(), nil))

	rec := do(router, http.MethodGet, "/policies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Policies    []policy.Entry `json:"policies"`
		Count       int            `json:"count"`
		Fingerprint string         `json:"fingerprint"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "video", body.Policies[2].Mode)
	assert.True(t, body.Policies[2].Full)
	assert.Equal(t, testTable().Fingerprint(), body.Fingerprint)
}

func TestChangeModeAgainstEngine(t *testing.T) {
	engine := arbiter.New(testTable(), nil, nil)
	require.NoError(t, engine.Start())
	defer engine.Stop()

	router := newRouter(NewHandlers(engine, testTable(), nil))

	for _, body := range []string{`{"mode":"home","app":0}`, `{"mode":"radio","app":2}`} {
		rec := do(router, http.MethodPost, "/modes/change?wait=true", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"admitted":true}`, rec.Body.String())
	}

	require.Eventually(t, func() bool {
		state := engine.Snapshot()
		return len(state.Audio) > 0 && state.Audio[len(state.Audio)-1].Mode == "radio"
	}, time.Second, 10*time.Millisecond)
}
