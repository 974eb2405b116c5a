package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func observedTracer(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("test", &logging.Logger{Logger: zap.New(core)})
	t.Cleanup(tracer.Close)
	return tracer, logs
}

func waitForLogs(t *testing.T, logs *observer.ObservedLogs, n int) []observer.LoggedEntry {
	t.Helper()
	require.Eventually(t, func() bool { return logs.Len() >= n }, 2*time.Second, 5*time.Millisecond)
	return logs.All()
}

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer, _ := observedTracer(t)

	parent, ctx := tracer.StartSpan(context.Background(), "parent")
	child, _ := tracer.StartSpan(ctx, "child")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.Empty(t, parent.ParentID)
	assert.Equal(t, parent.TraceID, GetTraceID(ctx))
}

func TestSubmitLogsSpans(t *testing.T) {
	tracer, logs := observedTracer(t)

	span, _ := tracer.StartSpan(context.Background(), "ok")
	span.Finish()
	tracer.Submit(span)

	failed, _ := tracer.StartSpan(context.Background(), "failed")
	failed.SetError(errors.New("boom"))
	failed.Finish()
	tracer.Submit(failed)

	entries := waitForLogs(t, logs, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "failed", entries[1].ContextMap()["operation"])
}

func TestSubmitAfterClose(t *testing.T) {
	tracer, _ := observedTracer(t)
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	assert.NotPanics(t, func() { tracer.Submit(span) })
}

func TestHTTPMiddlewarePropagatesHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := observedTracer(t)

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/state", func(c *gin.Context) {
		assert.Equal(t, TraceID("req_incoming"), GetTraceID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set(TraceHeader, "req_incoming")
	req.Header.Set(SpanHeader, "req_parent")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req_incoming", rec.Header().Get(TraceHeader))
	assert.NotEmpty(t, rec.Header().Get(SpanHeader))

	entry := waitForLogs(t, logs, 1)[0]
	assert.Equal(t, "GET /state", entry.ContextMap()["operation"])
	assert.Equal(t, "req_parent", entry.ContextMap()["parent_id"])
}

func TestGRPCUnaryInterceptorReadsMetadata(t *testing.T) {
	tracer, logs := observedTracer(t)
	interceptor := GRPCUnaryInterceptor(tracer)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-trace-id", "req_remote"))
	info := &grpc.UnaryServerInfo{FullMethod: "/modemanager.ModeManager/ChangeMode"}

	resp, err := interceptor(ctx, nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return GetTraceID(ctx), nil
	})
	require.NoError(t, err)
	assert.Equal(t, TraceID("req_remote"), resp)

	entry := waitForLogs(t, logs, 1)[0]
	assert.Equal(t, info.FullMethod, entry.ContextMap()["operation"])
}
