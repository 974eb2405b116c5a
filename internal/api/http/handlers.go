package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/policy"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultWaitTimeout bounds how long ?wait=true holds a change request open
const DefaultWaitTimeout = 5 * time.Second

// Engine is the arbitration surface the handlers drive
type Engine interface {
	RequestMode(mode string, app int32) bool
	EndMode(mode string, app int32) bool
	ReleaseDone(resources types.Resource, app int32)
	Suspend()
	Resume()
	Snapshot() types.StateView
	WaitIdle(ctx context.Context) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	engine      Engine
	table       *policy.Table
	logger      *logging.Logger
	waitTimeout time.Duration
}

// NewHandlers creates a new handler set
func NewHandlers(engine Engine, table *policy.Table, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		engine:      engine,
		table:       table,
		logger:      logger.Named("http"),
		waitTimeout: DefaultWaitTimeout,
	}
}

// Register mounts the mode API on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/state", h.State)
	r.GET("/policies", h.Policies)

	r.POST("/modes/change", h.ChangeMode)
	r.POST("/modes/end", h.EndMode)
	r.POST("/resources/release-done", h.ReleaseDone)
	r.POST("/system/suspend", h.Suspend)
	r.POST("/system/resume", h.Resume)
}

// Health handles liveness checks
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ChangeMode runs admission control for a mode request. With ?wait=true the
// response is held until the worker has committed the admitted command.
func (h *Handlers) ChangeMode(c *gin.Context) {
	var req types.ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admitted := h.engine.RequestMode(req.Mode, req.App)
	h.logger.Debug("Mode change requested",
		zap.String("mode", req.Mode),
		zap.Int32("app", req.App),
		zap.Bool("admitted", admitted))

	if admitted && wantsWait(c) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.waitTimeout)
		defer cancel()

		if err := h.engine.WaitIdle(ctx); err != nil {
			status := http.StatusServiceUnavailable
			if errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusGatewayTimeout
			}
			c.JSON(status, gin.H{
				"admitted": true,
				"error":    err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, types.ModeResult{Admitted: admitted})
}

// EndMode ends a held mode
func (h *Handlers) EndMode(c *gin.Context) {
	var req types.ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, types.EndResult{Accepted: h.engine.EndMode(req.Mode, req.App)})
}

// ReleaseDone records a release acknowledgement
func (h *Handlers) ReleaseDone(c *gin.Context) {
	var req types.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.engine.ReleaseDone(req.Resources, req.App)
	c.Status(http.StatusNoContent)
}

// Suspend clears every stack
func (h *Handlers) Suspend(c *gin.Context) {
	h.engine.Suspend()
	c.Status(http.StatusNoContent)
}

// Resume announces that the system resumed
func (h *Handlers) Resume(c *gin.Context) {
	h.engine.Resume()
	c.Status(http.StatusNoContent)
}

// State returns the arbitration snapshot
func (h *Handlers) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// Policies lists the loaded policy records
func (h *Handlers) Policies(c *gin.Context) {
	entries := h.table.Entries()
	c.JSON(http.StatusOK, gin.H{
		"policies":    entries,
		"count":       len(entries),
		"fingerprint": h.table.Fingerprint(),
	})
}

func wantsWait(c *gin.Context) bool {
	wait, err := strconv.ParseBool(c.DefaultQuery("wait", "false"))
	return err == nil && wait
}
