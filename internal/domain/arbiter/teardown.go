package arbiter

import (
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/policy"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"go.uber.org/zap"
)

// EndMode reports that app finished mode. The end is acknowledged at once and
// the holder is removed by the worker. A mode held only in its background
// variant is ended through that variant.
func (e *Engine) EndMode(mode string, app int32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	target := mode
	found := false
	bg := policy.BackgroundName(mode)
	for _, h := range e.audio {
		if h.App != app {
			continue
		}
		if h.Mode == mode {
			found = true
			break
		}
		if h.Mode == bg {
			target, found = bg, true
			break
		}
	}
	if !found {
		for _, h := range e.display {
			if h.App == app && h.Mode == mode {
				found = true
				break
			}
		}
	}
	if !found {
		for _, h := range e.tuner {
			if h.App == app && h.Mode == mode {
				found = true
				break
			}
		}
	}
	if !found {
		e.logger.Warn("End request for mode not held", zap.String("mode", mode), zap.Int32("app", app))
		return false
	}

	entry, ok := e.lookup(target, app)
	if !ok {
		return false
	}

	e.notifier.ModeEnded(mode, app)

	cmd := command{id: id.NewCommandID(), holder: newHolder(entry, Resuming)}
	if e.box.publish(cmd) {
		e.metrics.IncMailboxOverwrites()
	}
	e.wake.Signal()
	return true
}

// endMode removes one holder from every stack it occupies.
func (e *Engine) endMode(h Holder) {
	var resumeAudio, resumeDisplay, resumeTuner, insertHome bool

	if i := e.audio.indexOf(h); i >= 0 {
		resumeAudio = i == len(e.audio)-1 && len(e.audio) > 1
		e.audio.removeAt(i)
	}
	if i := e.display.indexOf(h); i >= 0 {
		resumeDisplay = i == len(e.display)-1 && len(e.display) > 1
		insertHome = i == 0
		e.display.removeAt(i)
	}
	if i := e.tuner.indexOf(h); i >= 0 {
		resumeTuner = i == len(e.tuner)-1 && len(e.tuner) > 1
		e.tuner.removeAt(i)
	}

	e.finishTeardown(resumeAudio, resumeDisplay, resumeTuner, insertHome)
}

// shutdown removes every holder of the application.
func (e *Engine) shutdown(h Holder) {
	audioTop, _ := e.audio.removeApp(h.App)
	resumeAudio := audioTop && len(e.audio) > 0

	displayTop, insertHome := e.display.removeApp(h.App)
	resumeDisplay := displayTop && len(e.display) > 0

	tunerTop, _ := e.tuner.removeApp(h.App)
	resumeTuner := tunerTop && len(e.tuner) > 0

	e.logger.Debug("Application torn down", zap.Int32("app", h.App))
	e.finishTeardown(resumeAudio, resumeDisplay, resumeTuner, insertHome)
}

// finishTeardown reinserts the default holder when the display lost its
// bottom, settles background holders, and announces what became visible.
// Outstanding releases are dropped without notification.
func (e *Engine) finishTeardown(resumeAudio, resumeDisplay, resumeTuner, insertHome bool) {
	if insertHome {
		if e.display.empty() {
			resumeDisplay = true
		}
		if entry, ok := e.lookup(policy.DefaultMode, policy.DefaultApp); ok {
			e.display.insertFront(newHolder(entry, Granting))
		}
	}

	e.demoteBackground()
	e.restoreBackground()

	resumeAudio = resumeAudio && !e.audio.empty()
	resumeDisplay = resumeDisplay && !e.display.empty()

	switch {
	case resumeAudio && resumeDisplay:
		if top := e.audio.top(); top.App != e.display.top().App {
			e.changed(top.Mode, top.App)
		}
		e.announceDisplay()
	case resumeAudio:
		top := e.audio.top()
		e.changed(top.Mode, top.App)
	case resumeDisplay:
		e.announceDisplay()
	}

	// The tuner top is announced unless it was just announced for audio or display.
	if resumeTuner && !e.tuner.empty() {
		top := e.tuner.top()
		shown := (resumeAudio && e.audio.top().same(top)) || (resumeDisplay && e.display.top().same(top))
		if !shown {
			e.changed(top.Mode, top.App)
		}
	}

	e.ledger.clear()
}

// Suspend drops all arbitration state. Applications re-request their modes
// after Resume.
func (e *Engine) Suspend() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.box.clear()
	e.ledger.clear()
	if !e.display.empty() && !e.display.top().Full {
		e.release(types.ResourceDisplay, policy.OverlayApp)
	}
	e.audio.clear()
	e.display.clear()
	e.tuner.clear()
	e.notifier.Suspended()

	e.logger.Info("System suspended")
	e.updateGauges()
	e.idle.Broadcast()
}

// Resume announces that the system is back. State is not repopulated.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.notifier.Resumed()
	e.logger.Info("System resumed")
}
