package arbiter

import (
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/policy"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"go.uber.org/zap"
)

// RequestMode decides whether app may enter mode now. An admitted request is
// published to the worker; a rejected one leaves no trace. Requesting the
// idle mode tears down everything the application holds.
func (e *Engine) RequestMode(mode string, app int32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	admitted := e.admit(mode, app)
	e.metrics.RecordAdmission(admitted)
	return admitted
}

func (e *Engine) admit(mode string, app int32) bool {
	var candidate Holder

	if mode == policy.IdleMode {
		if !e.audio.holds(app) && !e.display.holds(app) {
			e.logger.Warn("Idle request from application holding nothing", zap.Int32("app", app))
			return false
		}
		entry, ok := e.lookup(policy.IdleMode, policy.IdleApp)
		if !ok {
			return false
		}
		entry.App = app
		candidate = newHolder(entry, Teardown)
	} else {
		entry, ok := e.lookup(mode, app)
		if !ok {
			return false
		}
		candidate = newHolder(entry, Granting)
	}

	if candidate.Exclusive != 0 && !e.exclusiveFree(candidate) {
		e.logger.Info("Mode request rejected by exclusive group",
			zap.String("mode", candidate.Mode),
			zap.Int32("app", candidate.App),
			zap.Int32("group", candidate.Exclusive))
		return false
	}

	var releases ledger

	audioOK, displayOK, tunerOK := true, true, true
	if candidate.NeedsAudio() {
		audioOK = e.checkAudio(candidate, &releases)
	}
	if candidate.NeedsDisplay() {
		displayOK = e.checkDisplay(candidate, &releases)
	}
	if candidate.NeedsTuner() {
		tunerOK = e.checkTuner(candidate, &releases)
	}

	// Audio won but the display is taken: keep playing in the background.
	if candidate.NeedsAudio() && audioOK && !displayOK {
		entry, ok := e.lookup(policy.BackgroundName(candidate.Mode), candidate.App)
		if !ok {
			return false
		}
		candidate = newHolder(entry, Granting)
		displayOK = true
		if e.audio.indexOf(candidate) >= 0 {
			e.logger.Info("Background variant already held",
				zap.String("mode", candidate.Mode),
				zap.Int32("app", candidate.App))
			return false
		}
	}

	admitted := audioOK && displayOK && tunerOK
	e.logger.Info("Mode request",
		zap.String("mode", candidate.Mode),
		zap.Int32("app", candidate.App),
		zap.Bool("admitted", admitted))
	if !admitted {
		return false
	}

	cmd := command{id: id.NewCommandID(), holder: candidate, releases: releases}
	if e.box.publish(cmd) {
		e.metrics.IncMailboxOverwrites()
		e.logger.Debug("Pending command overwritten", zap.String("command_id", cmd.id.String()))
	}
	e.updateGauges()
	e.wake.Signal()
	return true
}

// exclusiveFree reports whether no audio or display holder shares the
// candidate's exclusive group.
func (e *Engine) exclusiveFree(c Holder) bool {
	for _, s := range []stack{e.audio, e.display} {
		for _, h := range s {
			if h.Exclusive == c.Exclusive {
				return false
			}
		}
	}
	return true
}

// checkAudio admits a candidate whose priority is at least the top's. A
// non-mixing candidate preempts the lower mixing holders above the first
// non-mixing holder of another application, and that holder too.
func (e *Engine) checkAudio(c Holder, releases *ledger) bool {
	if e.audio.indexOf(c) >= 0 {
		return false
	}
	if e.audio.empty() {
		return true
	}
	if e.audio.top().Audio > c.Audio {
		return false
	}
	if c.Mixing {
		return true
	}

	for i := len(e.audio) - 1; i >= 0; i-- {
		h := e.audio[i]
		if h.Mixing {
			if h.App != c.App && h.Audio < c.Audio {
				releases.add(h.App, types.ResourceAudio)
			}
			continue
		}
		if h.App != c.App {
			releases.add(h.App, types.ResourceAudio)
			break
		}
	}
	return true
}

func (e *Engine) checkDisplay(c Holder, releases *ledger) bool {
	return checkSingleOwner(e.display, c, c.Display, func(h Holder) int32 { return h.Display },
		types.ResourceDisplay, releases)
}

func (e *Engine) checkTuner(c Holder, releases *ledger) bool {
	return checkSingleOwner(e.tuner, c, c.Tuner, func(h Holder) int32 { return h.Tuner },
		types.ResourceTuner, releases)
}

// checkSingleOwner admits a candidate whose priority is at least the top's
// and queues the top for release unless it belongs to the same application.
func checkSingleOwner(s stack, c Holder, priority int32, prio func(Holder) int32, r types.Resource, releases *ledger) bool {
	if s.empty() {
		return true
	}
	top := s.top()
	if top.same(c) || prio(top) > priority {
		return false
	}
	if top.App != c.App {
		releases.add(top.App, r)
	}
	return true
}
