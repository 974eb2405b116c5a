package arbiter

import (
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/policy"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"go.uber.org/zap"
)

// grant applies an admitted holder to the stacks it needs.
func (e *Engine) grant(h Holder) {
	if h.Resume {
		if h.NeedsAudio() {
			e.audio.push(h)
		}
		if h.NeedsDisplay() {
			e.display.push(h)
		}
		if h.NeedsTuner() {
			e.tuner.push(h)
		}
	} else {
		if h.NeedsAudio() {
			e.grantAudio(h)
		}
		if h.NeedsDisplay() {
			e.display.reset(h)
		}
		if h.NeedsTuner() {
			e.tuner.reset(h)
		}
	}

	e.demoteBackground()
	e.restoreBackground()
	e.sendReleases(h)
}

// grantAudio keeps a mixing top and the mixing holders under it, placing the
// new holder at the base; otherwise the new holder replaces the stack.
func (e *Engine) grantAudio(h Holder) {
	if e.audio.empty() || !e.audio.top().Mixing {
		e.audio.reset(h)
		return
	}
	kept := e.audio[:0]
	for _, held := range e.audio {
		if held.Mixing {
			kept = append(kept, held)
		}
	}
	e.audio = kept
	e.audio.insertFront(h)
}

// sendReleases asks every application in the ledger to release. With nothing
// to wait for, the granted holder is announced right away.
func (e *Engine) sendReleases(h Holder) {
	if !e.ledger.empty() {
		if h.Full {
			e.release(types.ResourceDisplay, policy.OverlayApp)
		}
		for _, entry := range e.ledger.entries {
			e.release(entry.resources, entry.app)
		}
		return
	}

	if h.Full {
		e.release(types.ResourceDisplay, policy.OverlayApp)
	} else if h.NeedsDisplay() {
		e.changed(policy.OverlayMode, policy.OverlayApp)
	}
	e.changed(h.Mode, h.App)
}

// demoteBackground walks the audio stack from the top while priorities do not
// increase. Holders that want the display but lost it to another application
// switch to their background variant, or give up audio when they have none.
func (e *Engine) demoteBackground() {
	if e.audio.empty() || e.display.empty() {
		return
	}
	front := e.display.top()
	priority := e.audio.top().Audio

	for i := len(e.audio) - 1; i >= 0; i-- {
		h := e.audio[i]
		if h.Audio < priority {
			break
		}
		priority = h.Audio

		if policy.IsBackground(h.Mode) || h.App == front.App || !h.NeedsDisplay() {
			continue
		}

		entry, err := e.table.Lookup(policy.BackgroundName(h.Mode), h.App)
		if err == nil {
			e.audio[i] = newHolder(entry, h.State)
			e.changed(entry.Mode, entry.App)
			e.logger.Debug("Holder moved to background", zap.String("mode", entry.Mode), zap.Int32("app", entry.App))
			continue
		}

		e.ledger.add(h.App, types.ResourceAudio)
		if !front.Resume {
			e.audio.removeAt(i)
		}
		e.logger.Debug("Holder has no background variant", zap.String("mode", h.Mode), zap.Int32("app", h.App))
	}
}

// restoreBackground brings a background holder back to the foreground when
// its application owns the display again and it is not outranked on audio.
func (e *Engine) restoreBackground() {
	if e.audio.empty() || e.display.empty() {
		return
	}

	for i := range e.audio {
		h := e.audio[i]
		if !policy.IsBackground(h.Mode) || h.App != e.display.top().App || h.Audio < e.audio.top().Audio {
			continue
		}

		entry, ok := e.lookup(policy.ForegroundName(h.Mode), h.App)
		if !ok {
			continue
		}
		restored := newHolder(entry, h.State)
		if !h.Resume {
			e.display.pop()
		}
		e.audio[i] = restored
		e.display.push(restored)
		e.logger.Debug("Holder restored from background", zap.String("mode", entry.Mode), zap.Int32("app", entry.App))
	}
}

// ReleaseDone records that app released resources. Once no release is
// outstanding the new owner of the acknowledged resource is announced.
func (e *Engine) ReleaseDone(resources types.Resource, app int32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ledger.remove(app, resources) {
		e.logger.Debug("Release acknowledgement with nothing pending",
			zap.Stringer("resources", resources), zap.Int32("app", app))
		return
	}
	e.updateGauges()
	if !e.ledger.empty() {
		return
	}

	switch {
	case resources.Has(types.ResourceDisplay):
		e.announceTop(e.display)
	case resources.Has(types.ResourceAudio):
		if e.audio.empty() {
			return
		}
		top := e.audio.top()
		e.announceTop(e.audio)
		if !e.display.empty() && e.display.top().App != top.App {
			e.changed(e.display.top().Mode, e.display.top().App)
		}
	case resources.Has(types.ResourceTuner):
		e.announceTop(e.tuner)
	}
}

// announceTop announces the top of s, preceded by the overlay when
// it shows on a shared display.
func (e *Engine) announceTop(s stack) {
	if s.empty() {
		return
	}
	top := s.top()
	if top.NeedsDisplay() && !top.Full {
		e.changed(policy.OverlayMode, policy.OverlayApp)
	}
	e.changed(top.Mode, top.App)
}
