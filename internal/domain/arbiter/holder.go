package arbiter

import (
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/policy"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
)

// TransitionState tags what the worker does with a published holder.
type TransitionState int

const (
	Granting TransitionState = iota
	Resuming
	Teardown
)

func (s TransitionState) String() string {
	switch s {
	case Granting:
		return "granting"
	case Resuming:
		return "resuming"
	case Teardown:
		return "teardown"
	default:
		return "unknown"
	}
}

// Holder is a runtime instance of a policy entry bound to an application.
type Holder struct {
	policy.Entry
	State TransitionState
}

func newHolder(e policy.Entry, state TransitionState) Holder {
	return Holder{Entry: e, State: state}
}

// same reports whether two holders are the same mode of the same application.
func (h Holder) same(o Holder) bool {
	return h.Mode == o.Mode && h.App == o.App
}

func (h Holder) view() types.HolderView {
	return types.HolderView{
		Mode:      h.Mode,
		App:       h.App,
		Audio:     h.Audio,
		Display:   h.Display,
		Tuner:     h.Tuner,
		Full:      h.Full,
		Resume:    h.Resume,
		Mixing:    h.Mixing,
		Exclusive: h.Exclusive,
		State:     h.State.String(),
	}
}
