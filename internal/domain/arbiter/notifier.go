package arbiter

import "github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"

// Notifier receives the outbound signals of the engine. Calls are made with
// the engine lock held, so implementations must return quickly and must not
// call back into the engine.
type Notifier interface {
	ModeChanged(mode string, app int32)
	ReleaseResource(resources types.Resource, app int32)
	ModeEnded(mode string, app int32)
	Suspended()
	Resumed()
}

type nopNotifier struct{}

func (nopNotifier) ModeChanged(string, int32)             {}
func (nopNotifier) ReleaseResource(types.Resource, int32) {}
func (nopNotifier) ModeEnded(string, int32)               {}
func (nopNotifier) Suspended()                            {}
func (nopNotifier) Resumed()                              {}
