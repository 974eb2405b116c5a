package arbiter

import "github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/id"

// command is an admitted request waiting for the worker. releases holds the
// preemptions it decided; they reach the engine ledger only when the command
// is applied, so an overwritten command leaves nothing behind.
type command struct {
	id       id.CommandID
	holder   Holder
	releases ledger
}

// mailbox is the single pending command slot. It has no lock of its own; the
// engine mutex guards it.
type mailbox struct {
	pending    *command
	overwrites uint64
}

// publish stores cmd and reports whether it replaced an unprocessed command.
func (m *mailbox) publish(cmd command) bool {
	overwrote := m.pending != nil
	if overwrote {
		m.overwrites++
	}
	m.pending = &cmd
	return overwrote
}

func (m *mailbox) occupied() bool { return m.pending != nil }

func (m *mailbox) clear() { m.pending = nil }
