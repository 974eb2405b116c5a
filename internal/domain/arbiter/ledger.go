package arbiter

import "github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"

type ledgerEntry struct {
	app       int32
	resources types.Resource
}

// ledger tracks, per application, the resources it was asked to release and
// has not yet acknowledged. Entries keep first-insertion order so release
// notifications go out in the order preemptions were decided.
type ledger struct {
	entries []ledgerEntry
}

func (l *ledger) add(app int32, r types.Resource) {
	for i := range l.entries {
		if l.entries[i].app == app {
			l.entries[i].resources |= r
			return
		}
	}
	l.entries = append(l.entries, ledgerEntry{app: app, resources: r})
}

// remove clears the acknowledged bits of app and drops the entry once no bit
// is left. It reports whether any bit was cleared.
func (l *ledger) remove(app int32, r types.Resource) bool {
	for i := range l.entries {
		if l.entries[i].app != app {
			continue
		}
		cleared := l.entries[i].resources & r
		l.entries[i].resources &^= cleared
		if l.entries[i].resources == types.ResourceNone {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
		}
		return cleared != types.ResourceNone
	}
	return false
}

func (l *ledger) pending(app int32) types.Resource {
	for _, e := range l.entries {
		if e.app == app {
			return e.resources
		}
	}
	return types.ResourceNone
}

func (l *ledger) empty() bool { return len(l.entries) == 0 }

func (l *ledger) len() int { return len(l.entries) }

func (l *ledger) clear() { l.entries = l.entries[:0] }

// merge adds every entry of o, keeping o's order for applications not yet
// present.
func (l *ledger) merge(o ledger) {
	for _, entry := range o.entries {
		l.add(entry.app, entry.resources)
	}
}

func (l *ledger) toMap() map[int32]types.Resource {
	out := make(map[int32]types.Resource, len(l.entries))
	for _, e := range l.entries {
		out[e.app] = e.resources
	}
	return out
}
