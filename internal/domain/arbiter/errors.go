package arbiter

import "errors"

var (
	// ErrAlreadyStarted is returned by Start when the worker is running.
	ErrAlreadyStarted = errors.New("arbiter: already started")

	// ErrNotRunning is returned by WaitIdle when no worker can drain the mailbox.
	ErrNotRunning = errors.New("arbiter: not running")
)
