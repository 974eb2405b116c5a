package types

// ModeRequest asks for a mode change or the end of a mode
type ModeRequest struct {
	Mode string `json:"mode" binding:"required"`
	App  int32  `json:"app"`
}

// ModeResult is the synchronous answer to a ChangeMode request
type ModeResult struct {
	Admitted bool `json:"admitted"`
}

// EndResult is the answer to an EndMode request
type EndResult struct {
	Accepted bool `json:"accepted"`
}

// ReleaseRequest acknowledges that an application released resources
type ReleaseRequest struct {
	Resources Resource `json:"resources" binding:"required"`
	App       int32    `json:"app"`
}

// HolderView is a read-only copy of one stack entry
type HolderView struct {
	Mode      string `json:"mode"`
	App       int32  `json:"app"`
	Audio     int32  `json:"audio"`
	Display   int32  `json:"display"`
	Tuner     int32  `json:"tuner"`
	Full      bool   `json:"full"`
	Resume    bool   `json:"resume"`
	Mixing    bool   `json:"mixing"`
	Exclusive int32  `json:"exclusive"`
	State     string `json:"state"`
}

// StateView is a read-only copy of the arbitration state
type StateView struct {
	Audio   []HolderView       `json:"audio"`
	Display []HolderView       `json:"display"`
	Tuner   []HolderView       `json:"tuner"`
	Pending *HolderView        `json:"pending,omitempty"`
	Ledger  map[int32]Resource `json:"ledger"`
}
