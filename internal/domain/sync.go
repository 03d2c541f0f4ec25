package domain

import "time"

type ChangeKind string

const (
	ChangeAdd    ChangeKind = "add"
	ChangeUpdate ChangeKind = "update"
	ChangeRemove ChangeKind = "remove"
)

// PendingChange is a locally recorded mutation awaiting a successful remote
// replay. Attempts counts failed replays; the coordinator drops the change
// once the retry ceiling is reached.
type PendingChange struct {
	ID       string     `json:"id"`
	Kind     ChangeKind `json:"kind"`
	Item     LineItem   `json:"item"`
	QueuedAt time.Time  `json:"queued_at"`
	Attempts int        `json:"attempts"`
}

type SyncPhase string

const (
	PhaseUnauthenticated SyncPhase = "unauthenticated"
	PhaseSyncing         SyncPhase = "syncing"
	PhaseSynced          SyncPhase = "synced"
	PhaseDegraded        SyncPhase = "degraded"
)

// SyncStatus is the coordinator's outward view of its state. It is a value
// snapshot; the coordinator owns the live state exclusively.
type SyncStatus struct {
	Phase      SyncPhase  `json:"phase"`
	Online     bool       `json:"online"`
	LastSyncAt *time.Time `json:"last_sync_at"`
	Pending    int        `json:"pending"`
	Errors     []string   `json:"errors"`
}
