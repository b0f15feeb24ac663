package domain

import "time"

type ChangeKind string

const (
	ChangeKindTask    ChangeKind = "task"
	ChangeKindRoutine ChangeKind = "routine"
)

type Change struct {
	Kind      ChangeKind `json:"kind"`
	ID        string     `json:"id"`
	Operation string     `json:"operation"`
	Version   int64      `json:"version"`
	Task      *Task      `json:"task,omitempty"`
	Routine   *Routine   `json:"routine,omitempty"`
}

type ChangesResponse struct {
	Changes  []*Change `json:"changes"`
	SyncTime time.Time `json:"sync_time"`
}

// DeviceSyncState tracks how far a given device has caught up with the
// change feed. One document per user+device pair.
type DeviceSyncState struct {
	UserID       string    `json:"user_id"`
	DeviceID     string    `json:"device_id"`
	LastSyncTime time.Time `json:"last_sync_time"`
	UpdatedAt    time.Time `json:"updated_at"`
}
