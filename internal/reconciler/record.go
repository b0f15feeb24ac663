package reconciler

import (
	"strings"

	"campustask-sync-server/internal/domain"

	"github.com/google/uuid"
)

// SyncState is the single mutation tag a local record carries. A record is
// either settled (synced) or waiting for exactly one kind of remote call,
// so combinations like create+delete cannot be represented.
type SyncState string

const (
	StateSynced              SyncState = "synced"
	StatePendingCreate       SyncState = "pending_create"
	StatePendingUpdate       SyncState = "pending_update"
	StatePendingDelete       SyncState = "pending_delete"
	StatePendingActivation   SyncState = "pending_activation"
	StatePendingDeactivation SyncState = "pending_deactivation"
)

// tempIDPrefix marks identifiers minted on a device while the server was
// unreachable. A record with such an ID must be in StatePendingCreate.
const tempIDPrefix = "local-"

func NewTempID() string {
	return tempIDPrefix + uuid.New().String()
}

func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

type TaskRecord struct {
	State SyncState   `json:"state"`
	Task  domain.Task `json:"task"`
}

type SlotRecord struct {
	State SyncState          `json:"state"`
	Slot  domain.RoutineSlot `json:"slot"`
}

// RoutineRecord keeps its slots as tagged records of their own; the
// embedded Routine's Slots field stays empty on the client and is only
// populated when building a server payload.
type RoutineRecord struct {
	State   SyncState      `json:"state"`
	Routine domain.Routine `json:"routine"`
	Slots   []*SlotRecord  `json:"slots"`
}

// serverPayload flattens the record into the shape the remote create call
// expects: slot records become plain slots, delete-marked slots are left
// out, and temporary identifiers are cleared so the server assigns durable
// ones.
func (r *RoutineRecord) serverPayload() *domain.Routine {
	routine := r.Routine
	routine.Slots = make([]domain.RoutineSlot, 0, len(r.Slots))
	for _, sr := range r.Slots {
		if sr.State == StatePendingDelete {
			continue
		}
		slot := sr.Slot
		if IsTempID(slot.ID) {
			slot.ID = ""
		}
		routine.Slots = append(routine.Slots, slot)
	}
	if IsTempID(routine.ID) {
		routine.ID = ""
	}
	return &routine
}

// FromServer rebuilds the record from a server response, marking everything
// synced.
func (r *RoutineRecord) FromServer(routine *domain.Routine) {
	slots := make([]*SlotRecord, 0, len(routine.Slots))
	for _, slot := range routine.Slots {
		slots = append(slots, &SlotRecord{State: StateSynced, Slot: slot})
	}

	r.Routine = *routine
	r.Routine.Slots = nil
	r.Slots = slots
	r.State = StateSynced
}
