package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeSyncRequest   MessageType = "sync_request"
	TypeSyncResponse  MessageType = "sync_response"
	TypeTaskUpdate    MessageType = "task_update"
	TypeTaskDelete    MessageType = "task_delete"
	TypeRoutineUpdate MessageType = "routine_update"
	TypeRoutineDelete MessageType = "routine_delete"
	TypeAck           MessageType = "ack"
	TypePing          MessageType = "ping"
	TypePong          MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type SyncRequestPayload struct {
	DeviceID     string    `json:"device_id"`
	LastSyncTime time.Time `json:"last_sync_time"`
}

type SyncResponsePayload struct {
	Changes  []RecordChange `json:"changes"`
	SyncTime time.Time      `json:"sync_time"`
}

type RecordChange struct {
	Kind      string          `json:"kind"`
	RecordID  string          `json:"record_id"`
	Operation string          `json:"operation"`
	Version   int64           `json:"version"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type TaskUpdatePayload struct {
	TaskID    string    `json:"task_id"`
	Version   int64     `json:"version"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
	DeviceID  string    `json:"device_id"`
}

type TaskDeletePayload struct {
	TaskID   string `json:"task_id"`
	Version  int64  `json:"version"`
	DeviceID string `json:"device_id"`
}

type RoutineUpdatePayload struct {
	RoutineID string    `json:"routine_id"`
	Version   int64     `json:"version"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"is_active"`
	SlotCount int       `json:"slot_count"`
	UpdatedAt time.Time `json:"updated_at"`
	DeviceID  string    `json:"device_id"`
}

type RoutineDeletePayload struct {
	RoutineID string `json:"routine_id"`
	Version   int64  `json:"version"`
	DeviceID  string `json:"device_id"`
}

type AckPayload struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
