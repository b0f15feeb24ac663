package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"campustask-sync-server/internal/domain"
)

type SyncStateRepository interface {
	Get(userID, deviceID string) (*domain.DeviceSyncState, error)
	Upsert(state *domain.DeviceSyncState) error
	UpdateLastSync(userID, deviceID string, timestamp time.Time) error
}

type syncStateRepo struct {
	baseURL string
	client  *http.Client
}

func NewSyncStateRepository(baseURL string) SyncStateRepository {
	return &syncStateRepo{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *syncStateRepo) Get(userID, deviceID string) (*domain.DeviceSyncState, error) {
	docID := fmt.Sprintf("syncstate:%s:%s", userID, deviceID)
	url := fmt.Sprintf("%s/%s", r.baseURL, docID)

	resp, err := r.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &domain.DeviceSyncState{
			UserID:       userID,
			DeviceID:     deviceID,
			LastSyncTime: time.Time{},
			UpdatedAt:    time.Now(),
		}, nil
	}

	var state domain.DeviceSyncState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, err
	}

	return &state, nil
}

func (r *syncStateRepo) Upsert(state *domain.DeviceSyncState) error {
	docID := fmt.Sprintf("syncstate:%s:%s", state.UserID, state.DeviceID)

	doc := map[string]interface{}{
		"_id":            docID,
		"user_id":        state.UserID,
		"device_id":      state.DeviceID,
		"last_sync_time": state.LastSyncTime,
		"updated_at":     time.Now(),
	}

	url := fmt.Sprintf("%s/%s", r.baseURL, docID)
	resp, _ := r.client.Get(url)
	if resp != nil && resp.StatusCode == http.StatusOK {
		var existingDoc map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&existingDoc)
		if rev, ok := existingDoc["_rev"].(string); ok {
			doc["_rev"] = rev
		}
		resp.Body.Close()
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	putResp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer putResp.Body.Close()

	if putResp.StatusCode != http.StatusCreated && putResp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to upsert sync state: status %d", putResp.StatusCode)
	}

	return nil
}

func (r *syncStateRepo) UpdateLastSync(userID, deviceID string, timestamp time.Time) error {
	state, err := r.Get(userID, deviceID)
	if err != nil {
		return err
	}

	state.LastSyncTime = timestamp
	state.UpdatedAt = time.Now()

	return r.Upsert(state)
}
