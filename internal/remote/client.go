package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"campustask-sync-server/internal/domain"
)

// Client talks to the sync server's REST API. It satisfies the
// reconciler's Remote and Connectivity interfaces.
type Client struct {
	baseURL      string
	deviceID     string
	token        string
	probeTimeout time.Duration
	httpClient   *http.Client
}

func NewClient(baseURL, deviceID string, probeTimeout time.Duration) *Client {
	return &Client{
		baseURL:      baseURL,
		deviceID:     deviceID,
		probeTimeout: probeTimeout,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken sets the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Online probes the server's health endpoint. Any response counts as
// reachable; only transport failures mean offline.
func (c *Client) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-ID", c.deviceID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		if env.Error != "" {
			return fmt.Errorf("server rejected %s %s: %s", method, path, env.Error)
		}
		return fmt.Errorf("server rejected %s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) Register(ctx context.Context, req *domain.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/register", req, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", &domain.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	var resp domain.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", &domain.RefreshTokenRequest{
		RefreshToken: refreshToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	var created domain.Task
	err := c.do(ctx, http.MethodPost, "/api/v1/tasks", &domain.CreateTaskRequest{
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		DueDate:     task.DueDate,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	var updated domain.Task
	err := c.do(ctx, http.MethodPut, "/api/v1/tasks/"+url.PathEscape(task.ID), &domain.UpdateTaskRequest{
		Title:       &task.Title,
		Description: &task.Description,
		Category:    &task.Category,
		DueDate:     task.DueDate,
		Completed:   &task.Completed,
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateRoutine(ctx context.Context, routine *domain.Routine) (*domain.Routine, error) {
	req := &domain.CreateRoutineRequest{
		Title:    routine.Title,
		Semester: routine.Semester,
		Slots:    make([]domain.CreateSlotRequest, 0, len(routine.Slots)),
	}
	for _, slot := range routine.Slots {
		req.Slots = append(req.Slots, domain.CreateSlotRequest{
			DayOfWeek:   slot.DayOfWeek,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			CourseTitle: slot.CourseTitle,
			TeacherName: slot.TeacherName,
			RoomNumber:  slot.RoomNumber,
		})
	}

	var created domain.Routine
	if err := c.do(ctx, http.MethodPost, "/api/v1/routines", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateRoutine(ctx context.Context, routine *domain.Routine) (*domain.Routine, error) {
	var updated domain.Routine
	err := c.do(ctx, http.MethodPut, "/api/v1/routines/"+url.PathEscape(routine.ID), &domain.UpdateRoutineRequest{
		Title:    &routine.Title,
		Semester: &routine.Semester,
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteRoutine(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/routines/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ActivateRoutine(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/routines/"+url.PathEscape(id)+"/activate", nil, nil)
}

func (c *Client) DeactivateRoutine(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/routines/"+url.PathEscape(id)+"/deactivate", nil, nil)
}

func (c *Client) ListRoutines(ctx context.Context) ([]*domain.Routine, error) {
	var routines []*domain.Routine
	if err := c.do(ctx, http.MethodGet, "/api/v1/routines", nil, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

func (c *Client) CreateSlot(ctx context.Context, routineID string, slot *domain.RoutineSlot) (*domain.RoutineSlot, error) {
	var created domain.RoutineSlot
	err := c.do(ctx, http.MethodPost, "/api/v1/routines/"+url.PathEscape(routineID)+"/slots", &domain.CreateSlotRequest{
		DayOfWeek:   slot.DayOfWeek,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		CourseTitle: slot.CourseTitle,
		TeacherName: slot.TeacherName,
		RoomNumber:  slot.RoomNumber,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateSlot(ctx context.Context, routineID string, slot *domain.RoutineSlot) (*domain.RoutineSlot, error) {
	var updated domain.RoutineSlot
	path := "/api/v1/routines/" + url.PathEscape(routineID) + "/slots/" + url.PathEscape(slot.ID)
	err := c.do(ctx, http.MethodPut, path, &domain.UpdateSlotRequest{
		DayOfWeek:   &slot.DayOfWeek,
		StartTime:   &slot.StartTime,
		EndTime:     &slot.EndTime,
		CourseTitle: &slot.CourseTitle,
		TeacherName: &slot.TeacherName,
		RoomNumber:  &slot.RoomNumber,
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteSlot(ctx context.Context, routineID, slotID string) error {
	path := "/api/v1/routines/" + url.PathEscape(routineID) + "/slots/" + url.PathEscape(slotID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Changes fetches the server-side change feed since the given time.
func (c *Client) Changes(ctx context.Context, since time.Time) (*domain.ChangesResponse, error) {
	path := "/api/v1/sync/changes?since=" + url.QueryEscape(since.Format(time.RFC3339)) +
		"&device_id=" + url.QueryEscape(c.deviceID)

	var resp domain.ChangesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
