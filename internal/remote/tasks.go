package remote

import (
	"context"
	"fmt"
	"time"
)

// TaskRecord is a task as exposed by the remote service.
type TaskRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	IsArchived  bool   `json:"is_archived"`
	DueDate     string `json:"due_date"`
}

// CreateRequest is the body of POST /tasks. The service does not accept
// status or archive flags at creation; those are carried by a follow-up
// patch.
type CreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// TaskPatch is the body of PATCH /tasks/{id}. Nil fields are omitted.
type TaskPatch struct {
	Status      *string `json:"status,omitempty"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ErrorResponse is the service's error envelope.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// CreateTask registers a new task with the service and returns the
// server-assigned record.
func (c *Client) CreateTask(ctx context.Context, req CreateRequest) (TaskRecord, error) {
	var rec TaskRecord
	if err := c.post(ctx, "/tasks", req, &rec); err != nil {
		return TaskRecord{}, fmt.Errorf("creating remote task: %w", err)
	}
	return rec, nil
}

// PatchTask applies a partial update to a remote task.
func (c *Client) PatchTask(ctx context.Context, id string, patch TaskPatch) error {
	if err := c.patch(ctx, "/tasks/"+id, patch, nil); err != nil {
		return fmt.Errorf("patching remote task %s: %w", id, err)
	}
	return nil
}

// DeleteTask removes a remote task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.delete(ctx, "/tasks/"+id); err != nil {
		return fmt.Errorf("deleting remote task %s: %w", id, err)
	}
	return nil
}

// ListTasks fetches the active/pending partition of the remote task set.
func (c *Client) ListTasks(ctx context.Context) ([]TaskRecord, error) {
	var recs []TaskRecord
	if err := c.get(ctx, "/tasks", &recs); err != nil {
		return nil, fmt.Errorf("listing remote tasks: %w", err)
	}
	return recs, nil
}

// ListArchive fetches the archived partition of the remote task set.
func (c *Client) ListArchive(ctx context.Context) ([]TaskRecord, error) {
	var recs []TaskRecord
	if err := c.get(ctx, "/tasks/archive", &recs); err != nil {
		return nil, fmt.Errorf("listing remote archive: %w", err)
	}
	return recs, nil
}

// ParseDueDate normalizes the service's due_date into an instant. The
// service emits naive UTC date-times, so a "Z" suffix is appended when no
// zone designator is present.
func ParseDueDate(due string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, due); err == nil {
		return t, nil
	}
	// Naive date-time from the service: treat as UTC.
	t, err := time.Parse(time.RFC3339, due+"Z")
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing due_date %q: %w", due, err)
	}
	return t, nil
}

// FormatDueDate renders an instant as the naive UTC date-time the service
// expects for due_date fields.
func FormatDueDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05")
}
