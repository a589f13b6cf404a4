package upstream

import (
	"context"
	"net/url"
	"time"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
)

const (
	lessonBase = "/api/lesson"
	liveBase   = "/api/live"
)

// LessonClient owns lesson CRUD.
type LessonClient struct {
	c *Client
}

// NewLessonClient constructs a LessonClient.
func NewLessonClient(c *Client) *LessonClient {
	return &LessonClient{c: c}
}

// LessonPayload is the create/update body. ScheduledAt is already a single
// instant; the screen layer combines the separate date and time fields.
type LessonPayload struct {
	ClassID     string     `json:"classId"`
	Title       string     `json:"title"`
	VideoLink   string     `json:"videoLink,omitempty"`
	Description string     `json:"description,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// ListByClass fetches the lessons of one class.
func (l *LessonClient) ListByClass(ctx context.Context, token, classID string) ([]models.Lesson, error) {
	params := url.Values{"classId": {classID}}
	var out struct {
		Lessons []models.Lesson `json:"lessons"`
	}
	if err := l.c.Get(ctx, lessonBase, token, params, &out); err != nil {
		return nil, err
	}
	return out.Lessons, nil
}

// Create registers a lesson.
func (l *LessonClient) Create(ctx context.Context, token string, payload LessonPayload) (*models.Lesson, error) {
	var out struct {
		Lesson models.Lesson `json:"lesson"`
	}
	if err := l.c.Post(ctx, lessonBase, token, payload, &out); err != nil {
		return nil, err
	}
	return &out.Lesson, nil
}

// Update modifies a lesson.
func (l *LessonClient) Update(ctx context.Context, token, id string, payload LessonPayload) (*models.Lesson, error) {
	var out struct {
		Lesson models.Lesson `json:"lesson"`
	}
	if err := l.c.Patch(ctx, lessonBase+"/"+id, token, payload, &out); err != nil {
		return nil, err
	}
	return &out.Lesson, nil
}

// Delete removes a lesson.
func (l *LessonClient) Delete(ctx context.Context, token, id string) error {
	return l.c.Delete(ctx, lessonBase+"/"+id, token)
}

// LiveClient owns live session CRUD.
type LiveClient struct {
	c *Client
}

// NewLiveClient constructs a LiveClient.
func NewLiveClient(c *Client) *LiveClient {
	return &LiveClient{c: c}
}

// LivePayload is the create/update body for live sessions.
type LivePayload struct {
	ClassID     string     `json:"classId"`
	Title       string     `json:"title"`
	MeetingLink string     `json:"meetingLink"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// ListByClass fetches the live sessions of one class.
func (l *LiveClient) ListByClass(ctx context.Context, token, classID string) ([]models.LiveSession, error) {
	params := url.Values{"classId": {classID}}
	var out struct {
		Lives []models.LiveSession `json:"lives"`
	}
	if err := l.c.Get(ctx, liveBase, token, params, &out); err != nil {
		return nil, err
	}
	return out.Lives, nil
}

// Create registers a live session.
func (l *LiveClient) Create(ctx context.Context, token string, payload LivePayload) (*models.LiveSession, error) {
	var out struct {
		Live models.LiveSession `json:"live"`
	}
	if err := l.c.Post(ctx, liveBase, token, payload, &out); err != nil {
		return nil, err
	}
	return &out.Live, nil
}

// Update modifies a live session.
func (l *LiveClient) Update(ctx context.Context, token, id string, payload LivePayload) (*models.LiveSession, error) {
	var out struct {
		Live models.LiveSession `json:"live"`
	}
	if err := l.c.Patch(ctx, liveBase+"/"+id, token, payload, &out); err != nil {
		return nil, err
	}
	return &out.Live, nil
}

// Delete removes a live session.
func (l *LiveClient) Delete(ctx context.Context, token, id string) error {
	return l.c.Delete(ctx, liveBase+"/"+id, token)
}
