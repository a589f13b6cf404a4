package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	"github.com/noah-isme/edu-admin-gateway/internal/upstream"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

type lessonClient interface {
	ListByClass(ctx context.Context, token, classID string) ([]models.Lesson, error)
	Create(ctx context.Context, token string, payload upstream.LessonPayload) (*models.Lesson, error)
	Update(ctx context.Context, token, id string, payload upstream.LessonPayload) (*models.Lesson, error)
	Delete(ctx context.Context, token, id string) error
}

type liveClient interface {
	ListByClass(ctx context.Context, token, classID string) ([]models.LiveSession, error)
	Create(ctx context.Context, token string, payload upstream.LivePayload) (*models.LiveSession, error)
	Update(ctx context.Context, token, id string, payload upstream.LivePayload) (*models.LiveSession, error)
	Delete(ctx context.Context, token, id string) error
}

// LessonRequest is the lesson form: date and time arrive as separate inputs
// and are combined into one instant before submission.
type LessonRequest struct {
	ClassID     string `json:"classId" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	VideoLink   string `json:"videoLink" validate:"omitempty,url"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time        string `json:"time" validate:"omitempty,datetime=15:04"`
}

// LiveRequest is the live session form.
type LiveRequest struct {
	ClassID     string `json:"classId" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	MeetingLink string `json:"meetingLink" validate:"required,url"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
}

// LessonView decorates a lesson with the decomposed date and time fields the
// edit form round-trips.
type LessonView struct {
	models.Lesson
	Date string `json:"date"`
	Time string `json:"time"`
}

// LiveView decorates a live session the same way.
type LiveView struct {
	models.LiveSession
	Date string `json:"date"`
	Time string `json:"time"`
}

// ScheduleService drives the lesson and live-session screens of a class.
type ScheduleService struct {
	store     *query.Store
	lessons   lessonClient
	lives     liveClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(store *query.Store, lessons lessonClient, lives liveClient, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{store: store, lessons: lessons, lives: lives, validator: validate, logger: logger}
}

// Lessons returns the lessons of one class with display date/time fields.
func (s *ScheduleService) Lessons(ctx context.Context, sess *models.Session, classID string) ([]LessonView, error) {
	if classID == "" {
		return nil, nil
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/lesson", Params: paramValues("classId", classID)}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		lessons, err := s.lessons.ListByClass(ctx, sess.Token, classID)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(lessons))
		views := make([]LessonView, len(lessons))
		for i, l := range lessons {
			ids[i] = l.ID
			date, clock := SplitDateTime(l.ScheduledAt)
			views[i] = LessonView{Lesson: l, Date: date, Time: clock}
		}
		return views, query.ListTags(TagLessons, ids), nil
	})
	if err != nil {
		return nil, err
	}
	views, _ := res.Data.([]LessonView)
	return views, nil
}

// CreateLesson submits a new lesson.
func (s *ScheduleService) CreateLesson(ctx context.Context, sess *models.Session, req LessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	scheduledAt, err := s.optionalInstant(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	lesson, err := s.lessons.Create(ctx, sess.Token, upstream.LessonPayload{
		ClassID:     req.ClassID,
		Title:       strings.TrimSpace(req.Title),
		VideoLink:   req.VideoLink,
		Description: req.Description,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ListTag(TagLessons)})
	return lesson, nil
}

// UpdateLesson modifies a lesson.
func (s *ScheduleService) UpdateLesson(ctx context.Context, sess *models.Session, id string, req LessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	scheduledAt, err := s.optionalInstant(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	lesson, err := s.lessons.Update(ctx, sess.Token, id, upstream.LessonPayload{
		ClassID:     req.ClassID,
		Title:       strings.TrimSpace(req.Title),
		VideoLink:   req.VideoLink,
		Description: req.Description,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagLessons, id), query.ListTag(TagLessons)})
	return lesson, nil
}

// DeleteLesson removes a lesson.
func (s *ScheduleService) DeleteLesson(ctx context.Context, sess *models.Session, id string) error {
	if err := s.lessons.Delete(ctx, sess.Token, id); err != nil {
		return err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagLessons, id), query.ListTag(TagLessons)})
	return nil
}

// Lives returns the live sessions of one class with display fields.
func (s *ScheduleService) Lives(ctx context.Context, sess *models.Session, classID string) ([]LiveView, error) {
	if classID == "" {
		return nil, nil
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/live", Params: paramValues("classId", classID)}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		lives, err := s.lives.ListByClass(ctx, sess.Token, classID)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(lives))
		views := make([]LiveView, len(lives))
		for i, l := range lives {
			ids[i] = l.ID
			date, clock := SplitDateTime(l.ScheduledAt)
			views[i] = LiveView{LiveSession: l, Date: date, Time: clock}
		}
		return views, query.ListTags(TagLives, ids), nil
	})
	if err != nil {
		return nil, err
	}
	views, _ := res.Data.([]LiveView)
	return views, nil
}

// CreateLive submits a new live session.
func (s *ScheduleService) CreateLive(ctx context.Context, sess *models.Session, req LiveRequest) (*models.LiveSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid live session payload")
	}
	instant, err := CombineDateTime(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	live, err := s.lives.Create(ctx, sess.Token, upstream.LivePayload{
		ClassID:     req.ClassID,
		Title:       strings.TrimSpace(req.Title),
		MeetingLink: req.MeetingLink,
		ScheduledAt: &instant,
	})
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ListTag(TagLives)})
	return live, nil
}

// UpdateLive modifies a live session.
func (s *ScheduleService) UpdateLive(ctx context.Context, sess *models.Session, id string, req LiveRequest) (*models.LiveSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid live session payload")
	}
	instant, err := CombineDateTime(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	live, err := s.lives.Update(ctx, sess.Token, id, upstream.LivePayload{
		ClassID:     req.ClassID,
		Title:       strings.TrimSpace(req.Title),
		MeetingLink: req.MeetingLink,
		ScheduledAt: &instant,
	})
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagLives, id), query.ListTag(TagLives)})
	return live, nil
}

// DeleteLive removes a live session.
func (s *ScheduleService) DeleteLive(ctx context.Context, sess *models.Session, id string) error {
	if err := s.lives.Delete(ctx, sess.Token, id); err != nil {
		return err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagLives, id), query.ListTag(TagLives)})
	return nil
}

func (s *ScheduleService) optionalInstant(date, clock string) (*time.Time, error) {
	if date == "" && clock == "" {
		return nil, nil
	}
	if date == "" || clock == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date and time must be provided together")
	}
	instant, err := CombineDateTime(date, clock)
	if err != nil {
		return nil, err
	}
	return &instant, nil
}
