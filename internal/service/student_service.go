package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	"github.com/noah-isme/edu-admin-gateway/internal/upstream"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

const rosterScreen = "students"

type studentRosterClient interface {
	List(ctx context.Context, token string, filter models.StudentFilter) ([]models.Student, error)
	Get(ctx context.Context, token, id string) (*models.Student, error)
	SetActive(ctx context.Context, token, id string, active bool) (*models.Student, error)
}

type filterStore interface {
	Load(ctx context.Context, userID, screen string, dest interface{}) error
	Save(ctx context.Context, userID, screen string, state interface{}) error
}

// StudentService drives the roster screen: filtered listing with persisted
// search state, and the ban/unban toggle.
type StudentService struct {
	store     *query.Store
	students  studentRosterClient
	filters   filterStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(store *query.Store, students studentRosterClient, filters filterStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: store, students: students, filters: filters, validator: validate, logger: logger}
}

// Filter returns the admin's saved roster search state, or the default when
// none was ever saved.
func (s *StudentService) Filter(ctx context.Context, sess *models.Session) (models.StudentFilter, error) {
	var saved models.StudentFilter
	err := s.filters.Load(ctx, sess.UserID, rosterScreen, &saved)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return models.StudentFilter{Page: 1}, nil
		}
		return models.StudentFilter{}, err
	}
	if saved.Page < 1 {
		saved.Page = 1
	}
	return saved, nil
}

// Search persists a fresh roster filter and lists against it. A new search
// always starts on page one regardless of where the previous one left off.
func (s *StudentService) Search(ctx context.Context, sess *models.Session, filter models.StudentFilter) ([]models.Student, models.StudentFilter, error) {
	filter.Page = 1
	if err := s.filters.Save(ctx, sess.UserID, rosterScreen, filter); err != nil {
		return nil, filter, err
	}
	students, err := s.list(ctx, sess, filter)
	return students, filter, err
}

// Page moves the persisted filter to another page and lists against it.
func (s *StudentService) Page(ctx context.Context, sess *models.Session, page int) ([]models.Student, models.StudentFilter, error) {
	filter, err := s.Filter(ctx, sess)
	if err != nil {
		return nil, filter, err
	}
	if page < 1 {
		page = 1
	}
	filter.Page = page
	if err := s.filters.Save(ctx, sess.UserID, rosterScreen, filter); err != nil {
		return nil, filter, err
	}
	students, err := s.list(ctx, sess, filter)
	return students, filter, err
}

// List lists students against the admin's saved filter. Used when the screen
// is (re)entered without a new search.
func (s *StudentService) List(ctx context.Context, sess *models.Session) ([]models.Student, models.StudentFilter, error) {
	filter, err := s.Filter(ctx, sess)
	if err != nil {
		return nil, filter, err
	}
	students, err := s.list(ctx, sess, filter)
	return students, filter, err
}

// Watch subscribes to roster changes under the saved filter.
func (s *StudentService) Watch(ctx context.Context, sess *models.Session) (query.Result, *query.Subscription, error) {
	filter, err := s.Filter(ctx, sess)
	if err != nil {
		return query.Result{}, nil, err
	}
	res, sub := s.store.Subscribe(ctx, s.listKey(sess, filter), s.fetcher(sess, filter))
	return res, sub, nil
}

func (s *StudentService) listKey(sess *models.Session, filter models.StudentFilter) query.Key {
	return query.Key{Principal: sess.UserID, Endpoint: "/api/student", Params: upstream.FilterParams(filter)}
}

func (s *StudentService) fetcher(sess *models.Session, filter models.StudentFilter) query.FetchFunc {
	return func(ctx context.Context) (interface{}, []query.Tag, error) {
		students, err := s.students.List(ctx, sess.Token, filter)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(students))
		for i, st := range students {
			ids[i] = st.ID
		}
		return students, query.ListTags(TagStudents, ids), nil
	}
}

func (s *StudentService) list(ctx context.Context, sess *models.Session, filter models.StudentFilter) ([]models.Student, error) {
	res, err := s.store.Query(ctx, s.listKey(sess, filter), s.fetcher(sess, filter))
	if err != nil {
		return nil, err
	}
	students, _ := res.Data.([]models.Student)
	return students, nil
}

// Get fetches one student.
func (s *StudentService) Get(ctx context.Context, sess *models.Session, id string) (*models.Student, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/student/" + id}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		student, err := s.students.Get(ctx, sess.Token, id)
		if err != nil {
			return nil, nil, err
		}
		return student, []query.Tag{query.ItemTag(TagStudents, id)}, nil
	})
	if err != nil {
		return nil, err
	}
	student, _ := res.Data.(*models.Student)
	return student, nil
}

// Ban deactivates a student. Banning an already banned student is a no-op.
func (s *StudentService) Ban(ctx context.Context, sess *models.Session, id string) (*models.Student, error) {
	return s.setActive(ctx, sess, id, false)
}

// Unban reactivates a student. Unbanning an active student is a no-op.
func (s *StudentService) Unban(ctx context.Context, sess *models.Session, id string) (*models.Student, error) {
	return s.setActive(ctx, sess, id, true)
}

func (s *StudentService) setActive(ctx context.Context, sess *models.Session, id string, active bool) (*models.Student, error) {
	current, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if current.IsActive == active {
		return current, nil
	}
	student, err := s.students.SetActive(ctx, sess.Token, id, active)
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{
		query.ItemTag(TagStudents, id),
		query.ListTag(TagStudents),
	})
	return student, nil
}
