package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	"github.com/noah-isme/edu-admin-gateway/internal/upstream"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

type classClient interface {
	List(ctx context.Context, token, gradeID string) ([]models.Class, error)
	Get(ctx context.Context, token, id string) (*models.Class, error)
	Create(ctx context.Context, token string, payload upstream.ClassPayload) (*models.Class, error)
	Update(ctx context.Context, token, id string, payload upstream.ClassPayload) (*models.Class, error)
	Delete(ctx context.Context, token, id string) error
}

// ClassRequest is the class create/update form.
type ClassRequest struct {
	Name       string   `json:"name" validate:"required,max=200"`
	GradeID    string   `json:"gradeId" validate:"required"`
	SubjectID  string   `json:"subjectId" validate:"required"`
	TeacherIDs []string `json:"teacherIds" validate:"required,min=1"`
	ImageURL   string   `json:"imageUrl" validate:"omitempty,url"`
}

// ClassService drives the class management screen.
type ClassService struct {
	store     *query.Store
	client    classClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(store *query.Store, client classClient, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{store: store, client: client, validator: validate, logger: logger}
}

// List returns classes, optionally scoped to one grade.
func (s *ClassService) List(ctx context.Context, sess *models.Session, gradeID string) ([]models.Class, error) {
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/class", Params: paramValues("gradeId", gradeID)}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		classes, err := s.client.List(ctx, sess.Token, gradeID)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(classes))
		for i, cl := range classes {
			ids[i] = cl.ID
		}
		return classes, query.ListTags(TagClasses, ids), nil
	})
	if err != nil {
		return nil, err
	}
	classes, _ := res.Data.([]models.Class)
	return classes, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, sess *models.Session, id string) (*models.Class, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/class/" + id}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		class, err := s.client.Get(ctx, sess.Token, id)
		if err != nil {
			return nil, nil, err
		}
		return class, []query.Tag{query.ItemTag(TagClasses, id)}, nil
	})
	if err != nil {
		return nil, err
	}
	class, _ := res.Data.(*models.Class)
	return class, nil
}

// Create registers a class.
func (s *ClassService) Create(ctx context.Context, sess *models.Session, req ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.client.Create(ctx, sess.Token, upstream.ClassPayload{
		Name:       strings.TrimSpace(req.Name),
		GradeID:    req.GradeID,
		SubjectID:  req.SubjectID,
		TeacherIDs: req.TeacherIDs,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ListTag(TagClasses)})
	return class, nil
}

// Update modifies a class.
func (s *ClassService) Update(ctx context.Context, sess *models.Session, id string, req ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.client.Update(ctx, sess.Token, id, upstream.ClassPayload{
		Name:       strings.TrimSpace(req.Name),
		GradeID:    req.GradeID,
		SubjectID:  req.SubjectID,
		TeacherIDs: req.TeacherIDs,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagClasses, id), query.ListTag(TagClasses)})
	return class, nil
}

// Delete removes a class; dependent lessons and lives go stale with it.
func (s *ClassService) Delete(ctx context.Context, sess *models.Session, id string) error {
	if err := s.client.Delete(ctx, sess.Token, id); err != nil {
		return err
	}
	s.store.Invalidate(ctx, []query.Tag{
		query.ItemTag(TagClasses, id),
		query.ListTag(TagClasses),
		query.ListTag(TagLessons),
		query.ListTag(TagLives),
	})
	return nil
}
