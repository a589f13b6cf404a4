package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

type taxonomyClient interface {
	ListGrades(ctx context.Context, token string) ([]models.Grade, error)
	CreateGrade(ctx context.Context, token string, number int) (*models.Grade, error)
	ListSubjects(ctx context.Context, token, gradeID string) ([]models.Subject, error)
	CreateSubject(ctx context.Context, token, gradeID, name string) (*models.Subject, error)
	UpdateSubject(ctx context.Context, token, id, name string) (*models.Subject, error)
	DeleteSubject(ctx context.Context, token, id string) error
	ListStreams(ctx context.Context, token, gradeID string) ([]models.Stream, error)
	CreateStream(ctx context.Context, token, gradeID, name string) (*models.Stream, error)
	UpdateStream(ctx context.Context, token, id, name string) (*models.Stream, error)
	DeleteStream(ctx context.Context, token, id string) error
	ListStreamSubjects(ctx context.Context, token, streamID string) ([]models.StreamSubject, error)
	CreateStreamSubject(ctx context.Context, token, streamID, name string) (*models.StreamSubject, error)
	UpdateStreamSubject(ctx context.Context, token, id, name string) (*models.StreamSubject, error)
	DeleteStreamSubject(ctx context.Context, token, id string) error
}

// CreateChildRequest attaches a subject or stream to a grade number. When the
// grade does not exist yet it is created first, then the child is attached
// with the returned id (two sequential, dependent writes).
type CreateChildRequest struct {
	GradeNumber int    `json:"grade" validate:"required,min=1,max=13"`
	Name        string `json:"name" validate:"required,max=120"`
}

// RenameRequest renames a subject, stream or stream subject.
type RenameRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// CreateStreamSubjectRequest attaches a subject to an existing stream.
type CreateStreamSubjectRequest struct {
	StreamID string `json:"streamId" validate:"required"`
	Name     string `json:"name" validate:"required,max=120"`
}

// TaxonomyService manages the grade/subject/stream hierarchy and enforces
// the 1-11 subject / 12-13 stream split the upstream schema relies on.
type TaxonomyService struct {
	store     *query.Store
	client    taxonomyClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaxonomyService constructs a TaxonomyService.
func NewTaxonomyService(store *query.Store, client taxonomyClient, validate *validator.Validate, logger *zap.Logger) *TaxonomyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxonomyService{store: store, client: client, validator: validate, logger: logger}
}

func (s *TaxonomyService) gradesKey(sess *models.Session) query.Key {
	return query.Key{Principal: sess.UserID, Endpoint: "/api/grade-subject/grades"}
}

func (s *TaxonomyService) gradesFetch(sess *models.Session) query.FetchFunc {
	return func(ctx context.Context) (interface{}, []query.Tag, error) {
		grades, err := s.client.ListGrades(ctx, sess.Token)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(grades))
		for i, g := range grades {
			ids[i] = g.ID
		}
		return grades, query.ListTags(TagGrades, ids), nil
	}
}

// Grades returns the cached grade list.
func (s *TaxonomyService) Grades(ctx context.Context, sess *models.Session) ([]models.Grade, error) {
	res, err := s.store.Query(ctx, s.gradesKey(sess), s.gradesFetch(sess))
	if err != nil {
		return nil, err
	}
	grades, _ := res.Data.([]models.Grade)
	return grades, nil
}

// WatchGrades opens a live subscription on the grade list.
func (s *TaxonomyService) WatchGrades(ctx context.Context, sess *models.Session) (query.Result, *query.Subscription) {
	return s.store.Subscribe(ctx, s.gradesKey(sess), s.gradesFetch(sess))
}

// Subjects returns the subjects of one grade. An empty grade id is an unmet
// precondition: no network call happens and an empty idle result is served.
func (s *TaxonomyService) Subjects(ctx context.Context, sess *models.Session, gradeID string) ([]models.Subject, error) {
	if gradeID == "" {
		return nil, nil
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/grade-subject/subjects", Params: paramValues("gradeId", gradeID)}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		subjects, err := s.client.ListSubjects(ctx, sess.Token, gradeID)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(subjects))
		for i, sub := range subjects {
			ids[i] = sub.ID
		}
		return subjects, query.ListTags(TagSubjects, ids), nil
	})
	if err != nil {
		return nil, err
	}
	subjects, _ := res.Data.([]models.Subject)
	return subjects, nil
}

// Streams returns the streams of one grade (12-13 only).
func (s *TaxonomyService) Streams(ctx context.Context, sess *models.Session, gradeID string) ([]models.Stream, error) {
	if gradeID == "" {
		return nil, nil
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/grade-subject/streams", Params: paramValues("gradeId", gradeID)}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		streams, err := s.client.ListStreams(ctx, sess.Token, gradeID)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(streams))
		for i, st := range streams {
			ids[i] = st.ID
		}
		return streams, query.ListTags(TagStreams, ids), nil
	})
	if err != nil {
		return nil, err
	}
	streams, _ := res.Data.([]models.Stream)
	return streams, nil
}

// StreamSubjects returns the subjects of one stream.
func (s *TaxonomyService) StreamSubjects(ctx context.Context, sess *models.Session, streamID string) ([]models.StreamSubject, error) {
	if streamID == "" {
		return nil, nil
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/grade-subject/stream-subjects", Params: paramValues("streamId", streamID)}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		subjects, err := s.client.ListStreamSubjects(ctx, sess.Token, streamID)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(subjects))
		for i, sub := range subjects {
			ids[i] = sub.ID
		}
		return subjects, query.ListTags(TagStreamSubjects, ids), nil
	})
	if err != nil {
		return nil, err
	}
	subjects, _ := res.Data.([]models.StreamSubject)
	return subjects, nil
}

// CreateSubject attaches a subject to a grade number in range 1-11, creating
// the grade first when it does not exist yet.
func (s *TaxonomyService) CreateSubject(ctx context.Context, sess *models.Session, req CreateChildRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	if models.GradeUsesStreams(req.GradeNumber) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grades 12-13 use streams, not subjects")
	}

	grade, err := s.ensureGrade(ctx, sess, req.GradeNumber)
	if err != nil {
		return nil, err
	}

	subject, err := s.client.CreateSubject(ctx, sess.Token, grade.ID, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, []query.Tag{query.ListTag(TagSubjects)})
	return subject, nil
}

// CreateStream attaches a stream to a grade number in range 12-13, creating
// the grade first when it does not exist yet.
func (s *TaxonomyService) CreateStream(ctx context.Context, sess *models.Session, req CreateChildRequest) (*models.Stream, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stream payload")
	}
	if !models.GradeUsesStreams(req.GradeNumber) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grades 1-11 use subjects, not streams")
	}

	grade, err := s.ensureGrade(ctx, sess, req.GradeNumber)
	if err != nil {
		return nil, err
	}

	stream, err := s.client.CreateStream(ctx, sess.Token, grade.ID, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, []query.Tag{query.ListTag(TagStreams)})
	return stream, nil
}

// CreateStreamSubject attaches a subject to an existing stream.
func (s *TaxonomyService) CreateStreamSubject(ctx context.Context, sess *models.Session, req CreateStreamSubjectRequest) (*models.StreamSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stream subject payload")
	}
	subject, err := s.client.CreateStreamSubject(ctx, sess.Token, req.StreamID, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ListTag(TagStreamSubjects)})
	return subject, nil
}

// RenameSubject updates a subject's name.
func (s *TaxonomyService) RenameSubject(ctx context.Context, sess *models.Session, id string, req RenameRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rename payload")
	}
	subject, err := s.client.UpdateSubject(ctx, sess.Token, id, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagSubjects, id), query.ListTag(TagSubjects)})
	return subject, nil
}

// DeleteSubject removes a subject.
func (s *TaxonomyService) DeleteSubject(ctx context.Context, sess *models.Session, id string) error {
	if err := s.client.DeleteSubject(ctx, sess.Token, id); err != nil {
		return err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagSubjects, id), query.ListTag(TagSubjects)})
	return nil
}

// RenameStream updates a stream's name.
func (s *TaxonomyService) RenameStream(ctx context.Context, sess *models.Session, id string, req RenameRequest) (*models.Stream, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rename payload")
	}
	stream, err := s.client.UpdateStream(ctx, sess.Token, id, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagStreams, id), query.ListTag(TagStreams)})
	return stream, nil
}

// DeleteStream removes a stream and implicitly its subjects upstream.
func (s *TaxonomyService) DeleteStream(ctx context.Context, sess *models.Session, id string) error {
	if err := s.client.DeleteStream(ctx, sess.Token, id); err != nil {
		return err
	}
	s.store.Invalidate(ctx, []query.Tag{
		query.ItemTag(TagStreams, id),
		query.ListTag(TagStreams),
		query.ListTag(TagStreamSubjects),
	})
	return nil
}

// RenameStreamSubject updates a stream subject's name.
func (s *TaxonomyService) RenameStreamSubject(ctx context.Context, sess *models.Session, id string, req RenameRequest) (*models.StreamSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rename payload")
	}
	subject, err := s.client.UpdateStreamSubject(ctx, sess.Token, id, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagStreamSubjects, id), query.ListTag(TagStreamSubjects)})
	return subject, nil
}

// DeleteStreamSubject removes a stream subject.
func (s *TaxonomyService) DeleteStreamSubject(ctx context.Context, sess *models.Session, id string) error {
	if err := s.client.DeleteStreamSubject(ctx, sess.Token, id); err != nil {
		return err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagStreamSubjects, id), query.ListTag(TagStreamSubjects)})
	return nil
}

// ensureGrade finds the grade by number or creates it, invalidating the
// grade list when a new record appears. The caller's child write only runs
// after this returns, keeping the two writes strictly ordered.
func (s *TaxonomyService) ensureGrade(ctx context.Context, sess *models.Session, number int) (*models.Grade, error) {
	grades, err := s.Grades(ctx, sess)
	if err != nil {
		return nil, err
	}
	for _, g := range grades {
		if g.Number == number {
			return &g, nil
		}
	}

	grade, err := s.client.CreateGrade(ctx, sess.Token, number)
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ListTag(TagGrades)})
	return grade, nil
}
