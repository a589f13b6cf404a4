package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

type enrollmentClient interface {
	List(ctx context.Context, token string, state models.EnrollmentState) ([]models.EnrollmentRequest, error)
	Transition(ctx context.Context, token, id string, state models.EnrollmentState) (*models.EnrollmentRequest, error)
}

// EnrollmentService drives the enrollment request inbox. Decided requests
// leave the pending list, which is what the screen shows.
type EnrollmentService struct {
	store   *query.Store
	enrolls enrollmentClient
	logger  *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(store *query.Store, enrolls enrollmentClient, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: store, enrolls: enrolls, logger: logger}
}

func (s *EnrollmentService) listKey(sess *models.Session, state models.EnrollmentState) query.Key {
	return query.Key{Principal: sess.UserID, Endpoint: "/api/enroll", Params: paramValues("state", string(state))}
}

func (s *EnrollmentService) fetcher(sess *models.Session, state models.EnrollmentState) query.FetchFunc {
	return func(ctx context.Context) (interface{}, []query.Tag, error) {
		requests, err := s.enrolls.List(ctx, sess.Token, state)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(requests))
		for i, r := range requests {
			ids[i] = r.ID
		}
		return requests, query.ListTags(TagEnrollments, ids), nil
	}
}

// Pending lists undecided requests.
func (s *EnrollmentService) Pending(ctx context.Context, sess *models.Session) ([]models.EnrollmentRequest, error) {
	return s.list(ctx, sess, models.EnrollmentPending)
}

// WatchPending subscribes to the pending inbox.
func (s *EnrollmentService) WatchPending(ctx context.Context, sess *models.Session) (query.Result, *query.Subscription) {
	return s.store.Subscribe(ctx, s.listKey(sess, models.EnrollmentPending), s.fetcher(sess, models.EnrollmentPending))
}

func (s *EnrollmentService) list(ctx context.Context, sess *models.Session, state models.EnrollmentState) ([]models.EnrollmentRequest, error) {
	res, err := s.store.Query(ctx, s.listKey(sess, state), s.fetcher(sess, state))
	if err != nil {
		return nil, err
	}
	requests, _ := res.Data.([]models.EnrollmentRequest)
	return requests, nil
}

// Approve admits the student to the class.
func (s *EnrollmentService) Approve(ctx context.Context, sess *models.Session, id string) (*models.EnrollmentRequest, error) {
	return s.transition(ctx, sess, id, models.EnrollmentApproved)
}

// Reject declines the request.
func (s *EnrollmentService) Reject(ctx context.Context, sess *models.Session, id string) (*models.EnrollmentRequest, error) {
	return s.transition(ctx, sess, id, models.EnrollmentRejected)
}

func (s *EnrollmentService) transition(ctx context.Context, sess *models.Session, id string, state models.EnrollmentState) (*models.EnrollmentRequest, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request id is required")
	}
	request, err := s.enrolls.Transition(ctx, sess.Token, id, state)
	if err != nil {
		return nil, err
	}
	tags := []query.Tag{
		query.ItemTag(TagEnrollments, id),
		query.ListTag(TagEnrollments),
	}
	// Approval changes the student's class membership.
	if state == models.EnrollmentApproved {
		tags = append(tags,
			query.ItemTag(TagStudents, request.StudentID),
			query.ListTag(TagStudents),
			query.ItemTag(TagClasses, request.ClassID),
		)
	}
	s.store.Invalidate(ctx, tags)
	return request, nil
}
