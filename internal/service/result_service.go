package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
)

type resultClient interface {
	Rows(ctx context.Context, token string, filter models.ResultFilter) ([]models.ResultRow, error)
	AdminRows(ctx context.Context, token string, filter models.ResultFilter) ([]models.ResultRow, error)
}

// ResultService serves the two result report feeds. Rows carry no stable
// identity of their own, so the whole feed shares one list tag.
type ResultService struct {
	store   *query.Store
	results resultClient
	logger  *zap.Logger
}

// NewResultService constructs a ResultService.
func NewResultService(store *query.Store, results resultClient, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{store: store, results: results, logger: logger}
}

func resultFilterParams(f models.ResultFilter) []string {
	pairs := []string{
		"studentId", f.StudentID,
		"paperId", f.PaperID,
		"gradeId", f.GradeID,
	}
	if f.Page > 0 {
		pairs = append(pairs, "page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		pairs = append(pairs, "limit", strconv.Itoa(f.Limit))
	}
	return pairs
}

// Rows returns the teacher-scope report feed.
func (s *ResultService) Rows(ctx context.Context, sess *models.Session, filter models.ResultFilter) ([]models.ResultRow, error) {
	return s.rows(ctx, sess, "/api/result-report", filter, func(ctx context.Context) ([]models.ResultRow, error) {
		return s.results.Rows(ctx, sess.Token, filter)
	})
}

// AdminRows returns the platform-wide report feed.
func (s *ResultService) AdminRows(ctx context.Context, sess *models.Session, filter models.ResultFilter) ([]models.ResultRow, error) {
	return s.rows(ctx, sess, "/api/admin-result-report", filter, func(ctx context.Context) ([]models.ResultRow, error) {
		return s.results.AdminRows(ctx, sess.Token, filter)
	})
}

func (s *ResultService) rows(ctx context.Context, sess *models.Session, endpoint string, filter models.ResultFilter, fetch func(context.Context) ([]models.ResultRow, error)) ([]models.ResultRow, error) {
	key := query.Key{Principal: sess.UserID, Endpoint: endpoint, Params: paramValues(resultFilterParams(filter)...)}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		rows, err := fetch(ctx)
		if err != nil {
			return nil, nil, err
		}
		return rows, []query.Tag{query.ListTag(TagResults)}, nil
	})
	if err != nil {
		return nil, err
	}
	rows, _ := res.Data.([]models.ResultRow)
	return rows, nil
}
