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

type paperClient interface {
	List(ctx context.Context, token, gradeID string) ([]models.Paper, error)
	Get(ctx context.Context, token, id string) (*models.Paper, error)
	Create(ctx context.Context, token string, payload upstream.PaperPayload) (*models.Paper, error)
	Update(ctx context.Context, token, id string, payload upstream.PaperPayload) (*models.Paper, error)
	Publish(ctx context.Context, token, id string) (*models.Paper, error)
	Delete(ctx context.Context, token, id string) error
}

type questionClient interface {
	ListByPaper(ctx context.Context, token, paperID string) ([]models.Question, error)
	Create(ctx context.Context, token string, payload upstream.CreateQuestionPayload) (*models.Question, error)
	Update(ctx context.Context, token, id string, payload upstream.UpdateQuestionPayload) (*models.Question, error)
	Delete(ctx context.Context, token, id string) error
}

// PaperRequest is the paper create/update form. Grades 1-11 bind a subject;
// 12-13 bind a stream plus stream subject.
type PaperRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Type            string `json:"type" validate:"required"`
	GradeID         string `json:"gradeId" validate:"required"`
	SubjectID       string `json:"subjectId"`
	StreamID        string `json:"streamId"`
	StreamSubjectID string `json:"streamSubjectId"`
	TimeLimitMin    int    `json:"timeLimit" validate:"required,min=1"`
	QuestionCount   int    `json:"questionCount" validate:"required,min=1"`
	AnswersPerQ     int    `json:"answersPerQuestion" validate:"required,min=2,max=6"`
	AttemptLimit    int    `json:"attemptLimit" validate:"min=0"`
	IsPaid          bool   `json:"isPaid"`
	Price           int    `json:"price" validate:"min=0"`
}

// CreateQuestionRequest allows one or two correct answer indexes.
type CreateQuestionRequest struct {
	Prompt         string   `json:"prompt" validate:"required"`
	Answers        []string `json:"answers" validate:"required,min=2,dive,required"`
	CorrectIndexes []int    `json:"correctIndexes" validate:"required,min=1,max=2"`
	ExplainerVideo string   `json:"explainerVideo" validate:"omitempty,url"`
	ExplainerText  string   `json:"explainerText"`
	ImageURL       string   `json:"imageUrl" validate:"omitempty,url"`
}

// UpdateQuestionRequest carries exactly one correct index. The asymmetry
// with creation is deliberate: the observed edit flow never handled a second
// correct answer, and unifying the two would silently change the upstream
// contract.
type UpdateQuestionRequest struct {
	Prompt         string   `json:"prompt" validate:"required"`
	Answers        []string `json:"answers" validate:"required,min=2,dive,required"`
	CorrectIndex   int      `json:"correctIndex" validate:"min=0"`
	ExplainerVideo string   `json:"explainerVideo" validate:"omitempty,url"`
	ExplainerText  string   `json:"explainerText"`
	ImageURL       string   `json:"imageUrl" validate:"omitempty,url"`
}

// PaperView decorates a paper with its derived status and whether the
// question-editing affordance should exist at all.
type PaperView struct {
	models.Paper
	DerivedStatus     models.PaperStatus `json:"status"`
	QuestionsEditable bool               `json:"questionsEditable"`
}

// PaperService drives the paper and question authoring screens and guards
// the one-way publish transition.
type PaperService struct {
	store     *query.Store
	papers    paperClient
	questions questionClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaperService constructs a PaperService.
func NewPaperService(store *query.Store, papers paperClient, questions questionClient, validate *validator.Validate, logger *zap.Logger) *PaperService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaperService{store: store, papers: papers, questions: questions, validator: validate, logger: logger}
}

func decorate(p models.Paper) PaperView {
	return PaperView{Paper: p, DerivedStatus: p.Status(), QuestionsEditable: p.CanEditQuestions()}
}

// List returns papers with derived status, optionally scoped to a grade.
func (s *PaperService) List(ctx context.Context, sess *models.Session, gradeID string) ([]PaperView, error) {
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/paper", Params: paramValues("gradeId", gradeID)}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		papers, err := s.papers.List(ctx, sess.Token, gradeID)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(papers))
		views := make([]PaperView, len(papers))
		for i, p := range papers {
			ids[i] = p.ID
			views[i] = decorate(p)
		}
		return views, query.ListTags(TagPapers, ids), nil
	})
	if err != nil {
		return nil, err
	}
	views, _ := res.Data.([]PaperView)
	return views, nil
}

// Get returns one paper with derived status.
func (s *PaperService) Get(ctx context.Context, sess *models.Session, id string) (*PaperView, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "paper id is required")
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/paper/" + id}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		paper, err := s.papers.Get(ctx, sess.Token, id)
		if err != nil {
			return nil, nil, err
		}
		view := decorate(*paper)
		return &view, []query.Tag{query.ItemTag(TagPapers, id)}, nil
	})
	if err != nil {
		return nil, err
	}
	view, _ := res.Data.(*PaperView)
	return view, nil
}

// Create registers a paper after checking the grade binding shape.
func (s *PaperService) Create(ctx context.Context, sess *models.Session, req PaperRequest) (*PaperView, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	paper, err := s.papers.Create(ctx, sess.Token, s.payload(req))
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ListTag(TagPapers)})
	view := decorate(*paper)
	return &view, nil
}

// Update modifies a paper's metadata. Published papers stay editable for
// payment terms upstream; the backend is the authority there.
func (s *PaperService) Update(ctx context.Context, sess *models.Session, id string, req PaperRequest) (*PaperView, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	paper, err := s.papers.Update(ctx, sess.Token, id, s.payload(req))
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagPapers, id), query.ListTag(TagPapers)})
	view := decorate(*paper)
	return &view, nil
}

// Publish flips a complete paper to its published state. Only papers whose
// authored question count satisfies the requirement may publish, and the
// transition is one way.
func (s *PaperService) Publish(ctx context.Context, sess *models.Session, id string) (*PaperView, error) {
	current, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	switch current.DerivedStatus {
	case models.PaperPublished:
		return nil, appErrors.Clone(appErrors.ErrPublished, "paper is already published")
	case models.PaperInProgress:
		return nil, appErrors.Clone(appErrors.ErrConflict, "paper is missing questions and cannot publish")
	}

	paper, err := s.papers.Publish(ctx, sess.Token, id)
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{
		query.ItemTag(TagPapers, id),
		query.ListTag(TagPapers),
		query.ListTag(TagQuestions),
	})
	view := decorate(*paper)
	return &view, nil
}

// Delete removes a paper and its questions.
func (s *PaperService) Delete(ctx context.Context, sess *models.Session, id string) error {
	if err := s.papers.Delete(ctx, sess.Token, id); err != nil {
		return err
	}
	s.store.Invalidate(ctx, []query.Tag{
		query.ItemTag(TagPapers, id),
		query.ListTag(TagPapers),
		query.ListTag(TagQuestions),
	})
	return nil
}

// Questions returns the questions of one paper.
func (s *PaperService) Questions(ctx context.Context, sess *models.Session, paperID string) ([]models.Question, error) {
	if paperID == "" {
		return nil, nil
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/question", Params: paramValues("paperId", paperID)}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		questions, err := s.questions.ListByPaper(ctx, sess.Token, paperID)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(questions))
		for i, q := range questions {
			ids[i] = q.ID
		}
		return questions, query.ListTags(TagQuestions, ids), nil
	})
	if err != nil {
		return nil, err
	}
	questions, _ := res.Data.([]models.Question)
	return questions, nil
}

// CreateQuestion authors a question on an unpublished paper.
func (s *PaperService) CreateQuestion(ctx context.Context, sess *models.Session, paperID string, req CreateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid question payload")
	}
	paper, err := s.Get(ctx, sess, paperID)
	if err != nil {
		return nil, err
	}
	if !paper.QuestionsEditable {
		return nil, appErrors.ErrPublished
	}
	for _, idx := range req.CorrectIndexes {
		if idx < 0 || idx >= len(req.Answers) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "correct index out of range")
		}
	}

	question, err := s.questions.Create(ctx, sess.Token, upstream.CreateQuestionPayload{
		PaperID:        paperID,
		Prompt:         strings.TrimSpace(req.Prompt),
		Answers:        req.Answers,
		CorrectIndexes: req.CorrectIndexes,
		ExplainerVideo: req.ExplainerVideo,
		ExplainerText:  req.ExplainerText,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	// The paper's authored count changed with the question set.
	s.store.Invalidate(ctx, []query.Tag{
		query.ListTag(TagQuestions),
		query.ItemTag(TagPapers, paperID),
		query.ListTag(TagPapers),
	})
	return question, nil
}

// UpdateQuestion rewrites a question on an unpublished paper.
func (s *PaperService) UpdateQuestion(ctx context.Context, sess *models.Session, paperID, questionID string, req UpdateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid question payload")
	}
	paper, err := s.Get(ctx, sess, paperID)
	if err != nil {
		return nil, err
	}
	if !paper.QuestionsEditable {
		return nil, appErrors.ErrPublished
	}
	if req.CorrectIndex < 0 || req.CorrectIndex >= len(req.Answers) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "correct index out of range")
	}

	question, err := s.questions.Update(ctx, sess.Token, questionID, upstream.UpdateQuestionPayload{
		Prompt:         strings.TrimSpace(req.Prompt),
		Answers:        req.Answers,
		CorrectIndex:   req.CorrectIndex,
		ExplainerVideo: req.ExplainerVideo,
		ExplainerText:  req.ExplainerText,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{
		query.ItemTag(TagQuestions, questionID),
		query.ListTag(TagQuestions),
	})
	return question, nil
}

// DeleteQuestion removes a question from an unpublished paper.
func (s *PaperService) DeleteQuestion(ctx context.Context, sess *models.Session, paperID, questionID string) error {
	paper, err := s.Get(ctx, sess, paperID)
	if err != nil {
		return err
	}
	if !paper.QuestionsEditable {
		return appErrors.ErrPublished
	}
	if err := s.questions.Delete(ctx, sess.Token, questionID); err != nil {
		return err
	}
	s.store.Invalidate(ctx, []query.Tag{
		query.ItemTag(TagQuestions, questionID),
		query.ListTag(TagQuestions),
		query.ItemTag(TagPapers, paperID),
		query.ListTag(TagPapers),
	})
	return nil
}

func (s *PaperService) validateRequest(req PaperRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid paper payload")
	}
	hasSubject := req.SubjectID != ""
	hasStream := req.StreamID != "" && req.StreamSubjectID != ""
	if hasSubject == hasStream {
		return appErrors.Clone(appErrors.ErrValidation, "bind either a subject (grades 1-11) or a stream plus stream subject (grades 12-13)")
	}
	return nil
}

func (s *PaperService) payload(req PaperRequest) upstream.PaperPayload {
	return upstream.PaperPayload{
		Title:           strings.TrimSpace(req.Title),
		Type:            req.Type,
		GradeID:         req.GradeID,
		SubjectID:       req.SubjectID,
		StreamID:        req.StreamID,
		StreamSubjectID: req.StreamSubjectID,
		TimeLimitMin:    req.TimeLimitMin,
		QuestionCount:   req.QuestionCount,
		AnswersPerQ:     req.AnswersPerQ,
		AttemptLimit:    req.AttemptLimit,
		IsPaid:          req.IsPaid,
		Price:           req.Price,
	}
}
