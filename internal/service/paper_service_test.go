package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	"github.com/noah-isme/edu-admin-gateway/internal/upstream"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

type fakePaperClient struct {
	papers       map[string]*models.Paper
	publishCalls int
}

func newFakePaperClient(papers ...models.Paper) *fakePaperClient {
	f := &fakePaperClient{papers: map[string]*models.Paper{}}
	for i := range papers {
		f.papers[papers[i].ID] = &papers[i]
	}
	return f
}

func (f *fakePaperClient) List(ctx context.Context, token, gradeID string) ([]models.Paper, error) {
	out := make([]models.Paper, 0, len(f.papers))
	for _, p := range f.papers {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePaperClient) Get(ctx context.Context, token, id string) (*models.Paper, error) {
	p, ok := f.papers[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "paper not found")
	}
	copied := *p
	return &copied, nil
}

func (f *fakePaperClient) Create(ctx context.Context, token string, payload upstream.PaperPayload) (*models.Paper, error) {
	p := models.Paper{ID: "paper-new", Title: payload.Title, GradeID: payload.GradeID, QuestionCount: payload.QuestionCount}
	f.papers[p.ID] = &p
	return &p, nil
}

func (f *fakePaperClient) Update(ctx context.Context, token, id string, payload upstream.PaperPayload) (*models.Paper, error) {
	p, ok := f.papers[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "paper not found")
	}
	p.Title = payload.Title
	copied := *p
	return &copied, nil
}

func (f *fakePaperClient) Publish(ctx context.Context, token, id string) (*models.Paper, error) {
	f.publishCalls++
	p, ok := f.papers[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "paper not found")
	}
	p.IsPublished = true
	copied := *p
	return &copied, nil
}

func (f *fakePaperClient) Delete(ctx context.Context, token, id string) error {
	delete(f.papers, id)
	return nil
}

type fakeQuestionClient struct {
	questions []models.Question
	creates   int
	updates   int
	deletes   int
}

func (f *fakeQuestionClient) ListByPaper(ctx context.Context, token, paperID string) ([]models.Question, error) {
	return f.questions, nil
}

func (f *fakeQuestionClient) Create(ctx context.Context, token string, payload upstream.CreateQuestionPayload) (*models.Question, error) {
	f.creates++
	q := models.Question{ID: "question-new", PaperID: payload.PaperID, Prompt: payload.Prompt, Answers: payload.Answers, CorrectIndexes: payload.CorrectIndexes}
	f.questions = append(f.questions, q)
	return &q, nil
}

func (f *fakeQuestionClient) Update(ctx context.Context, token, id string, payload upstream.UpdateQuestionPayload) (*models.Question, error) {
	f.updates++
	return &models.Question{ID: id, Prompt: payload.Prompt, Answers: payload.Answers, CorrectIndexes: []int{payload.CorrectIndex}}, nil
}

func (f *fakeQuestionClient) Delete(ctx context.Context, token, id string) error {
	f.deletes++
	return nil
}

func newPaperFixture(papers *fakePaperClient, questions *fakeQuestionClient) *PaperService {
	store := query.NewStore(4, nil, nil)
	return NewPaperService(store, papers, questions, nil, nil)
}

func validPaperRequest() PaperRequest {
	return PaperRequest{
		Title:         "Term Test 1",
		Type:          "term",
		GradeID:       "grade-5",
		SubjectID:     "sub-maths",
		TimeLimitMin:  60,
		QuestionCount: 40,
		AnswersPerQ:   4,
	}
}

func TestPaperStatusDerivation(t *testing.T) {
	cases := []struct {
		name  string
		paper models.Paper
		want  models.PaperStatus
	}{
		{"no questions yet", models.Paper{QuestionCount: 40, AuthoredCount: 0}, models.PaperInProgress},
		{"partially authored", models.Paper{QuestionCount: 40, AuthoredCount: 39}, models.PaperInProgress},
		{"fully authored", models.Paper{QuestionCount: 40, AuthoredCount: 40}, models.PaperComplete},
		{"over-authored", models.Paper{QuestionCount: 40, AuthoredCount: 41}, models.PaperComplete},
		{"published wins", models.Paper{QuestionCount: 40, AuthoredCount: 40, IsPublished: true}, models.PaperPublished},
		{"published while incomplete", models.Paper{QuestionCount: 40, AuthoredCount: 1, IsPublished: true}, models.PaperPublished},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.paper.Status())
		})
	}
}

func TestPublishRejectsIncompletePaper(t *testing.T) {
	papers := newFakePaperClient(models.Paper{ID: "p-1", QuestionCount: 40, AuthoredCount: 10})
	svc := newPaperFixture(papers, &fakeQuestionClient{})

	_, err := svc.Publish(context.Background(), testSession(), "p-1")

	assertErrorCode(t, err, appErrors.ErrConflict.Code)
	assert.Zero(t, papers.publishCalls)
}

func TestPublishRejectsAlreadyPublished(t *testing.T) {
	papers := newFakePaperClient(models.Paper{ID: "p-1", QuestionCount: 40, AuthoredCount: 40, IsPublished: true})
	svc := newPaperFixture(papers, &fakeQuestionClient{})

	_, err := svc.Publish(context.Background(), testSession(), "p-1")

	assertErrorCode(t, err, appErrors.ErrPublished.Code)
	assert.Zero(t, papers.publishCalls)
}

func TestPublishCompletePaper(t *testing.T) {
	papers := newFakePaperClient(models.Paper{ID: "p-1", QuestionCount: 40, AuthoredCount: 40})
	svc := newPaperFixture(papers, &fakeQuestionClient{})

	view, err := svc.Publish(context.Background(), testSession(), "p-1")
	require.NoError(t, err)

	assert.Equal(t, models.PaperPublished, view.DerivedStatus)
	assert.False(t, view.QuestionsEditable)
	assert.Equal(t, 1, papers.publishCalls)
}

func TestPublishedPaperLocksQuestionEditing(t *testing.T) {
	papers := newFakePaperClient(models.Paper{ID: "p-1", QuestionCount: 2, AuthoredCount: 2, IsPublished: true})
	questions := &fakeQuestionClient{}
	svc := newPaperFixture(papers, questions)
	sess := testSession()

	_, err := svc.CreateQuestion(context.Background(), sess, "p-1", CreateQuestionRequest{
		Prompt:         "2 + 2 = ?",
		Answers:        []string{"3", "4"},
		CorrectIndexes: []int{1},
	})
	assertErrorCode(t, err, appErrors.ErrPublished.Code)

	_, err = svc.UpdateQuestion(context.Background(), sess, "p-1", "q-1", UpdateQuestionRequest{
		Prompt:       "2 + 2 = ?",
		Answers:      []string{"3", "4"},
		CorrectIndex: 1,
	})
	assertErrorCode(t, err, appErrors.ErrPublished.Code)

	err = svc.DeleteQuestion(context.Background(), sess, "p-1", "q-1")
	assertErrorCode(t, err, appErrors.ErrPublished.Code)

	assert.Zero(t, questions.creates)
	assert.Zero(t, questions.updates)
	assert.Zero(t, questions.deletes)
}

func TestCreateQuestionAcceptsTwoCorrectIndexes(t *testing.T) {
	papers := newFakePaperClient(models.Paper{ID: "p-1", QuestionCount: 10})
	questions := &fakeQuestionClient{}
	svc := newPaperFixture(papers, questions)

	q, err := svc.CreateQuestion(context.Background(), testSession(), "p-1", CreateQuestionRequest{
		Prompt:         "Pick the even numbers",
		Answers:        []string{"1", "2", "3", "4"},
		CorrectIndexes: []int{1, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, q.CorrectIndexes)
}

func TestCreateQuestionRejectsThreeCorrectIndexes(t *testing.T) {
	papers := newFakePaperClient(models.Paper{ID: "p-1", QuestionCount: 10})
	questions := &fakeQuestionClient{}
	svc := newPaperFixture(papers, questions)

	_, err := svc.CreateQuestion(context.Background(), testSession(), "p-1", CreateQuestionRequest{
		Prompt:         "Pick three",
		Answers:        []string{"1", "2", "3", "4"},
		CorrectIndexes: []int{0, 1, 2},
	})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
	assert.Zero(t, questions.creates)
}

func TestCreateQuestionRejectsOutOfRangeIndex(t *testing.T) {
	papers := newFakePaperClient(models.Paper{ID: "p-1", QuestionCount: 10})
	questions := &fakeQuestionClient{}
	svc := newPaperFixture(papers, questions)

	_, err := svc.CreateQuestion(context.Background(), testSession(), "p-1", CreateQuestionRequest{
		Prompt:         "Out of range",
		Answers:        []string{"a", "b"},
		CorrectIndexes: []int{2},
	})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
	assert.Zero(t, questions.creates)
}

func TestUpdateQuestionCarriesSingleIndex(t *testing.T) {
	papers := newFakePaperClient(models.Paper{ID: "p-1", QuestionCount: 10})
	questions := &fakeQuestionClient{}
	svc := newPaperFixture(papers, questions)

	q, err := svc.UpdateQuestion(context.Background(), testSession(), "p-1", "q-1", UpdateQuestionRequest{
		Prompt:       "Updated prompt",
		Answers:      []string{"a", "b", "c"},
		CorrectIndex: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, q.CorrectIndexes)
	assert.Equal(t, 1, questions.updates)
}

func TestPaperRequestBindingShape(t *testing.T) {
	svc := newPaperFixture(newFakePaperClient(), &fakeQuestionClient{})

	both := validPaperRequest()
	both.StreamID = "stream-1"
	both.StreamSubjectID = "ss-1"
	_, err := svc.Create(context.Background(), testSession(), both)
	assertErrorCode(t, err, appErrors.ErrValidation.Code)

	neither := validPaperRequest()
	neither.SubjectID = ""
	_, err = svc.Create(context.Background(), testSession(), neither)
	assertErrorCode(t, err, appErrors.ErrValidation.Code)

	streamOnly := validPaperRequest()
	streamOnly.SubjectID = ""
	streamOnly.StreamID = "stream-1"
	streamOnly.StreamSubjectID = "ss-1"
	_, err = svc.Create(context.Background(), testSession(), streamOnly)
	require.NoError(t, err)
}

func TestGetDecoratesPaper(t *testing.T) {
	papers := newFakePaperClient(models.Paper{ID: "p-1", QuestionCount: 5, AuthoredCount: 5})
	svc := newPaperFixture(papers, &fakeQuestionClient{})

	view, err := svc.Get(context.Background(), testSession(), "p-1")
	require.NoError(t, err)

	assert.Equal(t, models.PaperComplete, view.DerivedStatus)
	assert.True(t, view.QuestionsEditable)
}
