package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-admin-gateway/internal/middleware"
	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	"github.com/noah-isme/edu-admin-gateway/internal/service"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

type stubStudentClient struct {
	students       map[string]*models.Student
	setActiveCalls int
}

func (f *stubStudentClient) List(ctx context.Context, token string, filter models.StudentFilter) ([]models.Student, error) {
	out := make([]models.Student, 0, len(f.students))
	for _, st := range f.students {
		out = append(out, *st)
	}
	return out, nil
}

func (f *stubStudentClient) Get(ctx context.Context, token, id string) (*models.Student, error) {
	st, ok := f.students[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	copied := *st
	return &copied, nil
}

func (f *stubStudentClient) SetActive(ctx context.Context, token, id string, active bool) (*models.Student, error) {
	f.setActiveCalls++
	st := f.students[id]
	st.IsActive = active
	copied := *st
	return &copied, nil
}

type stubFilterStore struct {
	saved map[string][]byte
}

func (f *stubFilterStore) Load(ctx context.Context, userID, screen string, dest interface{}) error {
	raw, ok := f.saved[userID+":"+screen]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *stubFilterStore) Save(ctx context.Context, userID, screen string, state interface{}) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	f.saved[userID+":"+screen] = raw
	return nil
}

func newStudentRouter(t *testing.T, client *stubStudentClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := query.NewStore(4, nil, nil)
	svc := service.NewStudentService(store, client, &stubFilterStore{saved: map[string][]byte{}}, nil, nil)
	h := NewStudentHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.Session{UserID: "admin-1", Token: "t", Role: models.RoleAdmin})
	})
	r.GET("/students", h.List)
	r.POST("/students/search", h.Search)
	r.GET("/students/page", h.Page)
	r.GET("/students/:id", h.Get)
	r.PATCH("/students/:id/ban", h.Ban)
	r.PATCH("/students/:id/unban", h.Unban)
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestStudentListEndpoint(t *testing.T) {
	client := &stubStudentClient{students: map[string]*models.Student{
		"s-1": {ID: "s-1", FullName: "Nimal Perera", IsActive: true},
	}}
	r := newStudentRouter(t, client)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	payload, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	students, ok := payload["students"].([]interface{})
	require.True(t, ok)
	assert.Len(t, students, 1)
	filter, ok := payload["filter"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, filter["page"])
}

func TestStudentSearchEndpointResetsPage(t *testing.T) {
	client := &stubStudentClient{students: map[string]*models.Student{}}
	r := newStudentRouter(t, client)

	body := strings.NewReader(`{"district":"Kandy","page":9}`)
	req := httptest.NewRequest(http.MethodPost, "/students/search", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	payload := env.Data.(map[string]interface{})
	filter := payload["filter"].(map[string]interface{})
	assert.EqualValues(t, 1, filter["page"])
	assert.Equal(t, "Kandy", filter["district"])
}

func TestStudentSearchEndpointRejectsBadJSON(t *testing.T) {
	r := newStudentRouter(t, &stubStudentClient{students: map[string]*models.Student{}})

	req := httptest.NewRequest(http.MethodPost, "/students/search", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)
}

func TestStudentBanEndpointIsIdempotent(t *testing.T) {
	client := &stubStudentClient{students: map[string]*models.Student{
		"s-1": {ID: "s-1", IsActive: false},
	}}
	r := newStudentRouter(t, client)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/students/s-1/ban", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, client.setActiveCalls)
}

func TestStudentGetEndpointNotFound(t *testing.T) {
	r := newStudentRouter(t, &stubStudentClient{students: map[string]*models.Student{}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/ghost", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, env.Error.Code)
}
