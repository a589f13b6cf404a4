package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

type fakeStudentClient struct {
	students       map[string]*models.Student
	setActiveCalls int
}

func newFakeStudentClient(students ...models.Student) *fakeStudentClient {
	f := &fakeStudentClient{students: map[string]*models.Student{}}
	for i := range students {
		f.students[students[i].ID] = &students[i]
	}
	return f
}

func (f *fakeStudentClient) List(ctx context.Context, token string, filter models.StudentFilter) ([]models.Student, error) {
	out := make([]models.Student, 0, len(f.students))
	for _, st := range f.students {
		out = append(out, *st)
	}
	return out, nil
}

func (f *fakeStudentClient) Get(ctx context.Context, token, id string) (*models.Student, error) {
	st, ok := f.students[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	copied := *st
	return &copied, nil
}

func (f *fakeStudentClient) SetActive(ctx context.Context, token, id string, active bool) (*models.Student, error) {
	f.setActiveCalls++
	st, ok := f.students[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	st.IsActive = active
	copied := *st
	return &copied, nil
}

// fakeFilterStore mimics the Redis-backed store with a JSON round trip so
// struct semantics match production.
type fakeFilterStore struct {
	saved map[string][]byte
}

func newFakeFilterStore() *fakeFilterStore {
	return &fakeFilterStore{saved: map[string][]byte{}}
}

func (f *fakeFilterStore) Load(ctx context.Context, userID, screen string, dest interface{}) error {
	raw, ok := f.saved[userID+":"+screen]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeFilterStore) Save(ctx context.Context, userID, screen string, state interface{}) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	f.saved[userID+":"+screen] = raw
	return nil
}

func newStudentFixture(client *fakeStudentClient, filters *fakeFilterStore) *StudentService {
	store := query.NewStore(4, nil, nil)
	return NewStudentService(store, client, filters, nil, nil)
}

func TestFilterDefaultsToPageOne(t *testing.T) {
	svc := newStudentFixture(newFakeStudentClient(), newFakeFilterStore())

	filter, err := svc.Filter(context.Background(), testSession())
	require.NoError(t, err)

	assert.Equal(t, models.StudentFilter{Page: 1}, filter)
}

func TestSearchResetsToPageOneAndPersists(t *testing.T) {
	filters := newFakeFilterStore()
	svc := newStudentFixture(newFakeStudentClient(models.Student{ID: "s-1", IsActive: true}), filters)
	sess := testSession()

	_, applied, err := svc.Search(context.Background(), sess, models.StudentFilter{
		District: "Colombo",
		Page:     7,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, applied.Page, "a fresh search never resumes a stale page")

	// The reset filter is what later screen entries load back.
	saved, err := svc.Filter(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "Colombo", saved.District)
	assert.Equal(t, 1, saved.Page)
}

func TestPagePreservesSearchTerms(t *testing.T) {
	filters := newFakeFilterStore()
	svc := newStudentFixture(newFakeStudentClient(), filters)
	sess := testSession()

	_, _, err := svc.Search(context.Background(), sess, models.StudentFilter{Level: "ordinary"})
	require.NoError(t, err)

	_, applied, err := svc.Page(context.Background(), sess, 3)
	require.NoError(t, err)
	assert.Equal(t, "ordinary", applied.Level)
	assert.Equal(t, 3, applied.Page)
}

func TestPageClampsBelowOne(t *testing.T) {
	svc := newStudentFixture(newFakeStudentClient(), newFakeFilterStore())

	_, applied, err := svc.Page(context.Background(), testSession(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, applied.Page)
}

func TestBanAlreadyBannedIsNoOp(t *testing.T) {
	client := newFakeStudentClient(models.Student{ID: "s-1", IsActive: false})
	svc := newStudentFixture(client, newFakeFilterStore())

	student, err := svc.Ban(context.Background(), testSession(), "s-1")
	require.NoError(t, err)

	assert.False(t, student.IsActive)
	assert.Zero(t, client.setActiveCalls, "repeating a ban must not hit the backend")
}

func TestUnbanActiveStudentIsNoOp(t *testing.T) {
	client := newFakeStudentClient(models.Student{ID: "s-1", IsActive: true})
	svc := newStudentFixture(client, newFakeFilterStore())

	student, err := svc.Unban(context.Background(), testSession(), "s-1")
	require.NoError(t, err)

	assert.True(t, student.IsActive)
	assert.Zero(t, client.setActiveCalls)
}

func TestBanActiveStudent(t *testing.T) {
	client := newFakeStudentClient(models.Student{ID: "s-1", IsActive: true})
	svc := newStudentFixture(client, newFakeFilterStore())

	student, err := svc.Ban(context.Background(), testSession(), "s-1")
	require.NoError(t, err)

	assert.False(t, student.IsActive)
	assert.Equal(t, 1, client.setActiveCalls)
}

func TestBanRefreshesCachedStudent(t *testing.T) {
	client := newFakeStudentClient(models.Student{ID: "s-1", IsActive: true})
	svc := newStudentFixture(client, newFakeFilterStore())
	sess := testSession()

	before, err := svc.Get(context.Background(), sess, "s-1")
	require.NoError(t, err)
	require.True(t, before.IsActive)

	_, err = svc.Ban(context.Background(), sess, "s-1")
	require.NoError(t, err)

	after, err := svc.Get(context.Background(), sess, "s-1")
	require.NoError(t, err)
	assert.False(t, after.IsActive, "the cached item entry must not survive the ban")
}
