package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

type fakeEnrollmentClient struct {
	requests  map[string]*models.EnrollmentRequest
	listCalls int
}

func newFakeEnrollmentClient(requests ...models.EnrollmentRequest) *fakeEnrollmentClient {
	f := &fakeEnrollmentClient{requests: map[string]*models.EnrollmentRequest{}}
	for i := range requests {
		f.requests[requests[i].ID] = &requests[i]
	}
	return f
}

func (f *fakeEnrollmentClient) List(ctx context.Context, token string, state models.EnrollmentState) ([]models.EnrollmentRequest, error) {
	f.listCalls++
	out := make([]models.EnrollmentRequest, 0, len(f.requests))
	for _, r := range f.requests {
		if r.State == state {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentClient) Transition(ctx context.Context, token, id string, state models.EnrollmentState) (*models.EnrollmentRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	r.State = state
	copied := *r
	return &copied, nil
}

func newEnrollmentFixture(client *fakeEnrollmentClient) *EnrollmentService {
	store := query.NewStore(4, nil, nil)
	return NewEnrollmentService(store, client, nil)
}

func TestApprovalRemovesRequestFromPendingInbox(t *testing.T) {
	client := newFakeEnrollmentClient(
		models.EnrollmentRequest{ID: "e-1", StudentID: "s-1", ClassID: "c-1", State: models.EnrollmentPending},
		models.EnrollmentRequest{ID: "e-2", StudentID: "s-2", ClassID: "c-1", State: models.EnrollmentPending},
	)
	svc := newEnrollmentFixture(client)
	sess := testSession()

	pending, err := svc.Pending(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	decided, err := svc.Approve(context.Background(), sess, "e-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentApproved, decided.State)

	pending, err = svc.Pending(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "e-2", pending[0].ID)
	assert.Equal(t, 2, client.listCalls)
}

func TestRejectKeepsOtherRequestsPending(t *testing.T) {
	client := newFakeEnrollmentClient(
		models.EnrollmentRequest{ID: "e-1", StudentID: "s-1", ClassID: "c-1", State: models.EnrollmentPending},
	)
	svc := newEnrollmentFixture(client)

	decided, err := svc.Reject(context.Background(), testSession(), "e-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentRejected, decided.State)
}

func TestTransitionRequiresID(t *testing.T) {
	svc := newEnrollmentFixture(newFakeEnrollmentClient())

	_, err := svc.Approve(context.Background(), testSession(), "")
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
}
