package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etdpk/etdclient/internal/entity"
)

func newApplicationService(api *fakeAPI, nadra, passport *fakeVerifier) *ApplicationService {
	cfg := newTestConfig()
	store := newMemoryTokenStore()
	auth := NewAuthManager(cfg, api, store, &fakeNav{})

	return NewApplicationService(auth, store, nadra, passport)
}

func TestApplicationService_Create(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.respond("/applications", jsonResult(http.StatusCreated,
		`{"id":"a1","first_name":"Ali","last_name":"Khan","citizen_id":"12345-1234567-1","status":"DRAFT"}`))

	svc := newApplicationService(api, &fakeVerifier{}, &fakeVerifier{})

	created, err := svc.Create(context.Background(), entity.Application{
		FirstName: "Ali",
		LastName:  "Khan",
		CitizenID: "1234512345671",
	})
	require.NoError(t, err)
	require.Equal(t, "a1", created.ID)
	require.Equal(t, entity.StatusDraft, created.Status)
}

func TestApplicationService_Create_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		app  entity.Application
		want error
	}{
		{
			name: "first name required",
			app:  entity.Application{LastName: "Khan", CitizenID: "12345-1234567-1"},
			want: entity.ErrFirstNameRequired,
		},
		{
			name: "last name required",
			app:  entity.Application{FirstName: "Ali", CitizenID: "12345-1234567-1"},
			want: entity.ErrLastNameRequired,
		},
		{
			name: "citizen id required",
			app:  entity.Application{FirstName: "Ali", LastName: "Khan"},
			want: entity.ErrCitizenIDRequired,
		},
		{
			name: "bad cnic format",
			app:  entity.Application{FirstName: "Ali", LastName: "Khan", CitizenID: "12-34-56"},
			want: entity.ErrCitizenIDFormat,
		},
		{
			name: "birth date in the future",
			app: entity.Application{
				FirstName: "Ali", LastName: "Khan",
				CitizenID: "12345-1234567-1", DateOfBirth: "2999-01-01",
			},
			want: entity.ErrBirthDateInFuture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newFakeAPI()
			svc := newApplicationService(api, &fakeVerifier{}, &fakeVerifier{})

			_, err := svc.Create(context.Background(), tt.app)
			require.ErrorIs(t, err, tt.want)
			require.Empty(t, api.calls)
		})
	}
}

func TestApplicationService_StatusTransitionGuards(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	svc := newApplicationService(api, &fakeVerifier{}, &fakeVerifier{})

	ctx := context.Background()

	err := svc.Submit(ctx, entity.Application{ID: "a1", Status: entity.StatusApproved})
	require.ErrorIs(t, err, entity.ErrStatusTransition)

	err = svc.Approve(ctx, entity.Application{ID: "a1", Status: entity.StatusDraft}, "")
	require.ErrorIs(t, err, entity.ErrStatusTransition)

	err = svc.Reject(ctx, entity.Application{ID: "a1", Status: entity.StatusCompleted}, "late")
	require.ErrorIs(t, err, entity.ErrStatusTransition)

	require.Empty(t, api.calls)

	require.NoError(t, svc.Submit(ctx, entity.Application{ID: "a1", Status: entity.StatusDraft}))
	require.NoError(t, svc.Approve(ctx, entity.Application{ID: "a1", Status: entity.StatusUnderReview}, "all good"))
}

func TestApplicationService_List_FiltersByStatus(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.respond("/applications?status=SUBMITTED", jsonResult(http.StatusOK,
		`{"applications":[{"id":"a1","status":"SUBMITTED"}]}`))

	svc := newApplicationService(api, &fakeVerifier{}, &fakeVerifier{})

	apps, err := svc.List(context.Background(), entity.StatusSubmitted)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Equal(t, "a1", apps[0].ID)
}

func TestApplicationService_Get_NotFound(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.respond("/applications/missing", errorResult(http.StatusNotFound, "application not found"))

	svc := newApplicationService(api, &fakeVerifier{}, &fakeVerifier{})

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestApplicationService_VerifyIdentity_JoinsBothRegistries(t *testing.T) {
	t.Parallel()

	nadra := &fakeVerifier{}
	passport := &fakeVerifier{}
	svc := newApplicationService(newFakeAPI(), nadra, passport)

	outcome, err := svc.VerifyIdentity(context.Background(), "1234512345671", "AA1234567")
	require.NoError(t, err)
	require.True(t, outcome.Nadra.OK())
	require.True(t, outcome.Passport.OK())

	// normalization happened before the calls went out
	require.Equal(t, []string{"12345-1234567-1"}, nadra.citizens)
	require.Equal(t, []string{"12345-1234567-1"}, passport.citizens)
}

func TestApplicationService_VerifyIdentity_SkipsPassportWithoutNumber(t *testing.T) {
	t.Parallel()

	nadra := &fakeVerifier{}
	passport := &fakeVerifier{}
	svc := newApplicationService(newFakeAPI(), nadra, passport)

	outcome, err := svc.VerifyIdentity(context.Background(), "12345-1234567-1", "")
	require.NoError(t, err)
	require.True(t, outcome.Nadra.OK())
	require.Nil(t, outcome.Passport)
	require.Empty(t, passport.citizens)
}

func TestApplicationService_VerifyIdentity_ToleratesPartialFailure(t *testing.T) {
	t.Parallel()

	nadra := &fakeVerifier{}
	passport := &fakeVerifier{result: &entity.VerificationResult{
		Status:       entity.VerificationError,
		ErrorCode:    "API_ERROR",
		ErrorMessage: "passport registry down",
	}}

	svc := newApplicationService(newFakeAPI(), nadra, passport)

	outcome, err := svc.VerifyIdentity(context.Background(), "12345-1234567-1", "AA1234567")
	require.NoError(t, err)
	require.True(t, outcome.Nadra.OK())
	require.False(t, outcome.Passport.OK())
	require.Equal(t, "passport registry down", outcome.Passport.ErrorMessage)
}

func TestApplicationService_VerifyIdentity_RejectsBadCNIC(t *testing.T) {
	t.Parallel()

	nadra := &fakeVerifier{}
	svc := newApplicationService(newFakeAPI(), nadra, &fakeVerifier{})

	_, err := svc.VerifyIdentity(context.Background(), "not-a-cnic", "")
	require.ErrorIs(t, err, entity.ErrCitizenIDFormat)
	require.Empty(t, nadra.citizens)
}

func TestApplicationService_VerifyIdentityCachesResponses(t *testing.T) {
	t.Parallel()

	svc := newApplicationService(newFakeAPI(), &fakeVerifier{}, &fakeVerifier{})

	require.Equal(t, VerificationOutcome{}, svc.LastVerification())

	_, err := svc.VerifyIdentity(context.Background(), "1234512345671", "AA1234567")
	require.NoError(t, err)

	cached := svc.LastVerification()
	require.True(t, cached.Nadra.OK())
	require.True(t, cached.Passport.OK())
	require.Equal(t, "12345-1234567-1", cached.Nadra.CitizenID)
}
