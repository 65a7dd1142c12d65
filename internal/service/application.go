package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/etdpk/etdclient/internal/clients/etdapi"
	"github.com/etdpk/etdclient/internal/clients/verification"
	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/internal/repository"
	"github.com/etdpk/etdclient/pkg/logger"
)

// Fetcher issues authenticated backend requests with the one-shot 401
// refresh-and-retry behavior.
type Fetcher interface {
	AuthFetch(ctx context.Context, method, endpoint string, body any) etdapi.Result
}

// ApplicationService shapes ETD applications for the backend and drives the
// identity verification flow.
type ApplicationService struct {
	fetch    Fetcher
	store    *repository.TokenStore
	nadra    verification.ClientInterface
	passport verification.ClientInterface
}

func NewApplicationService(
	fetch Fetcher,
	store *repository.TokenStore,
	nadra verification.ClientInterface,
	passport verification.ClientInterface,
) *ApplicationService {
	return &ApplicationService{
		fetch:    fetch,
		store:    store,
		nadra:    nadra,
		passport: passport,
	}
}

func (s *ApplicationService) Create(ctx context.Context, app entity.Application) (entity.Application, error) {
	app.CitizenID = NormalizeCitizenID(app.CitizenID)

	if err := ValidateApplication(app); err != nil {
		return entity.Application{}, err
	}

	if app.Status == "" {
		app.Status = entity.StatusDraft
	}

	res := s.fetch.AuthFetch(ctx, http.MethodPost, "/applications", app)
	if err := res.Err(); err != nil {
		return entity.Application{}, err
	}

	var created entity.Application
	if err := res.Decode(&created); err != nil {
		return entity.Application{}, fmt.Errorf("decode application: %w", err)
	}

	s.store.ClearDraft()

	return created, nil
}

func (s *ApplicationService) Get(ctx context.Context, id string) (entity.Application, error) {
	res := s.fetch.AuthFetch(ctx, http.MethodGet, "/applications/"+url.PathEscape(id), nil)
	if err := res.Err(); err != nil {
		return entity.Application{}, err
	}

	var app entity.Application
	if err := res.Decode(&app); err != nil {
		return entity.Application{}, fmt.Errorf("decode application: %w", err)
	}

	return app, nil
}

func (s *ApplicationService) List(ctx context.Context, status entity.ApplicationStatus) ([]entity.Application, error) {
	endpoint := "/applications"
	if status != "" {
		endpoint += "?" + url.Values{"status": {string(status)}}.Encode()
	}

	res := s.fetch.AuthFetch(ctx, http.MethodGet, endpoint, nil)
	if err := res.Err(); err != nil {
		return nil, err
	}

	var payload struct {
		Applications []entity.Application `json:"applications"`
	}
	if err := res.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}

	return payload.Applications, nil
}

func (s *ApplicationService) Update(ctx context.Context, id string, app entity.Application) (entity.Application, error) {
	app.CitizenID = NormalizeCitizenID(app.CitizenID)

	if err := ValidateApplication(app); err != nil {
		return entity.Application{}, err
	}

	res := s.fetch.AuthFetch(ctx, http.MethodPut, "/applications/"+url.PathEscape(id), app)
	if err := res.Err(); err != nil {
		return entity.Application{}, err
	}

	var updated entity.Application
	if err := res.Decode(&updated); err != nil {
		return entity.Application{}, fmt.Errorf("decode application: %w", err)
	}

	return updated, nil
}

func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	res := s.fetch.AuthFetch(ctx, http.MethodDelete, "/applications/"+url.PathEscape(id), nil)

	return res.Err()
}

// Submit moves a draft into the workflow. The transition is checked locally
// so an out-of-date screen fails before the round trip.
func (s *ApplicationService) Submit(ctx context.Context, app entity.Application) error {
	if !app.Status.CanTransitionTo(entity.StatusSubmitted) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrStatusTransition, app.Status, entity.StatusSubmitted)
	}

	res := s.fetch.AuthFetch(ctx, http.MethodPost, "/applications/"+url.PathEscape(app.ID)+"/submit", nil)

	return res.Err()
}

func (s *ApplicationService) Review(ctx context.Context, app entity.Application) error {
	if !app.Status.CanTransitionTo(entity.StatusUnderReview) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrStatusTransition, app.Status, entity.StatusUnderReview)
	}

	res := s.fetch.AuthFetch(ctx, http.MethodPost, "/applications/"+url.PathEscape(app.ID)+"/review", nil)

	return res.Err()
}

func (s *ApplicationService) Approve(ctx context.Context, app entity.Application, remarks string) error {
	if !app.Status.CanTransitionTo(entity.StatusApproved) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrStatusTransition, app.Status, entity.StatusApproved)
	}

	res := s.fetch.AuthFetch(ctx, http.MethodPost, "/applications/"+url.PathEscape(app.ID)+"/approve",
		map[string]string{"remarks": remarks})

	return res.Err()
}

func (s *ApplicationService) Reject(ctx context.Context, app entity.Application, remarks string) error {
	if !app.Status.CanTransitionTo(entity.StatusRejected) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrStatusTransition, app.Status, entity.StatusRejected)
	}

	res := s.fetch.AuthFetch(ctx, http.MethodPost, "/applications/"+url.PathEscape(app.ID)+"/reject",
		map[string]string{"remarks": remarks})

	return res.Err()
}

func (s *ApplicationService) GenerateTracking(ctx context.Context, id string) (string, error) {
	res := s.fetch.AuthFetch(ctx, http.MethodPost, "/applications/"+url.PathEscape(id)+"/generate-tracking", nil)
	if err := res.Err(); err != nil {
		return "", err
	}

	var payload struct {
		TrackingID string `json:"tracking_id"`
	}
	if err := res.Decode(&payload); err != nil {
		return "", fmt.Errorf("decode tracking response: %w", err)
	}

	return payload.TrackingID, nil
}

// VerificationOutcome joins the registry lookups that run for one citizen.
// Each result carries its own success flag; a failed passport check does not
// discard a good NADRA answer.
type VerificationOutcome struct {
	Nadra    *entity.VerificationResult
	Passport *entity.VerificationResult
}

// VerifyIdentity runs the NADRA lookup and, when a passport number is given,
// the passport check concurrently. Both are issued together and joined.
func (s *ApplicationService) VerifyIdentity(ctx context.Context, citizenID, passportNumber string) (VerificationOutcome, error) {
	citizenID = NormalizeCitizenID(citizenID)

	if err := ValidateCitizenID(citizenID); err != nil {
		return VerificationOutcome{}, err
	}

	var outcome VerificationOutcome

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		outcome.Nadra = s.nadra.Verify(groupCtx, citizenID, "")
		return nil
	})

	if passportNumber != "" {
		group.Go(func() error {
			outcome.Passport = s.passport.Verify(groupCtx, citizenID, passportNumber)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return VerificationOutcome{}, err
	}

	// cached so the verification screen can re-render without re-querying
	s.store.SaveResponseData("nadra_response", outcome.Nadra)
	if outcome.Passport != nil {
		s.store.SaveResponseData("passport_response", outcome.Passport)
	}

	logger.FromContext(ctx).InfoContext(ctx, "identity verification finished",
		"citizen_id", citizenID,
		"nadra_ok", outcome.Nadra.OK(),
		"passport_checked", outcome.Passport != nil,
		"passport_ok", outcome.Passport.OK())

	return outcome, nil
}

// LastVerification returns the cached registry responses from the most
// recent lookup, if any.
func (s *ApplicationService) LastVerification() VerificationOutcome {
	var outcome VerificationOutcome

	var nadra entity.VerificationResult
	if s.store.LoadResponseData("nadra_response", &nadra) {
		outcome.Nadra = &nadra
	}

	var passport entity.VerificationResult
	if s.store.LoadResponseData("passport_response", &passport) {
		outcome.Passport = &passport
	}

	return outcome
}

// SaveDraft caches form state so a page reload does not lose typed input.
// The cache is a convenience only, never the source of truth.
func (s *ApplicationService) SaveDraft(app entity.Application) {
	s.store.SaveDraft(app)
}

func (s *ApplicationService) LoadDraft() (entity.Application, bool) {
	return s.store.LoadDraft()
}
