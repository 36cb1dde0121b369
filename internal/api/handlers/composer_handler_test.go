package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crosspost-app/composer-api/internal/composer"
	"github.com/crosspost-app/composer-api/internal/models"
	"github.com/crosspost-app/composer-api/internal/service"
	"github.com/crosspost-app/composer-api/internal/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubComposer returns canned values so the handler layer can be exercised
// without repositories or collaborators.
type stubComposer struct {
	sess     *composer.CompositionSession
	decision composer.GateDecision
	outcome  *service.SubmitOutcome
	err      error
	genErr   error
}

func (s *stubComposer) CreateSession(context.Context) (*composer.CompositionSession, error) {
	return s.sess, s.err
}

func (s *stubComposer) GetSession(context.Context, string) (*composer.CompositionSession, error) {
	return s.sess, s.err
}

func (s *stubComposer) UpdateDraft(context.Context, string, *transfer.DraftUpdate) (*composer.CompositionSession, error) {
	return s.sess, s.err
}

func (s *stubComposer) AttachMedia(context.Context, string, []*multipart.FileHeader, []int) (*composer.CompositionSession, error) {
	return s.sess, s.err
}

func (s *stubComposer) RemoveMedia(context.Context, string, string) (*composer.CompositionSession, error) {
	return s.sess, s.err
}

func (s *stubComposer) ToggleSelection(context.Context, string, int64, string) (composer.GateDecision, *composer.CompositionSession, error) {
	return s.decision, s.sess, s.err
}

func (s *stubComposer) ResolveConfirmation(context.Context, string, bool) (*composer.CompositionSession, error) {
	return s.sess, s.err
}

func (s *stubComposer) SelectAll(context.Context, string) (*composer.CompositionSession, error) {
	return s.sess, s.err
}

func (s *stubComposer) DeselectAll(context.Context, string) (*composer.CompositionSession, error) {
	return s.sess, s.err
}

func (s *stubComposer) DiscardContent(context.Context, string, string) (*composer.CompositionSession, error) {
	return s.sess, s.err
}

func (s *stubComposer) Validation(context.Context, string) (composer.ValidationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return composer.ValidationResult{1: {"requires a video"}}, nil
}

func (s *stubComposer) History(context.Context, string) ([]*models.PostingHistory, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*models.PostingHistory{{SessionID: "ses_test", AccountCount: 1}}, nil
}

func (s *stubComposer) Generate(context.Context, string, []string) (*composer.CompositionSession, error) {
	if s.genErr != nil {
		return s.sess, s.genErr
	}
	return s.sess, s.err
}

func (s *stubComposer) Submit(context.Context, string, *transfer.SubmissionOptions) (*service.SubmitOutcome, error) {
	return s.outcome, s.err
}

func (s *stubComposer) PurgeStale(context.Context, time.Time) error {
	return s.err
}

func testApp(stub *stubComposer) *fiber.App {
	app := fiber.New()
	h := NewComposerHandler(stub)
	api := app.Group("/api")
	api.Post("/sessions", h.CreateSession)
	api.Get("/sessions/:id", h.GetSession)
	api.Post("/sessions/:id/media/remove", h.RemoveMedia)
	api.Post("/sessions/:id/selection/toggle", h.ToggleSelection)
	api.Get("/sessions/:id/validation", h.Validation)
	api.Post("/sessions/:id/generate", h.Generate)
	api.Post("/sessions/:id/submit", h.Submit)
	return app
}

func testSession() *composer.CompositionSession {
	return composer.NewCompositionSession("ses_test", []composer.Account{
		{ID: 1, PlatformID: composer.PlatformFacebook, DisplayName: "FB Page", Connected: true},
	})
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestCreateSessionRespondsWithVariants(t *testing.T) {
	app := testApp(&stubComposer{sess: testSession()})

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decode(t, resp)
	sess, ok := body["session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ses_test", sess["id"])
	variants, ok := body["variants"].([]any)
	require.True(t, ok)
	assert.Len(t, variants, 2)
}

func TestGetSessionNotFound(t *testing.T) {
	app := testApp(&stubComposer{err: service.ErrSessionNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/ses_missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRemoveMediaUnknownIDIsNotFound(t *testing.T) {
	app := testApp(&stubComposer{err: service.ErrMediaNotAttached})

	payload, _ := json.Marshal(transfer.MediaRemove{MediaID: "gone"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/ses_test/media/remove", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestToggleRespondsWithDecision(t *testing.T) {
	app := testApp(&stubComposer{sess: testSession(), decision: composer.DecisionPending})

	payload, _ := json.Marshal(transfer.SelectionToggle{AccountID: 1, PostTypeID: "page"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/ses_test/selection/toggle", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "pending_confirmation", body["decision"])
	assert.NotNil(t, body["session"])
}

func TestValidationStringifiesAccountIDs(t *testing.T) {
	app := testApp(&stubComposer{sess: testSession()})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/ses_test/validation", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	violations, ok := body["violations"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, violations, "1")
}

func TestGenerateFailureReturnsSession(t *testing.T) {
	sess := testSession()
	sess.GenerationError = "model unavailable"
	app := testApp(&stubComposer{sess: sess, genErr: errors.New("model unavailable")})

	payload, _ := json.Marshal(transfer.GenerationTrigger{PlatformType: []string{"facebook-page"}})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/ses_test/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "model unavailable", body["error"])
	assert.NotNil(t, body["session"])
}

func TestSubmitMapsOutcomeAndErrors(t *testing.T) {
	app := testApp(&stubComposer{sess: testSession(), outcome: &service.SubmitOutcome{Scheduled: true}})

	payload, _ := json.Marshal(transfer.SubmissionOptions{ScheduledAt: "2099-05-01T10:00:00Z"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/ses_test/submit", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Post scheduled successfully", decode(t, resp)["message"])

	app = testApp(&stubComposer{err: service.ErrSubmissionInFlight})
	req = httptest.NewRequest(http.MethodPost, "/api/sessions/ses_test/submit", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
