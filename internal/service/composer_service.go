package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"sync"
	"time"

	"github.com/crosspost-app/composer-api/internal/composer"
	"github.com/crosspost-app/composer-api/internal/models"
	"github.com/crosspost-app/composer-api/internal/repository"
	"github.com/crosspost-app/composer-api/internal/transfer"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrSessionNotFound       = errors.New("composition session not found")
	ErrGenerationInFlight    = errors.New("generation already in progress")
	ErrSubmissionInFlight    = errors.New("submission already in progress")
	ErrNoPendingConfirmation = errors.New("no selection is awaiting confirmation")
	ErrMediaNotAttached      = errors.New("media is not attached to this session")
	ErrNoFiles               = errors.New("no files provided")
	ErrInvalidScheduleTime   = errors.New("invalid scheduled time format")
	ErrNoVariantKeys         = errors.New("no variant keys requested for generation")
)

// PurgeFunc hands blob keys off for background deletion; main wires it to
// the asynq media purge task.
type PurgeFunc func(keys []string) error

// SubmitOutcome tells the caller what a successful submit did.
type SubmitOutcome struct {
	Scheduled   bool      `json:"scheduled"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type ComposerService interface {
	CreateSession(ctx context.Context) (*composer.CompositionSession, error)
	GetSession(ctx context.Context, sessionID string) (*composer.CompositionSession, error)
	UpdateDraft(ctx context.Context, sessionID string, update *transfer.DraftUpdate) (*composer.CompositionSession, error)
	AttachMedia(ctx context.Context, sessionID string, files []*multipart.FileHeader, durations []int) (*composer.CompositionSession, error)
	RemoveMedia(ctx context.Context, sessionID, mediaID string) (*composer.CompositionSession, error)
	ToggleSelection(ctx context.Context, sessionID string, accountID int64, postTypeID string) (composer.GateDecision, *composer.CompositionSession, error)
	ResolveConfirmation(ctx context.Context, sessionID string, accept bool) (*composer.CompositionSession, error)
	SelectAll(ctx context.Context, sessionID string) (*composer.CompositionSession, error)
	DeselectAll(ctx context.Context, sessionID string) (*composer.CompositionSession, error)
	DiscardContent(ctx context.Context, sessionID, variantKey string) (*composer.CompositionSession, error)
	Validation(ctx context.Context, sessionID string) (composer.ValidationResult, error)
	History(ctx context.Context, sessionID string) ([]*models.PostingHistory, error)
	Generate(ctx context.Context, sessionID string, platformTypes []string) (*composer.CompositionSession, error)
	Submit(ctx context.Context, sessionID string, opts *transfer.SubmissionOptions) (*SubmitOutcome, error)
	PurgeStale(ctx context.Context, cutoff time.Time) error
}

// sessionGuard serializes state transitions per session and carries the
// in-flight flags for the two asynchronous boundaries. Duplicate triggers are
// rejected, never queued.
type sessionGuard struct {
	mu         sync.Mutex
	generating bool
	submitting bool
	// keys discarded while a generation is in flight; the resolving batch
	// must not resurrect them.
	discarded map[string]struct{}
}

type composerService struct {
	sr    repository.SessionRepository
	ph    repository.PostingHistoryRepository
	ac    AccountService
	ai    AIService
	sb    SubmissionService
	st    BlobStorage
	purge PurgeFunc

	mu     sync.Mutex
	guards map[string]*sessionGuard
}

func NewComposerService(
	sr repository.SessionRepository,
	ph repository.PostingHistoryRepository,
	ac AccountService,
	ai AIService,
	sb SubmissionService,
	st BlobStorage,
	purge PurgeFunc) ComposerService {
	return &composerService{
		sr:     sr,
		ph:     ph,
		ac:     ac,
		ai:     ai,
		sb:     sb,
		st:     st,
		purge:  purge,
		guards: make(map[string]*sessionGuard),
	}
}

func (s *composerService) guard(sessionID string) *sessionGuard {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guards[sessionID]
	if !ok {
		g = &sessionGuard{}
		s.guards[sessionID] = g
	}
	return g
}

func (s *composerService) CreateSession(ctx context.Context) (*composer.CompositionSession, error) {
	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	accounts, err := s.ac.ComposerAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading social accounts: %w", err)
	}

	sess := composer.NewCompositionSession("ses_"+id, accounts)
	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *composerService) loadSession(ctx context.Context, sessionID string) (*composer.CompositionSession, error) {
	payload, err := s.sr.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}

	var sess composer.CompositionSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	// the accounts collaborator is authoritative; refresh on every load so
	// newly disconnected accounts stop being selectable
	accounts, err := s.ac.ComposerAccounts(ctx)
	if err != nil {
		return nil, err
	}
	sess.Selector.SetAccounts(accounts)

	return &sess, nil
}

func (s *composerService) saveSession(ctx context.Context, sess *composer.CompositionSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return s.sr.Save(ctx, sess.ID, payload)
}

func (s *composerService) GetSession(ctx context.Context, sessionID string) (*composer.CompositionSession, error) {
	return s.loadSession(ctx, sessionID)
}

func (s *composerService) UpdateDraft(ctx context.Context, sessionID string, update *transfer.DraftUpdate) (*composer.CompositionSession, error) {
	g := s.guard(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Draft = composer.ManualDraft{Text: update.Text, Title: update.Title, Tags: update.Tags}
	sess.Settings = composer.GenerationSettings{
		BrandName:      update.BrandName,
		CallToAction:   update.CallToAction,
		PostingPurpose: update.PostingPurpose,
		AIPlatform:     update.AIPlatform,
		Hashtags:       update.Hashtags,
	}

	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *composerService) AttachMedia(ctx context.Context, sessionID string, files []*multipart.FileHeader, durations []int) (*composer.CompositionSession, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	g := s.guard(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	for i, file := range files {
		item, data, err := s.buildMediaItem(file, durationAt(durations, i))
		if err != nil {
			s.rollbackUploads(uploaded)
			return nil, err
		}

		// enforce the homogeneous-kind invariant before touching storage, so
		// a rejected mix leaves the prior set untouched
		if err := sess.Media.Add(item); err != nil {
			s.rollbackUploads(uploaded)
			return nil, err
		}

		if err := s.st.Upload(ctx, item.ID, data, item.ContentType); err != nil {
			sess.Media.Remove(item.ID)
			s.rollbackUploads(uploaded)
			return nil, fmt.Errorf("error uploading file: %w", err)
		}
		uploaded = append(uploaded, item.ID)
	}

	if err := s.saveSession(ctx, sess); err != nil {
		s.rollbackUploads(uploaded)
		return nil, err
	}
	return sess, nil
}

func (s *composerService) buildMediaItem(file *multipart.FileHeader, duration int) (composer.MediaItem, []byte, error) {
	fileContent, err := file.Open()
	if err != nil {
		return composer.MediaItem{}, nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return composer.MediaItem{}, nil, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return composer.MediaItem{}, nil, fmt.Errorf("unsupported file type")
	}

	kind, ok := composer.KindForMIME(fileType.MIME.Value)
	if !ok {
		return composer.MediaItem{}, nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return composer.MediaItem{}, nil, err
	}

	item := composer.MediaItem{
		ID:          id,
		Kind:        kind,
		FileName:    file.Filename,
		Extension:   fileType.Extension,
		ContentType: fileType.MIME.Value,
		ByteSize:    int64(len(fileBytes)),
	}

	if kind == composer.MediaKindImage {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(fileBytes)); err == nil {
			item.Width = cfg.Width
			item.Height = cfg.Height
		}
	} else {
		item.DurationSeconds = duration
	}

	return item, fileBytes, nil
}

func durationAt(durations []int, i int) int {
	if i < len(durations) {
		return durations[i]
	}
	return 0
}

func (s *composerService) rollbackUploads(keys []string) {
	if err := s.purge(keys); err != nil {
		slog.Info(err.Error())
	}
}

func (s *composerService) RemoveMedia(ctx context.Context, sessionID, mediaID string) (*composer.CompositionSession, error) {
	g := s.guard(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item, ok := sess.Media.Remove(mediaID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMediaNotAttached, mediaID)
	}

	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}

	// the item is destroyed with its stored blob; deletion is queued so a
	// slow storage backend never blocks the request
	if err := s.purge([]string{item.ID}); err != nil {
		slog.Info(err.Error())
	}

	return sess, nil
}

func (s *composerService) ToggleSelection(ctx context.Context, sessionID string, accountID int64, postTypeID string) (composer.GateDecision, *composer.CompositionSession, error) {
	g := s.guard(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}

	decision := sess.Gate.Request(sess.Selector, sess.Content, accountID, postTypeID)
	if err := s.saveSession(ctx, sess); err != nil {
		return "", nil, err
	}
	return decision, sess, nil
}

func (s *composerService) ResolveConfirmation(ctx context.Context, sessionID string, accept bool) (*composer.CompositionSession, error) {
	g := s.guard(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Gate.Pending() == nil {
		return nil, ErrNoPendingConfirmation
	}

	sess.Gate.Resolve(sess.Selector, accept)
	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *composerService) SelectAll(ctx context.Context, sessionID string) (*composer.CompositionSession, error) {
	g := s.guard(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// select-all grows the selection, so the manual-draft fallback rule
	// applies here too: park the whole assignment when some maximal variant
	// lacks AI content while others have it
	if !sess.Content.IsEmpty() {
		for _, view := range sess.Variants() {
			if view.Selectable && !view.Selected && !sess.Content.Has(view.VariantKey) {
				decision := sess.Gate.Request(sess.Selector, sess.Content, view.AccountID, view.PostTypeID)
				if decision == composer.DecisionPending {
					if err := s.saveSession(ctx, sess); err != nil {
						return nil, err
					}
					return sess, nil
				}
			}
		}
	}

	sess.Selector.SelectAll()
	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *composerService) DeselectAll(ctx context.Context, sessionID string) (*composer.CompositionSession, error) {
	g := s.guard(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Selector.DeselectAll()
	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *composerService) DiscardContent(ctx context.Context, sessionID, variantKey string) (*composer.CompositionSession, error) {
	g := s.guard(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Content.Discard(variantKey)

	// discard wins over any generation still in flight for the same key
	if g.generating {
		if g.discarded == nil {
			g.discarded = make(map[string]struct{})
		}
		g.discarded[variantKey] = struct{}{}
	}

	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *composerService) Validation(ctx context.Context, sessionID string) (composer.ValidationResult, error) {
	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return composer.ValidateMedia(sess.Media, sess.Selector), nil
}

func (s *composerService) History(ctx context.Context, sessionID string) ([]*models.PostingHistory, error) {
	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.ph.ListBySessionID(ctx, sessionID)
}

func (s *composerService) Generate(ctx context.Context, sessionID string, platformTypes []string) (*composer.CompositionSession, error) {
	if len(platformTypes) == 0 {
		return nil, ErrNoVariantKeys
	}
	for _, key := range platformTypes {
		if !composer.KnownKey(key) {
			return nil, fmt.Errorf("unknown variant key %s", key)
		}
	}

	g := s.guard(sessionID)
	g.mu.Lock()
	if g.generating {
		g.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	g.generating = true
	g.discarded = nil

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		g.generating = false
		g.mu.Unlock()
		return nil, err
	}

	genReq := &transfer.GenerationRequest{
		Prompt:         sess.Draft.Text,
		PlatformType:   platformTypes,
		Hashtags:       sess.Settings.Hashtags,
		BrandName:      sess.Settings.BrandName,
		CallToAction:   sess.Settings.CallToAction,
		PostingPurpose: sess.Settings.PostingPurpose,
		AIPlatform:     sess.Settings.AIPlatform,
	}

	// release the session lock for the network call so editing of unrelated
	// variants is never blocked by a slow model
	g.mu.Unlock()
	batch, genErr := s.ai.Generate(ctx, genReq)

	g.mu.Lock()
	defer func() {
		g.generating = false
		g.discarded = nil
		g.mu.Unlock()
	}()

	sess, err = s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		sess.GenerationError = genErr.Error()
		if err := s.saveSession(ctx, sess); err != nil {
			return nil, err
		}
		return sess, genErr
	}

	for key := range g.discarded {
		delete(batch, key)
	}

	sess.GenerationError = ""
	sess.Content.Apply(batch)
	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *composerService) Submit(ctx context.Context, sessionID string, opts *transfer.SubmissionOptions) (*SubmitOutcome, error) {
	assembleOpts := composer.AssembleOptions{PublishImmediately: opts.PublishImmediately}
	if !opts.PublishImmediately && opts.ScheduledAt != "" {
		scheduledAt, err := parseScheduledAt(opts.ScheduledAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, ErrInvalidScheduleTime
		}
		assembleOpts.ScheduledAt = scheduledAt
	}

	g := s.guard(sessionID)
	g.mu.Lock()
	if g.submitting {
		g.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	g.submitting = true

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		g.submitting = false
		g.mu.Unlock()
		return nil, err
	}

	req, err := sess.Assemble(assembleOpts)
	if err != nil {
		g.submitting = false
		g.mu.Unlock()
		return nil, err
	}

	files, err := s.downloadMedia(ctx, req.Media)
	if err != nil {
		g.submitting = false
		g.mu.Unlock()
		return nil, err
	}

	keysInUse := sess.ContentKeysInUse()
	mediaKeys := make([]string, 0, len(req.Media))
	for _, item := range req.Media {
		mediaKeys = append(mediaKeys, item.ID)
	}

	g.mu.Unlock()
	submitErr := s.sb.Submit(ctx, req, files)

	g.mu.Lock()
	defer func() {
		g.submitting = false
		g.mu.Unlock()
	}()

	history := &models.PostingHistory{
		SessionID:    sessionID,
		AccountCount: len(req.PlatformData),
		Scheduled:    !req.PublishImmediately,
	}
	if submitErr != nil {
		history.ErrorMessage = submitErr.Error()
	}
	if _, err := s.ph.Create(ctx, history); err != nil {
		slog.Info(err.Error())
	}

	if submitErr != nil {
		// form state is preserved so the operator can retry
		return nil, submitErr
	}

	sess, err = s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if req.PublishImmediately {
		// selection, content, media and draft clear together, and the stored
		// blobs go with them
		sess.Reset()
		if err := s.saveSession(ctx, sess); err != nil {
			return nil, err
		}
		if err := s.purge(mediaKeys); err != nil {
			slog.Info(err.Error())
		}
	} else {
		// a scheduled handoff keeps the session editable; the AI entries it
		// used become read-only until discarded
		sess.Content.Confirm(keysInUse...)
		if err := s.saveSession(ctx, sess); err != nil {
			return nil, err
		}
	}

	return &SubmitOutcome{Scheduled: !req.PublishImmediately, ScheduledAt: req.ScheduledAt}, nil
}

func parseScheduledAt(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", value)
}

func (s *composerService) downloadMedia(ctx context.Context, items []composer.MediaItem) ([]SubmissionFile, error) {
	files := make([]SubmissionFile, 0, len(items))
	for _, item := range items {
		data, err := s.st.Download(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("error fetching media %s: %w", item.FileName, err)
		}
		files = append(files, SubmissionFile{
			Name:        item.FileName,
			ContentType: item.ContentType,
			Data:        data,
		})
	}
	return files, nil
}

func (s *composerService) PurgeStale(ctx context.Context, cutoff time.Time) error {
	ids, err := s.sr.ListOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, id := range ids {
		sess, err := s.loadSession(ctx, id)
		if err != nil {
			slog.Info(err.Error())
			continue
		}

		var keys []string
		for _, item := range sess.Media.Items() {
			keys = append(keys, item.ID)
		}
		if err := s.purge(keys); err != nil {
			slog.Info(err.Error())
			continue
		}

		if err := s.sr.Remove(ctx, id); err != nil {
			slog.Info(err.Error())
		}

		s.mu.Lock()
		delete(s.guards, id)
		s.mu.Unlock()
	}

	return nil
}
