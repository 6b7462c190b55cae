package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/prompt"
	"studio/internal/providers/image"
	"studio/internal/retry"
	"studio/internal/storage"
)

// DefaultImageCost is the flat price of one generate or edit.
const DefaultImageCost = 60

// Failure texts shown as model turns.
const (
	MessageExecutionFailed  = "Command execution failed. System reset."
	MessageNoImage          = "Studio Command Failed. Please refine visual description."
	MessagePermissionDenied = "Permission denied: check your API key and billing status."
	MessageStandby          = "System standby. The creative engine is currently rebooting. Please try again in a moment."
)

// Outcome is the terminal state of one send.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeNoImage   Outcome = "no_image"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Options configures a Studio.
type Options struct {
	Store     *Store
	Generator image.Generator
	// Assistant answers text commands. When nil, the generator is used if it
	// implements image.Assistant.
	Assistant   image.Assistant
	Synthesizer *prompt.Synthesizer
	Exports     *storage.FileStore

	ImageCost   int
	AspectRatio domain.ImageAspectRatio
	Resolution  domain.ImageResolution

	// Sleep paces the simulated billing operations.
	Sleep     retry.Sleeper
	Logger    *infra.Logger
	Now       func() time.Time
	NewTurnID func() string
}

// Studio runs sends against the image generator and keeps the session store
// and the credit balance consistent with their outcome.
type Studio struct {
	store     *Store
	generator image.Generator
	assistant image.Assistant
	synth     *prompt.Synthesizer
	exports   *storage.FileStore

	cost       int
	aspect     domain.ImageAspectRatio
	resolution domain.ImageResolution

	sleep     retry.Sleeper
	logger    *infra.Logger
	now       func() time.Time
	newTurnID func() string

	mu       sync.Mutex
	inflight map[string]*CancelToken

	billingMu   sync.Mutex
	billingBusy bool
}

// New wires a Studio. Store and Generator are required.
func New(opts Options) (*Studio, error) {
	if opts.Store == nil {
		return nil, errors.New("studio: store is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("studio: generator is required")
	}
	s := &Studio{
		store:      opts.Store,
		generator:  opts.Generator,
		assistant:  opts.Assistant,
		synth:      opts.Synthesizer,
		exports:    opts.Exports,
		cost:       opts.ImageCost,
		aspect:     opts.AspectRatio,
		resolution: opts.Resolution,
		sleep:      opts.Sleep,
		logger:     opts.Logger,
		now:        opts.Now,
		newTurnID:  opts.NewTurnID,
		inflight:   make(map[string]*CancelToken),
	}
	if s.assistant == nil {
		if a, ok := opts.Generator.(image.Assistant); ok {
			s.assistant = a
		}
	}
	if s.synth == nil {
		s.synth = prompt.NewSynthesizer(nil)
	}
	if s.cost <= 0 {
		s.cost = DefaultImageCost
	}
	if s.aspect == "" {
		s.aspect = domain.AspectPortrait
	}
	if s.resolution == "" {
		s.resolution = domain.Resolution2K
	}
	if s.sleep == nil {
		s.sleep = retry.SleepContext
	}
	if s.logger == nil {
		discard := zerolog.New(io.Discard)
		s.logger = &discard
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newTurnID == nil {
		s.newTurnID = func() string { return uuid.Must(uuid.NewV7()).String() }
	}
	return s, nil
}

// Store exposes the session and economy store.
func (s *Studio) Store() *Store {
	return s.store
}

// ImageCost returns the flat price of one send.
func (s *Studio) ImageCost() int {
	return s.cost
}

// SendRequest is one user submission. An empty SessionID targets the active
// session.
type SendRequest struct {
	SessionID   string
	Text        string
	Uploads     []domain.Upload
	AspectRatio domain.ImageAspectRatio
	Resolution  domain.ImageResolution
}

// SendResult reports how a send ended. ModelTurn is nil when cancelled.
type SendResult struct {
	SessionID string             `json:"session_id"`
	Mode      domain.RequestMode `json:"mode"`
	Outcome   Outcome            `json:"outcome"`
	UserTurn  domain.ChatTurn    `json:"user_turn"`
	ModelTurn *domain.ChatTurn   `json:"model_turn,omitempty"`
	Credits   int                `json:"credits"`
}

// Send runs one exchange. Rejections that happen before any debit (empty
// request, a send already in flight, insufficient credits) are returned as
// errors; everything after the debit resolves to a SendResult.
func (s *Studio) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.Uploads) == 0 {
		return SendResult{}, domain.ErrEmptyRequest
	}
	sid := req.SessionID
	if sid == "" {
		sid = s.store.ActiveID()
	}
	// Store writes outlive the caller: a send that was debited must settle.
	persistCtx := context.WithoutCancel(ctx)

	s.mu.Lock()
	if _, busy := s.inflight[sid]; busy {
		s.mu.Unlock()
		return SendResult{}, domain.ErrBusy
	}
	decision := DecideMode(len(req.Uploads), s.store.History(sid), text)
	if _, err := s.store.Debit(persistCtx, s.cost); err != nil {
		s.mu.Unlock()
		return SendResult{}, err
	}
	token := NewCancelToken(func() {
		s.store.Refund(persistCtx, s.cost)
	})
	s.inflight[sid] = token
	s.mu.Unlock()
	defer s.release(sid, token)

	logger := s.logger.With().Str("session_id", sid).Str("mode", string(decision.Mode)).Logger()

	userTurn := domain.ChatTurn{
		ID:        s.newTurnID(),
		Role:      domain.RoleUser,
		Text:      text,
		Timestamp: s.now(),
	}
	for _, u := range req.Uploads {
		userTurn.Attachments = append(userTurn.Attachments, u.Attachment())
	}
	s.store.AppendActive(sid, userTurn)

	result := SendResult{SessionID: sid, Mode: decision.Mode, UserTurn: userTurn}

	refs, err := encodeUploads(req.Uploads, token)
	if errors.Is(err, errCancelled) {
		logger.Info().Str("turn_id", userTurn.ID).Msg("send cancelled while encoding")
		return s.cancelled(result), nil
	}
	if err == nil {
		userTurn.Attachments = refs
		result.UserTurn = userTurn
		if token.Cancelled() {
			return s.cancelled(result), nil
		}
	}

	var produced image.Result
	if err == nil {
		produced, err = s.dispatch(persistCtx, decision, text, refs, req)
	}

	var model domain.ChatTurn
	settled := token.Settle(func() {
		model = domain.ChatTurn{ID: s.newTurnID(), Role: domain.RoleModel, Timestamp: s.now()}
		switch {
		case err != nil:
			s.store.Refund(persistCtx, s.cost)
			model.Text = failureText(err)
			result.Outcome = OutcomeFailed
			logger.Error().Err(err).Str("turn_id", userTurn.ID).Msg("send failed")
		case !produced.HasImage():
			s.store.Refund(persistCtx, s.cost)
			model.Text = produced.Feedback
			if strings.TrimSpace(model.Text) == "" {
				model.Text = MessageNoImage
			}
			result.Outcome = OutcomeNoImage
			logger.Warn().Str("turn_id", userTurn.ID).Msg("no image produced")
		default:
			model.Attachments = []domain.Attachment{produced.Attachment()}
			result.Outcome = OutcomeCompleted
		}
	})
	if !settled {
		logger.Info().Str("turn_id", userTurn.ID).Msg("result discarded after stop")
		return s.cancelled(result), nil
	}

	if err := s.store.AppendTurns(persistCtx, sid, userTurn, model); err != nil {
		logger.Error().Err(err).Msg("persist turns failed")
	}
	if result.Outcome == OutcomeCompleted {
		s.export(persistCtx, sid, model)
	}

	result.ModelTurn = &model
	result.Credits = s.store.Economy().Credits
	return result, nil
}

func (s *Studio) cancelled(result SendResult) SendResult {
	result.Outcome = OutcomeCancelled
	result.Credits = s.store.Economy().Credits
	return result
}

func (s *Studio) dispatch(ctx context.Context, decision Decision, text string, refs []domain.Attachment, req SendRequest) (image.Result, error) {
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = s.aspect
	}
	res := req.Resolution
	if res == "" {
		res = s.resolution
	}
	if decision.Mode == domain.ModeEdit {
		return s.generator.Edit(ctx, image.EditRequest{
			Base:        decision.Base,
			Text:        text,
			AspectRatio: aspect,
			Resolution:  res,
		})
	}
	brand := s.store.Brand()
	return s.generator.Generate(ctx, image.GenerateRequest{
		Text:        text,
		Brand:       &brand,
		AspectRatio: aspect,
		Resolution:  res,
		References:  refs,
	})
}

func failureText(err error) string {
	if errors.Is(err, domain.ErrPermissionDenied) {
		return MessagePermissionDenied
	}
	return MessageExecutionFailed
}

// export writes a produced image to the export directory. Failures are logged;
// the image is already stored with the session.
func (s *Studio) export(ctx context.Context, sessionID string, turn domain.ChatTurn) {
	if s.exports == nil {
		return
	}
	att, ok := turn.FirstAttachment()
	if !ok {
		return
	}
	data, err := decodeAttachment(att)
	if err != nil {
		s.logger.Warn().Err(err).Str("turn_id", turn.ID).Msg("export decode failed")
		return
	}
	key, err := s.exports.Write(ctx, storage.ImageKey(sessionID, turn.ID, att.MimeType), data)
	if err != nil {
		s.logger.Warn().Err(err).Str("turn_id", turn.ID).Msg("export write failed")
		return
	}
	s.logger.Debug().Str("key", key).Msg("image exported")
}

func (s *Studio) release(sessionID string, token *CancelToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[sessionID] == token {
		delete(s.inflight, sessionID)
	}
}

// Stop cancels the send in flight for a session and refunds it. It reports
// false when nothing was in flight or the send had already settled.
func (s *Studio) Stop(sessionID string) bool {
	if sessionID == "" {
		sessionID = s.store.ActiveID()
	}
	s.mu.Lock()
	token, ok := s.inflight[sessionID]
	if ok {
		delete(s.inflight, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	cancelled := token.Cancel()
	if cancelled {
		s.logger.Info().Str("session_id", sessionID).Msg("send stopped")
	}
	return cancelled
}

// Loading reports whether a send is in flight for the session.
func (s *Studio) Loading(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[sessionID]
	return ok
}

// SelectTemplate returns the form for a template kind.
func (s *Studio) SelectTemplate(kind string) (prompt.Form, error) {
	k, err := prompt.ParseKind(kind)
	if err != nil {
		return prompt.Form{}, err
	}
	return prompt.FormFor(k)
}

// ConfirmTemplate turns a template selection into an instruction and its
// ordered reference images.
func (s *Studio) ConfirmTemplate(sel prompt.Selection) (prompt.Draft, error) {
	return s.synth.FromTemplate(sel)
}

// SendTemplate confirms a selection and sends the draft at once.
func (s *Studio) SendTemplate(ctx context.Context, sessionID string, sel prompt.Selection) (prompt.Draft, SendResult, error) {
	draft, err := s.ConfirmTemplate(sel)
	if err != nil {
		return prompt.Draft{}, SendResult{}, err
	}
	res, err := s.Send(ctx, SendRequest{SessionID: sessionID, Text: draft.Instruction, Uploads: draft.References})
	return draft, res, err
}

// NewSession starts a new active session.
func (s *Studio) NewSession() string {
	return s.store.CreateSession()
}

// LoadSession switches the active session.
func (s *Studio) LoadSession(id string) error {
	return s.store.LoadSession(id)
}

// DeleteSession removes a session and its exported images.
func (s *Studio) DeleteSession(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	if s.exports != nil {
		if err := s.exports.RemoveSession(id); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id).Msg("remove exports failed")
		}
	}
	return nil
}

// UpdateBrand replaces the brand profile.
func (s *Studio) UpdateBrand(ctx context.Context, b domain.BrandProfile) error {
	b.Name = strings.TrimSpace(b.Name)
	return s.store.UpdateBrand(ctx, b)
}

// Assist answers a studio command without generating an image and without
// charging. Any failure yields the standby message.
func (s *Studio) Assist(ctx context.Context, text string, uploads []domain.Upload) string {
	if s.assistant == nil {
		return MessageStandby
	}
	images, err := encodeUploads(uploads, NewCancelToken(nil))
	if err != nil {
		s.logger.Warn().Err(err).Msg("assist encode failed")
		return MessageStandby
	}
	reply, err := s.assistant.Assist(ctx, image.AssistRequest{Text: strings.TrimSpace(text), Images: images})
	if err != nil {
		s.logger.Error().Err(err).Msg("assist failed")
		return MessageStandby
	}
	return reply
}

// State is the snapshot the UI renders.
type State struct {
	ActiveSessionID string                  `json:"active_session_id"`
	Turns           []domain.ChatTurn       `json:"turns"`
	Loading         bool                    `json:"loading"`
	Credits         int                     `json:"credits"`
	Subscribed      bool                    `json:"subscribed"`
	BillingFlow     domain.BillingFlow      `json:"billing_flow"`
	BillingBusy     bool                    `json:"billing_busy"`
	ImageCost       int                     `json:"image_cost"`
	Sessions        []domain.SessionSummary `json:"sessions"`
	Brand           domain.BrandProfile     `json:"brand"`
}

// Snapshot returns the current UI state.
func (s *Studio) Snapshot() State {
	active := s.store.ActiveID()
	economy := s.store.Economy()
	s.billingMu.Lock()
	billingBusy := s.billingBusy
	s.billingMu.Unlock()
	return State{
		ActiveSessionID: active,
		Turns:           s.store.ActiveTurns(),
		Loading:         s.Loading(active),
		Credits:         economy.Credits,
		Subscribed:      economy.Subscribed,
		BillingFlow:     domain.FlowFor(economy.Subscribed),
		BillingBusy:     billingBusy,
		ImageCost:       s.cost,
		Sessions:        s.store.Sessions(),
		Brand:           s.store.Brand(),
	}
}

// Reset wipes persisted state and exports, returning to a fresh account. It
// fails with domain.ErrBusy while a send is in flight.
func (s *Studio) Reset(ctx context.Context) error {
	s.mu.Lock()
	if len(s.inflight) > 0 {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	sessions := s.store.Sessions()
	err := s.store.Reset(ctx)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	if s.exports != nil {
		for _, sess := range sessions {
			if err := s.exports.RemoveSession(sess.ID); err != nil {
				s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("remove exports failed")
			}
		}
	}
	return nil
}
