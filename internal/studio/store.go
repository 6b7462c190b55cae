package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/storage"
)

// Persisted keys.
const (
	KeyCredits    = "studio_credits"
	KeySubscribed = "studio_subscribed"
	KeySessions   = "studio_sessions"
	KeyBrand      = "studio_brand"
)

// degradedSessionLimit is how many sessions survive a capacity failure.
const degradedSessionLimit = 3

// DefaultInitialCredits is the balance granted when none is stored.
const DefaultInitialCredits = 120

// StoreOptions configures a Store.
type StoreOptions struct {
	KV             storage.KV
	InitialCredits int
	Logger         *infra.Logger
	Now            func() time.Time
	NewID          func() string
}

// Store owns the sessions, the active turn list, the economy state and the
// brand profile. Every mutation is flushed to the KV store.
type Store struct {
	mu sync.Mutex

	kv      storage.KV
	logger  *infra.Logger
	now     func() time.Time
	newID   func() string
	initial int

	sessions    []domain.Session // most recent activity first
	activeID    string
	activeTurns []domain.ChatTurn
	economy     domain.EconomyState
	brand       domain.BrandProfile
}

// NewStore builds an empty store. Call Load to read persisted state.
func NewStore(opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = shortuuid.New
	}
	initial := opts.InitialCredits
	if initial <= 0 {
		initial = DefaultInitialCredits
	}
	kv := opts.KV
	if kv == nil {
		kv = storage.NewMemoryKV()
	}
	s := &Store{
		kv:      kv,
		logger:  logger,
		now:     now,
		newID:   newID,
		initial: initial,
		economy: domain.EconomyState{Credits: initial},
	}
	s.activeID = newID()
	return s
}

// Load reads persisted state. Missing keys fall back to defaults; a corrupt
// session list is logged and ignored. The most recent session becomes active.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	credits, err := s.getString(ctx, KeyCredits)
	if err != nil {
		return err
	}
	s.economy.Credits = s.initial
	if credits != "" {
		n, convErr := strconv.Atoi(credits)
		if convErr != nil {
			s.logger.Warn().Err(convErr).Str("value", credits).Msg("stored credits unreadable; using initial balance")
		} else {
			s.economy.Credits = n
		}
	}

	subscribed, err := s.getString(ctx, KeySubscribed)
	if err != nil {
		return err
	}
	s.economy.Subscribed = subscribed == "true"

	brand, err := s.getString(ctx, KeyBrand)
	if err != nil {
		return err
	}
	s.brand = domain.BrandProfile{}
	if brand != "" {
		if err := json.Unmarshal([]byte(brand), &s.brand); err != nil {
			s.logger.Warn().Err(err).Msg("stored brand profile unreadable")
		}
	}

	raw, err := s.getString(ctx, KeySessions)
	if err != nil {
		return err
	}
	s.sessions = nil
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.sessions); err != nil {
			s.logger.Warn().Err(err).Msg("stored sessions unreadable")
			s.sessions = nil
		}
	}

	if len(s.sessions) > 0 {
		s.activeID = s.sessions[0].ID
		s.activeTurns = domain.CloneTurns(s.sessions[0].Turns)
	} else {
		s.activeID = s.newID()
		s.activeTurns = nil
	}
	return nil
}

func (s *Store) getString(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

// CreateSession starts a new, empty active session. It is not stored until its
// first exchange completes.
func (s *Store) CreateSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = s.newID()
	s.activeTurns = nil
	return s.activeID
}

// LoadSession makes a stored session active.
func (s *Store) LoadSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	s.activeID = id
	s.activeTurns = domain.CloneTurns(s.sessions[i].Turns)
	return nil
}

// DeleteSession removes a session. If it was active, the next remaining
// session is loaded, or a new one is created when none remain.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	if id == s.activeID {
		if len(s.sessions) > 0 {
			s.activeID = s.sessions[0].ID
			s.activeTurns = domain.CloneTurns(s.sessions[0].Turns)
		} else {
			s.activeID = s.newID()
			s.activeTurns = nil
		}
	}
	return s.persistLocked(ctx)
}

// AppendActive adds a turn to the in-memory view of the active session only.
// It is how the optimistic user turn appears before the exchange completes.
func (s *Store) AppendActive(sessionID string, turn domain.ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID != s.activeID {
		return
	}
	s.activeTurns = upsertTurns(s.activeTurns, []domain.ChatTurn{turn})
}

// AppendTurns merges turns into a stored session, creating it when this is
// its first exchange, then persists. Turns already present (same ID) are
// replaced in place.
func (s *Store) AppendTurns(ctx context.Context, sessionID string, turns ...domain.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var session domain.Session
	if i := s.indexLocked(sessionID); i >= 0 {
		session = s.sessions[i]
		s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	} else {
		session = domain.Session{ID: sessionID, Title: domain.SessionTitle(firstUserText(turns))}
	}
	session.Turns = upsertTurns(domain.CloneTurns(session.Turns), turns)
	session.LastActivity = s.now()
	s.sessions = append([]domain.Session{session}, s.sessions...)

	if sessionID == s.activeID {
		s.activeTurns = upsertTurns(s.activeTurns, turns)
	}
	return s.persistLocked(ctx)
}

func firstUserText(turns []domain.ChatTurn) string {
	for _, t := range turns {
		if t.Role == domain.RoleUser {
			return t.Text
		}
	}
	return ""
}

func upsertTurns(dst []domain.ChatTurn, turns []domain.ChatTurn) []domain.ChatTurn {
	for _, t := range turns {
		replaced := false
		for i := range dst {
			if dst[i].ID == t.ID {
				dst[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			dst = append(dst, t)
		}
	}
	return dst
}

func (s *Store) indexLocked(id string) int {
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

// Persist flushes the whole state.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// persistLocked writes the economy first so a capacity failure on the session
// list can never cost the user credits or their subscription.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.persistEconomyLocked(ctx); err != nil {
		return err
	}
	if err := s.persistBrandLocked(ctx); err != nil {
		return err
	}
	return s.persistSessionsLocked(ctx)
}

func (s *Store) persistEconomyLocked(ctx context.Context) error {
	if err := s.setWithRoomLocked(ctx, KeyCredits, strconv.Itoa(s.economy.Credits)); err != nil {
		return fmt.Errorf("persist credits: %w", err)
	}
	if err := s.setWithRoomLocked(ctx, KeySubscribed, strconv.FormatBool(s.economy.Subscribed)); err != nil {
		return fmt.Errorf("persist subscription: %w", err)
	}
	return nil
}

func (s *Store) persistBrandLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.brand)
	if err != nil {
		return fmt.Errorf("encode brand: %w", err)
	}
	if err := s.setWithRoomLocked(ctx, KeyBrand, string(raw)); err != nil {
		return fmt.Errorf("persist brand: %w", err)
	}
	return nil
}

// setWithRoomLocked writes a small key, giving up stored session history when
// the backend is full. Capacity failures are never returned: the in-memory
// value stays authoritative and the next flush retries.
func (s *Store) setWithRoomLocked(ctx context.Context, key, value string) error {
	err := s.kv.Set(ctx, key, value)
	if !errors.Is(err, storage.ErrCapacityExceeded) {
		return err
	}
	for _, free := range []func(context.Context) error{s.storeDegradedLocked, s.dropSessionsLocked} {
		if ferr := free(ctx); ferr != nil && !errors.Is(ferr, storage.ErrCapacityExceeded) {
			return ferr
		}
		err = s.kv.Set(ctx, key, value)
		if !errors.Is(err, storage.ErrCapacityExceeded) {
			return err
		}
	}
	s.logger.Error().Str("key", key).Msg("storage full even without sessions; keeping value in memory")
	return nil
}

func (s *Store) storeDegradedLocked(ctx context.Context) error {
	trimmed := degradeSessions(s.sessions, s.activeID)
	raw, err := json.Marshal(trimmed)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := s.kv.Set(ctx, KeySessions, string(raw)); err != nil {
		return err
	}
	s.logger.Warn().Int("kept", len(trimmed)).Int("total", len(s.sessions)).Msg("storage full; persisted trimmed sessions without image payloads")
	return nil
}

func (s *Store) dropSessionsLocked(ctx context.Context) error {
	s.logger.Warn().Msg("storage full; dropping persisted sessions")
	if err := s.kv.Delete(ctx, KeySessions); err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return fmt.Errorf("drop sessions: %w", err)
	}
	return nil
}

func (s *Store) persistSessionsLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.sessions)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	err = s.kv.Set(ctx, KeySessions, string(raw))
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrCapacityExceeded) {
		return fmt.Errorf("persist sessions: %w", err)
	}

	err = s.storeDegradedLocked(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrCapacityExceeded) {
		return fmt.Errorf("persist sessions: %w", err)
	}
	return s.dropSessionsLocked(ctx)
}

// degradeSessions keeps the most recent sessions and strips image payloads
// from every attachment outside the active session. Display URLs stay.
func degradeSessions(sessions []domain.Session, activeID string) []domain.Session {
	n := min(len(sessions), degradedSessionLimit)
	out := make([]domain.Session, n)
	for i := range n {
		sess := sessions[i]
		sess.Turns = domain.CloneTurns(sess.Turns)
		if sess.ID != activeID {
			for ti := range sess.Turns {
				for ai := range sess.Turns[ti].Attachments {
					sess.Turns[ti].Attachments[ai].EncodedData = ""
				}
			}
		}
		out[i] = sess
	}
	return out
}

// Debit takes cost from the balance, or fails without touching it.
func (s *Store) Debit(ctx context.Context, cost int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.economy.Credits < cost {
		return s.economy.Credits, &domain.InsufficientCreditsError{
			Balance: s.economy.Credits,
			Cost:    cost,
			Flow:    domain.FlowFor(s.economy.Subscribed),
		}
	}
	s.economy.Credits -= cost
	s.flushEconomyLocked(ctx)
	return s.economy.Credits, nil
}

// Refund returns cost to the balance.
func (s *Store) Refund(ctx context.Context, cost int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.economy.Credits += cost
	s.flushEconomyLocked(ctx)
	return s.economy.Credits
}

// flushEconomyLocked persists the balance on the send path. The in-memory
// balance stays authoritative when the write fails; the next flush retries.
func (s *Store) flushEconomyLocked(ctx context.Context) {
	if err := s.persistEconomyLocked(ctx); err != nil {
		s.logger.Error().Err(err).Int("credits", s.economy.Credits).Msg("persist economy failed")
	}
}

// AddCredits adds n credits and persists the balance.
func (s *Store) AddCredits(ctx context.Context, n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.economy.Credits += n
	return s.economy.Credits, s.persistEconomyLocked(ctx)
}

// SetSubscribed flips the subscription flag.
func (s *Store) SetSubscribed(ctx context.Context, subscribed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.economy.Subscribed = subscribed
	return s.persistEconomyLocked(ctx)
}

func (s *Store) Economy() domain.EconomyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.economy
}

func (s *Store) Brand() domain.BrandProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brand
}

// UpdateBrand replaces the brand profile.
func (s *Store) UpdateBrand(ctx context.Context, b domain.BrandProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brand = b
	return s.persistBrandLocked(ctx)
}

// ActiveID returns the active session id.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// ActiveTurns returns a copy of the active turn list.
func (s *Store) ActiveTurns() []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneTurns(s.activeTurns)
}

// History returns the turns of sessionID as the orchestrator sees them: the
// active list for the active session, the stored turns otherwise.
func (s *Store) History(sessionID string) []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID == s.activeID {
		return domain.CloneTurns(s.activeTurns)
	}
	if i := s.indexLocked(sessionID); i >= 0 {
		return domain.CloneTurns(s.sessions[i].Turns)
	}
	return nil
}

// Sessions lists stored sessions, most recent first.
func (s *Store) Sessions() []domain.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SessionSummary, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Summary()
	}
	return out
}

// Session returns a copy of a stored session.
func (s *Store) Session(id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return domain.Session{}, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	sess := s.sessions[i]
	sess.Turns = domain.CloneTurns(sess.Turns)
	return sess, nil
}

// Reset deletes every persisted key and returns the store to its defaults.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range []string{KeyCredits, KeySubscribed, KeySessions, KeyBrand} {
		if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}
	s.sessions = nil
	s.activeID = s.newID()
	s.activeTurns = nil
	s.economy = domain.EconomyState{Credits: s.initial}
	s.brand = domain.BrandProfile{}
	return nil
}
