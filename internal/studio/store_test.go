package studio

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"studio/internal/domain"
	"studio/internal/storage"
)

func exchange(id, text, payload string) []domain.ChatTurn {
	return []domain.ChatTurn{
		{ID: id + "-u", Role: domain.RoleUser, Text: text},
		{ID: id + "-m", Role: domain.RoleModel, Attachments: []domain.Attachment{{
			Kind:        domain.MediaKindImage,
			DisplayURL:  "display://" + id,
			EncodedData: payload,
			MimeType:    "image/png",
		}}},
	}
}

func storedSessions(t *testing.T, kv storage.KV) []domain.Session {
	t.Helper()
	raw, err := kv.Get(context.Background(), KeySessions)
	if err != nil {
		t.Fatalf("read sessions: %v", err)
	}
	var sessions []domain.Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	return sessions
}

func TestPersistDegradesOnCapacity(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryKV()
	kv := storage.NewQuota(inner, 5000)
	store := newTestStore(kv, 120)

	payload := strings.Repeat("A", 1500)
	for i := 0; i < 5; i++ {
		sid := store.CreateSession()
		if err := store.AppendTurns(ctx, sid, exchange(sid, "look "+sid, payload)...); err != nil {
			t.Fatalf("append %s: %v", sid, err)
		}
	}
	active := store.ActiveID()

	sessions := storedSessions(t, inner)
	if len(sessions) != 3 {
		t.Fatalf("expected 3 stored sessions, got %d", len(sessions))
	}
	if sessions[0].ID != active {
		t.Fatalf("active session should be first, got %s", sessions[0].ID)
	}
	for _, sess := range sessions {
		for _, turn := range sess.Turns {
			for _, att := range turn.Attachments {
				if att.DisplayURL == "" {
					t.Fatalf("display url stripped in %s", sess.ID)
				}
				if sess.ID == active && att.EncodedData != payload {
					t.Fatalf("active session lost its payload")
				}
				if sess.ID != active && att.EncodedData != "" {
					t.Fatalf("payload kept in inactive session %s", sess.ID)
				}
			}
		}
	}

	if n := len(store.Sessions()); n != 5 {
		t.Fatalf("in-memory sessions should be untouched, got %d", n)
	}
	if credits, err := inner.Get(ctx, KeyCredits); err != nil || credits != "120" {
		t.Fatalf("credits must persist, got %q %v", credits, err)
	}
}

func TestPersistDropsSessionsWhenTrimmingIsNotEnough(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryKV()
	store := newTestStore(storage.NewQuota(inner, 1000), 120)
	if err := store.SetSubscribed(ctx, true); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sid := store.ActiveID()
	if err := store.AppendTurns(ctx, sid, exchange(sid, "huge", strings.Repeat("B", 4000))...); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := inner.Get(ctx, KeySessions); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("sessions key should be dropped, got %v", err)
	}
	if v, _ := inner.Get(ctx, KeySubscribed); v != "true" {
		t.Fatalf("subscription must survive, got %q", v)
	}
	if v, _ := inner.Get(ctx, KeyCredits); v != "120" {
		t.Fatalf("credits must survive, got %q", v)
	}
}

func TestTopUpOnFullStorageTrimsSessions(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryKV()
	unlimited := storage.NewQuota(inner, 0)
	seed := newTestStore(unlimited, 120)

	payload := strings.Repeat("C", 1500)
	older := seed.ActiveID()
	if err := seed.AppendTurns(ctx, older, exchange("a", "older look", payload)...); err != nil {
		t.Fatalf("append: %v", err)
	}
	newer := seed.CreateSession()
	if err := seed.AppendTurns(ctx, newer, exchange("b", "newer look", payload)...); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Exactly full: the next write that grows anything has to make room.
	full := storage.NewQuota(inner, unlimited.Used())
	store := newTestStore(full, 120)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	st := newTestStudio(t, &stubGenerator{}, store)

	econ, err := st.TopUp(ctx, "pro", 0)
	if err != nil {
		t.Fatalf("top-up on full storage: %v", err)
	}
	if econ.Credits != 2120 {
		t.Fatalf("credits = %d", econ.Credits)
	}
	if v, _ := inner.Get(ctx, KeyCredits); v != "2120" {
		t.Fatalf("persisted credits = %q", v)
	}

	sessions := storedSessions(t, inner)
	if len(sessions) != 2 || sessions[0].ID != newer {
		t.Fatalf("unexpected stored sessions %+v", sessions)
	}
	for _, turn := range sessions[1].Turns {
		for _, att := range turn.Attachments {
			if att.EncodedData != "" {
				t.Fatalf("inactive session kept its payload")
			}
		}
	}

	if err := st.UpdateBrand(ctx, domain.BrandProfile{Name: "Ada Wears", Description: strings.Repeat("d", 400)}); err != nil {
		t.Fatalf("brand on full storage: %v", err)
	}

	reloaded := newTestStore(inner, 120)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := reloaded.Economy().Credits; got != 2120 {
		t.Fatalf("credits after restart = %d", got)
	}
	if got := reloaded.Brand().Name; got != "Ada Wears" {
		t.Fatalf("brand after restart = %q", got)
	}
}

func TestStoreLoadRestoresState(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	store := newTestStore(kv, 120)

	first := store.ActiveID()
	if err := store.AppendTurns(ctx, first, exchange("a", "first look", "AAAA")...); err != nil {
		t.Fatalf("append: %v", err)
	}
	second := store.CreateSession()
	if err := store.AppendTurns(ctx, second, exchange("b", "second look", "BBBB")...); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := store.Debit(ctx, 60); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := store.UpdateBrand(ctx, domain.BrandProfile{Name: "Ada Wears", ApplyBrandTone: true}); err != nil {
		t.Fatalf("brand: %v", err)
	}

	reloaded := newTestStore(kv, 120)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := reloaded.Economy().Credits; got != 60 {
		t.Fatalf("credits = %d", got)
	}
	if reloaded.ActiveID() != second {
		t.Fatalf("most recent session should be active")
	}
	if turns := reloaded.ActiveTurns(); len(turns) != 2 || turns[0].Text != "second look" {
		t.Fatalf("unexpected active turns %+v", turns)
	}
	if b := reloaded.Brand(); b.Name != "Ada Wears" || !b.ApplyBrandTone {
		t.Fatalf("unexpected brand %+v", b)
	}
	summaries := reloaded.Sessions()
	if len(summaries) != 2 || summaries[1].ID != first || summaries[1].Title != "first look" {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
}

func TestStoreLoadDefaults(t *testing.T) {
	store := newTestStore(storage.NewMemoryKV(), 0)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := store.Economy(); got.Credits != DefaultInitialCredits || got.Subscribed {
		t.Fatalf("unexpected defaults %+v", got)
	}
	if store.ActiveID() == "" || len(store.Sessions()) != 0 {
		t.Fatalf("expected an empty active session")
	}
}

func TestAppendTurnsMergesByID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemoryKV(), 120)
	sid := store.ActiveID()

	turns := exchange("a", "first look", "AAAA")
	store.AppendActive(sid, turns[0])
	if err := store.AppendTurns(ctx, sid, turns...); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got := store.ActiveTurns(); len(got) != 2 {
		t.Fatalf("optimistic turn should be replaced, got %d turns", len(got))
	}

	if err := store.AppendTurns(ctx, sid, exchange("b", "a much longer second request for the same project", "BBBB")...); err != nil {
		t.Fatalf("append: %v", err)
	}
	sess, err := store.Session(sid)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if len(sess.Turns) != 4 || sess.Title != "first look" {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestSessionTitleTruncates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemoryKV(), 120)
	sid := store.ActiveID()
	if err := store.AppendTurns(ctx, sid, exchange("a", "a very long request that goes past thirty runes", "AAAA")...); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got := store.Sessions()[0].Title; got != "a very long request that goes" {
		t.Fatalf("title = %q", got)
	}

	other := store.CreateSession()
	if err := store.AppendTurns(ctx, other, exchange("b", "", "BBBB")...); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got := store.Sessions()[0].Title; got != domain.DefaultSessionTitle {
		t.Fatalf("title = %q", got)
	}
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemoryKV(), 120)

	first := store.ActiveID()
	if err := store.AppendTurns(ctx, first, exchange("a", "first", "AAAA")...); err != nil {
		t.Fatalf("append: %v", err)
	}
	second := store.CreateSession()
	if err := store.AppendTurns(ctx, second, exchange("b", "second", "BBBB")...); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := store.DeleteSession(ctx, second); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.ActiveID() != first || len(store.ActiveTurns()) != 2 {
		t.Fatalf("next session should be loaded")
	}
	if err := store.DeleteSession(ctx, first); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if id := store.ActiveID(); id == first || id == second || len(store.ActiveTurns()) != 0 {
		t.Fatalf("a new empty session should be active, got %s", id)
	}
	if err := store.DeleteSession(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.LoadSession("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreReset(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	store := newTestStore(kv, 120)
	sid := store.ActiveID()
	if err := store.AppendTurns(ctx, sid, exchange("a", "first", "AAAA")...); err != nil {
		t.Fatalf("append: %v", err)
	}
	store.Refund(ctx, 500)

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if store.Economy().Credits != 120 || len(store.Sessions()) != 0 {
		t.Fatalf("state not reset")
	}
	for _, key := range []string{KeyCredits, KeySessions, KeySubscribed, KeyBrand} {
		if _, err := kv.Get(ctx, key); !errors.Is(err, storage.ErrKeyNotFound) {
			t.Fatalf("key %s should be gone, got %v", key, err)
		}
	}
}
