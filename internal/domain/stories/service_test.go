package stories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"memoria-viva/internal/ports/ai"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID     map[string]Story
	likes    map[string]map[string]struct{}
	comments map[string]Comment
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID:     map[string]Story{},
		likes:    map[string]map[string]struct{}{},
		comments: map[string]Comment{},
	}
}

func (r *testRepo) Create(ctx context.Context, s Story) error {
	if s.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[s.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[s.ID] = s
	return nil
}

func (r *testRepo) Update(ctx context.Context, s Story) error {
	if _, ok := r.byID[s.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Story, error) {
	s, ok := r.byID[id]
	if !ok {
		return Story{}, errRepoNotFound
	}
	return s, nil
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]Story, error) {
	out := make([]Story, 0)
	for _, s := range r.byID {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if q := strings.ToLower(filter.Query); q != "" {
			if !strings.Contains(strings.ToLower(s.Title+" "+s.Body), q) {
				continue
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *testRepo) ListByAuthor(ctx context.Context, authorUserID string) ([]Story, error) {
	out := make([]Story, 0)
	for _, s := range r.byID {
		if s.AuthorUserID == authorUserID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *testRepo) Like(ctx context.Context, storyID, userID string) error {
	if r.likes[storyID] == nil {
		r.likes[storyID] = map[string]struct{}{}
	}
	r.likes[storyID][userID] = struct{}{}
	return nil
}

func (r *testRepo) Unlike(ctx context.Context, storyID, userID string) error {
	delete(r.likes[storyID], userID)
	return nil
}

func (r *testRepo) LikeCount(ctx context.Context, storyID string) (int, error) {
	return len(r.likes[storyID]), nil
}

func (r *testRepo) AddComment(ctx context.Context, c Comment) error {
	r.comments[c.ID] = c
	return nil
}

func (r *testRepo) ListComments(ctx context.Context, storyID string) ([]Comment, error) {
	out := make([]Comment, 0)
	for _, c := range r.comments {
		if c.StoryID == storyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *testRepo) GetComment(ctx context.Context, commentID string) (Comment, error) {
	c, ok := r.comments[commentID]
	if !ok {
		return Comment{}, errRepoNotFound
	}
	return c, nil
}

func (r *testRepo) RemoveComment(ctx context.Context, commentID string) error {
	if _, ok := r.comments[commentID]; !ok {
		return errRepoNotFound
	}
	delete(r.comments, commentID)
	return nil
}

// -------------------------
// Fake assistant
// -------------------------

type fakeAssistant struct {
	flagged     bool
	flagReason  string
	moderateErr error
	summary     string
	summaryErr  error
}

func (f *fakeAssistant) Enhance(ctx context.Context, text string) (string, error) {
	return text + " (mejorado)", nil
}

func (f *fakeAssistant) Summarize(ctx context.Context, text string) (string, error) {
	if f.summaryErr != nil {
		return "", f.summaryErr
	}
	if f.summary != "" {
		return f.summary, nil
	}
	return "resumen", nil
}

func (f *fakeAssistant) Moderate(ctx context.Context, text string) (ai.ModerationResult, error) {
	if f.moderateErr != nil {
		return ai.ModerationResult{}, f.moderateErr
	}
	return ai.ModerationResult{Flagged: f.flagged, Reason: f.flagReason}, nil
}

// -------------------------
// Tests
// -------------------------

func newTestService(repo *testRepo, assistant ai.Assistant) *Service {
	svc := NewService(repo, assistant, nil)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestService_Submit_StartsPending(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, nil)

	st, err := svc.Submit(context.Background(), "author-1", SubmitInput{
		Title: "La vendimia de mi abuelo",
		Body:  "Todos los marzos...",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if st.Status != StatusPending {
		t.Fatalf("status = %q, want pending", st.Status)
	}
	if st.Category != CategoryOther {
		t.Fatalf("category default = %q", st.Category)
	}
	if st.Flagged {
		t.Fatalf("must not be flagged without assistant")
	}
}

func TestService_Submit_RequiresTitleAndBody(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)

	if _, err := svc.Submit(context.Background(), "author-1", SubmitInput{Title: " ", Body: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), "author-1", SubmitInput{Title: "x", Body: ""}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), "", SubmitInput{Title: "x", Body: "y"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Submit_ModerationFlagsButNeverRejects(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &fakeAssistant{flagged: true, flagReason: "tono agresivo"})

	st, err := svc.Submit(context.Background(), "author-1", SubmitInput{Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !st.Flagged || st.FlagReason != "tono agresivo" {
		t.Fatalf("expected flagged story, got %+v", st)
	}
	if st.Status != StatusPending {
		t.Fatalf("flagged story must stay pending, got %q", st.Status)
	}
}

func TestService_Submit_ModerationFailureIsNotFatal(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &fakeAssistant{moderateErr: errors.New("upstream down")})

	st, err := svc.Submit(context.Background(), "author-1", SubmitInput{Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("submit must succeed when moderation is down: %v", err)
	}
	if st.Flagged {
		t.Fatalf("must not flag on moderation failure")
	}
}

func TestService_Publish_SetsPublishedAtAndSummary(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &fakeAssistant{summary: "un relato sobre la vendimia"})

	st, _ := svc.Submit(context.Background(), "author-1", SubmitInput{Title: "t", Body: "b"})

	pub, err := svc.Publish(context.Background(), st.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if pub.Status != StatusPublished {
		t.Fatalf("status = %q", pub.Status)
	}
	if pub.PublishedAt == nil {
		t.Fatalf("published_at not set")
	}
	if pub.Summary != "un relato sobre la vendimia" {
		t.Fatalf("summary = %q", pub.Summary)
	}
}

func TestService_Publish_Twice_Conflict(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, nil)

	st, _ := svc.Submit(context.Background(), "author-1", SubmitInput{Title: "t", Body: "b"})
	if _, err := svc.Publish(context.Background(), st.ID); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if _, err := svc.Publish(context.Background(), st.ID); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestService_Reject_KeepsReason(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, nil)

	st, _ := svc.Submit(context.Background(), "author-1", SubmitInput{Title: "t", Body: "b"})
	rej, err := svc.Reject(context.Background(), st.ID, "  faltan fuentes  ")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rej.Status != StatusRejected || rej.RejectReason != "faltan fuentes" {
		t.Fatalf("got %+v", rej)
	}
}

func TestService_Like_OnlyPublished(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, nil)

	st, _ := svc.Submit(context.Background(), "author-1", SubmitInput{Title: "t", Body: "b"})

	if err := svc.Like(context.Background(), st.ID, "reader-1"); !errors.Is(err, ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished, got %v", err)
	}

	if _, err := svc.Publish(context.Background(), st.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := svc.Like(context.Background(), st.ID, "reader-1"); err != nil {
		t.Fatalf("like: %v", err)
	}
	// Idempotente
	if err := svc.Like(context.Background(), st.ID, "reader-1"); err != nil {
		t.Fatalf("second like: %v", err)
	}

	n, _ := svc.LikeCount(context.Background(), st.ID)
	if n != 1 {
		t.Fatalf("like count = %d, want 1", n)
	}
}

func TestService_Comment_OnlyPublished(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, nil)

	st, _ := svc.Submit(context.Background(), "author-1", SubmitInput{Title: "t", Body: "b"})

	if _, err := svc.AddComment(context.Background(), st.ID, "reader-1", "¡qué lindo!"); !errors.Is(err, ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished, got %v", err)
	}

	if _, err := svc.Publish(context.Background(), st.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	c, err := svc.AddComment(context.Background(), st.ID, "reader-1", "¡qué lindo!")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}

	items, _ := svc.ListComments(context.Background(), st.ID)
	if len(items) != 1 || items[0].ID != c.ID {
		t.Fatalf("comments = %+v", items)
	}

	if err := svc.RemoveComment(context.Background(), c.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, _ = svc.ListComments(context.Background(), st.ID)
	if len(items) != 0 {
		t.Fatalf("comment not removed")
	}
}
