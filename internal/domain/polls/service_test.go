package polls

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID  map[string]Poll
	votes map[string]map[string]string // pollID -> userID -> optionID
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID:  map[string]Poll{},
		votes: map[string]map[string]string{},
	}
}

func (r *testRepo) Create(ctx context.Context, p Poll) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Poll) error {
	if _, ok := r.byID[p.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Poll, error) {
	p, ok := r.byID[id]
	if !ok {
		return Poll{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) List(ctx context.Context, limit int) ([]Poll, error) {
	out := make([]Poll, 0)
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *testRepo) Vote(ctx context.Context, pollID, optionID, userID string) error {
	if r.votes[pollID] == nil {
		r.votes[pollID] = map[string]string{}
	}
	r.votes[pollID][userID] = optionID
	return nil
}

func (r *testRepo) Results(ctx context.Context, pollID string) (Results, error) {
	out := Results{}
	for _, optionID := range r.votes[pollID] {
		out[optionID]++
	}
	return out, nil
}

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestService_Create_OptionRange(t *testing.T) {
	svc := newTestService(newTestRepo())

	if _, err := svc.Create(context.Background(), "editor-1", CreateInput{
		Question: "¿Mejor plato típico?",
		Options:  []string{"cazuela"},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 1 option, got %v", err)
	}

	// Opciones vacías se descartan antes de validar el rango.
	if _, err := svc.Create(context.Background(), "editor-1", CreateInput{
		Question: "¿Mejor plato típico?",
		Options:  []string{"cazuela", "  ", ""},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput after dropping blanks, got %v", err)
	}

	p, err := svc.Create(context.Background(), "editor-1", CreateInput{
		Question: "¿Mejor plato típico?",
		Options:  []string{"cazuela", "humitas", "pastel de choclo"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(p.Options) != 3 || p.Status != StatusOpen {
		t.Fatalf("got %+v", p)
	}
}

func TestService_Vote_ReplacesPreviousVote(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	p, _ := svc.Create(context.Background(), "editor-1", CreateInput{
		Question: "q",
		Options:  []string{"a", "b"},
	})

	if err := svc.Vote(context.Background(), p.ID, p.Options[0].ID, "user-1"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := svc.Vote(context.Background(), p.ID, p.Options[1].ID, "user-1"); err != nil {
		t.Fatalf("re-vote: %v", err)
	}

	res, err := svc.Results(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if res[p.Options[0].ID] != 0 || res[p.Options[1].ID] != 1 {
		t.Fatalf("results = %v", res)
	}
}

func TestService_Vote_UnknownOption(t *testing.T) {
	svc := newTestService(newTestRepo())

	p, _ := svc.Create(context.Background(), "editor-1", CreateInput{
		Question: "q",
		Options:  []string{"a", "b"},
	})

	if err := svc.Vote(context.Background(), p.ID, "nope", "user-1"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

func TestService_Vote_ClosedPoll(t *testing.T) {
	svc := newTestService(newTestRepo())

	p, _ := svc.Create(context.Background(), "editor-1", CreateInput{
		Question: "q",
		Options:  []string{"a", "b"},
	})

	if _, err := svc.Close(context.Background(), p.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := svc.Vote(context.Background(), p.ID, p.Options[0].ID, "user-1"); !errors.Is(err, ErrPollClosed) {
		t.Fatalf("expected ErrPollClosed, got %v", err)
	}

	// Cerrar de nuevo no es error.
	if _, err := svc.Close(context.Background(), p.ID); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestService_Results_IncludesZeroOptions(t *testing.T) {
	svc := newTestService(newTestRepo())

	p, _ := svc.Create(context.Background(), "editor-1", CreateInput{
		Question: "q",
		Options:  []string{"a", "b", "c"},
	})

	_ = svc.Vote(context.Background(), p.ID, p.Options[0].ID, "user-1")

	res, err := svc.Results(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("expected all options present, got %v", res)
	}
}
