package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/state"
)

type fakeAnswers struct{ calls int }

func (f *fakeAnswers) Answer(_ context.Context, _ entity.CorpusHandle, question string) (string, bool) {
	f.calls++
	return "grounded: " + question, true
}

func newTestUsecase(t *testing.T) (*ConversationUsecase, *state.Store, *fakeAnswers) {
	t.Helper()
	store := state.NewStore(time.Hour, time.Hour, 10)
	t.Cleanup(store.Close)
	answers := &fakeAnswers{}
	return NewUsecase(store, answers), store, answers
}

func TestAddMessage_StatementHasNoReply(t *testing.T) {
	uc, _, answers := newTestUsecase(t)

	added := uc.AddMessage(context.Background(), "s", &entity.AddMessageRequest{Role: entity.RoleUser, Content: "Hello there"})

	if len(added) != 1 || answers.calls != 0 {
		t.Errorf("added = %d, calls = %d; want 1 and 0", len(added), answers.calls)
	}
}

func TestAddMessage_QuestionWithoutCorpus(t *testing.T) {
	uc, _, answers := newTestUsecase(t)

	added := uc.AddMessage(context.Background(), "s", &entity.AddMessageRequest{Role: entity.RoleUser, Content: "What is it?"})

	if len(added) != 2 || added[1].Content != notIndexedReply || added[1].Grounded {
		t.Errorf("added = %+v", added)
	}
	if answers.calls != 0 {
		t.Errorf("calls = %d, want 0", answers.calls)
	}
}

func TestAddMessage_GroundedReply(t *testing.T) {
	uc, store, _ := newTestUsecase(t)
	sess := store.Session("s")
	sess.ReplaceDocument(state.Document{ID: "d"}, entity.IndexingStarted)
	sess.SetCorpus("d", "vs_1")

	added := uc.AddMessage(context.Background(), "s", &entity.AddMessageRequest{Role: entity.RoleUser, Content: " What is it? "})

	if len(added) != 2 || !added[1].Grounded || added[1].Content != "grounded: What is it?" {
		t.Errorf("added = %+v", added)
	}
	if got := uc.Messages(context.Background(), "s"); len(got) != 2 || got[0].Role != entity.RoleUser {
		t.Errorf("Messages() = %+v", got)
	}
}

func TestMessages_SessionsAreIsolated(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	uc.AddMessage(context.Background(), "a", &entity.AddMessageRequest{Role: entity.RoleUser, Content: "hi"})

	if got := uc.Messages(context.Background(), "b"); len(got) != 0 {
		t.Errorf("Messages(b) = %+v, want empty", got)
	}
}

func TestUpdatesAndSubscribe(t *testing.T) {
	uc, store, _ := newTestUsecase(t)
	ch, cancel := uc.Subscribe(context.Background(), "s")
	defer cancel()

	store.Session("s").Publish(entity.UpdateQAReady, "ready", nil)

	select {
	case u := <-ch:
		if u.Kind != entity.UpdateQAReady {
			t.Errorf("Kind = %q, want qa_ready", u.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	if got := uc.Updates(context.Background(), "s", 0); len(got) != 1 {
		t.Errorf("Updates() = %d, want 1", len(got))
	}
	if got := uc.Updates(context.Background(), "s", 1); len(got) != 0 {
		t.Errorf("Updates(since 1) = %d, want 0", len(got))
	}
}
