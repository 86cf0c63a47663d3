package service_test

import (
	"context"
	"testing"

	"github.com/spec-kit/poll-service/internal/config"
	"github.com/spec-kit/poll-service/internal/events"
	"github.com/spec-kit/poll-service/internal/service"
	"github.com/spec-kit/poll-service/internal/testutil"
	apperrors "github.com/spec-kit/poll-service/pkg/util"
)

// End-to-end pass over the whole lifecycle: register, login, create, vote,
// guarded add-option, owner delete.
func TestPollLifecycle(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()

	authSvc := service.NewAuthService(config.AuthConfig{BcryptCost: 4}, service.AuthDependencies{
		UserRepo:   testutil.NewUserRepo(),
		Sessions:   testutil.NewSessionStore(),
		Dispatcher: dispatcher,
	})
	pollSvc := service.NewPollService(service.PollDependencies{
		PollRepo:   testutil.NewPollRepo(),
		Dispatcher: dispatcher,
	})

	var seen []events.EventType
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventPollCreated,
		events.EventVoteCast,
		events.EventPollDeleted,
	} {
		et := eventType
		dispatcher.Subscribe(et, func(context.Context, events.Event) error {
			seen = append(seen, et)
			return nil
		})
	}

	if _, err := authSvc.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	alice, token, err := authSvc.Login(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resolved, err := authSvc.ResolveSession(ctx, token); err != nil || resolved == nil {
		t.Fatalf("resolve: %v / %v", resolved, err)
	}

	poll, err := pollSvc.Create(ctx, alice, "Lunch", "Pizza\nTacos\nSushi")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(poll.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(poll.Options))
	}

	for i := 0; i < 2; i++ {
		if _, err := pollSvc.Vote(ctx, nil, poll.ID, 1); err != nil {
			t.Fatalf("vote: %v", err)
		}
	}
	voted, err := pollSvc.GetByID(ctx, poll.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if voted.Options[1].Votes != 2 || voted.Options[0].Votes != 0 || voted.Options[2].Votes != 0 {
		t.Fatalf("unexpected tallies: %+v", voted.Options)
	}

	if _, err := pollSvc.AddOption(ctx, nil, poll.ID, "Ramen"); !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("anonymous add-option must fail, got %v", err)
	}
	after, _ := pollSvc.GetByID(ctx, poll.ID)
	if len(after.Options) != 3 {
		t.Fatalf("option count changed to %d", len(after.Options))
	}

	if err := pollSvc.Delete(ctx, alice, poll.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := pollSvc.GetByID(ctx, poll.ID); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}

	want := map[events.EventType]bool{
		events.EventUserRegistered: true,
		events.EventPollCreated:    true,
		events.EventVoteCast:       true,
		events.EventPollDeleted:    true,
	}
	for _, eventType := range seen {
		delete(want, eventType)
	}
	for missing := range want {
		t.Errorf("event %s never published", missing)
	}
}
