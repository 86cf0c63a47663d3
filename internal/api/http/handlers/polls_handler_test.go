package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/spec-kit/poll-service/internal/domain"
)

func createPoll(t *testing.T, env *testEnv, owner *domain.User, title, options string) *domain.Poll {
	t.Helper()
	poll, err := env.pollSvc.Create(context.Background(), owner, title, options)
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}
	return poll
}

func decodeData(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if err := json.Unmarshal(body.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

type pollJSON struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Options []struct {
		Name  string `json:"name"`
		Votes int64  `json:"votes"`
	} `json:"options"`
	CreatedBy string `json:"created_by"`
}

func TestCreatePollRequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := doRequest(t, env.app, formRequest(http.MethodPost, "/polls", url.Values{
		"title":   {"Lunch"},
		"options": {"Pizza\nTacos"},
	}, ""))
	assertRedirect(t, resp, "/login")

	resp = doRequest(t, env.app, formRequest(http.MethodGet, "/polls/new", nil, ""))
	assertRedirect(t, resp, "/login")
}

func TestCreatePoll(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.register(t, "alice", "pw1")

	resp := doRequest(t, env.app, formRequest(http.MethodPost, "/polls", url.Values{
		"title":   {"Lunch"},
		"options": {"Pizza\nTacos\nSushi"},
	}, token))
	assertStatus(t, resp, http.StatusFound)
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/polls/") {
		t.Fatalf("redirect %q is not a poll page", location)
	}

	resp = doRequest(t, env.app, formRequest(http.MethodGet, location, nil, ""))
	assertStatus(t, resp, http.StatusOK)
	var poll pollJSON
	decodeData(t, resp, &poll)
	if poll.Title != "Lunch" || len(poll.Options) != 3 || poll.CreatedBy != alice.ID {
		t.Fatalf("unexpected poll: %+v", poll)
	}
}

func TestCreatePollValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "alice", "pw1")

	resp := doRequest(t, env.app, formRequest(http.MethodPost, "/polls", url.Values{
		"title":   {"Lunch"},
		"options": {"Pizza\n   \n"},
	}, token))
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestListPolls(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register(t, "alice", "pw1")
	createPoll(t, env, alice, "Lunch", "Pizza\nTacos")
	createPoll(t, env, alice, "Dinner", "Soup\nSalad")

	for _, path := range []string{"/", "/polls"} {
		resp := doRequest(t, env.app, formRequest(http.MethodGet, path, nil, ""))
		assertStatus(t, resp, http.StatusOK)
		var polls []pollJSON
		decodeData(t, resp, &polls)
		if len(polls) != 2 {
			t.Fatalf("%s: got %d polls, want 2", path, len(polls))
		}
	}
}

func TestShowPollNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := doRequest(t, env.app, formRequest(http.MethodGet, "/polls/no-such-poll", nil, ""))
	assertStatus(t, resp, http.StatusNotFound)
}

func TestVoteAnonymous(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register(t, "alice", "pw1")
	poll := createPoll(t, env, alice, "Lunch", "Pizza\nTacos\nSushi")

	for i := 0; i < 2; i++ {
		resp := doRequest(t, env.app, formRequest(http.MethodPost, "/polls/"+poll.ID+"/vote", url.Values{
			"option": {"1"},
		}, ""))
		assertRedirect(t, resp, "/polls/"+poll.ID)
	}

	updated, err := env.pollSvc.GetByID(context.Background(), poll.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Options[1].Votes != 2 {
		t.Fatalf("expected 2 votes, got %d", updated.Options[1].Votes)
	}
}

func TestVoteRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register(t, "alice", "pw1")
	poll := createPoll(t, env, alice, "Lunch", "Pizza\nTacos")

	for name, option := range map[string]string{
		"non-numeric":  "abc",
		"negative":     "-1",
		"out of range": "2",
	} {
		resp := doRequest(t, env.app, formRequest(http.MethodPost, "/polls/"+poll.ID+"/vote", url.Values{
			"option": {option},
		}, ""))
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", name, resp.StatusCode)
		}
	}

	resp := doRequest(t, env.app, formRequest(http.MethodPost, "/polls/missing/vote", url.Values{
		"option": {"0"},
	}, ""))
	assertStatus(t, resp, http.StatusNotFound)
}

func TestAddOptionGuards(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register(t, "alice", "pw1")
	_, bobToken := env.register(t, "bob", "pw2")
	poll := createPoll(t, env, alice, "Lunch", "Pizza\nTacos")

	// anonymous callers are sent to login
	resp := doRequest(t, env.app, formRequest(http.MethodPost, "/polls/"+poll.ID+"/options", url.Values{
		"name": {"Sushi"},
	}, ""))
	assertRedirect(t, resp, "/login")

	// blank names are rejected
	resp = doRequest(t, env.app, formRequest(http.MethodPost, "/polls/"+poll.ID+"/options", url.Values{
		"name": {"   "},
	}, bobToken))
	assertStatus(t, resp, http.StatusBadRequest)

	// any authenticated user can add
	resp = doRequest(t, env.app, formRequest(http.MethodPost, "/polls/"+poll.ID+"/options", url.Values{
		"name": {"Sushi"},
	}, bobToken))
	assertRedirect(t, resp, "/polls/"+poll.ID)

	updated, err := env.pollSvc.GetByID(context.Background(), poll.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(updated.Options) != 3 || updated.Options[2].Name != "Sushi" || updated.Options[2].Votes != 0 {
		t.Fatalf("unexpected options: %+v", updated.Options)
	}
}

func TestDeletePoll(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.register(t, "alice", "pw1")
	_, malloryToken := env.register(t, "mallory", "pw2")
	poll := createPoll(t, env, alice, "Lunch", "Pizza\nTacos")

	resp := doRequest(t, env.app, formRequest(http.MethodPost, "/polls/"+poll.ID+"/delete", nil, malloryToken))
	assertStatus(t, resp, http.StatusForbidden)

	resp = doRequest(t, env.app, formRequest(http.MethodPost, "/polls/"+poll.ID+"/delete", nil, aliceToken))
	assertRedirect(t, resp, "/polls/mine")

	resp = doRequest(t, env.app, formRequest(http.MethodPost, "/polls/"+poll.ID+"/delete", nil, aliceToken))
	assertStatus(t, resp, http.StatusNotFound)
}

func TestMyPolls(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.register(t, "alice", "pw1")
	bob, _ := env.register(t, "bob", "pw2")
	createPoll(t, env, alice, "Mine", "A\nB")
	createPoll(t, env, bob, "Theirs", "A\nB")

	resp := doRequest(t, env.app, formRequest(http.MethodGet, "/polls/mine", nil, aliceToken))
	assertRedirect(t, resp, "/polls/mine/list")

	resp = doRequest(t, env.app, formRequest(http.MethodGet, "/polls/mine/list", nil, aliceToken))
	assertStatus(t, resp, http.StatusOK)
	var polls []pollJSON
	decodeData(t, resp, &polls)
	if len(polls) != 1 || polls[0].Title != "Mine" {
		t.Fatalf("unexpected owned polls: %+v", polls)
	}

	resp = doRequest(t, env.app, formRequest(http.MethodGet, "/polls/mine/list", nil, ""))
	assertRedirect(t, resp, "/login")
}
