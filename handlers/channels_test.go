package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/eldrun-online/community-hub/backend/models"
)

func TestListChannels(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/channels", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Channels []models.Channel `json:"channels"`
		Current  string           `json:"current"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Channels) != 1 || resp.Channels[0].Name != "General" {
		t.Fatalf("unexpected channels: %+v", resp.Channels)
	}
}

func TestCreateChannelEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/channels", "u1",
		models.CreateChannelRequest{Name: "Trade", Description: "haggle here"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Channel models.Channel `json:"channel"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Channel.CreatedBy != "u1" {
		t.Fatalf("creator not recorded: %q", resp.Channel.CreatedBy)
	}
	if len(f.store.ListChannels()) != 2 {
		t.Fatalf("channel not registered")
	}
}

func TestCreateChannelEmptyNameEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/channels", "u1",
		map[string]string{"name": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateChannelDisabledForRegularUsers(t *testing.T) {
	f := newFixture(t)
	off := false
	f.store.UpdateSettings(&models.UpdateSettingsRequest{AllowCustomChannels: &off})

	w := f.do(t, http.MethodPost, "/api/v1/channels", "u1",
		models.CreateChannelRequest{Name: "Forbidden"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	// Staff can still create channels with the setting off
	u, _ := f.store.User("u1")
	u.Role = models.RoleModerator
	w = f.do(t, http.MethodPost, "/api/v1/channels", "u1",
		models.CreateChannelRequest{Name: "Staff Room"})
	if w.Code != http.StatusCreated {
		t.Fatalf("staff create should pass, got %d: %s", w.Code, w.Body.String())
	}
}

func TestJoinChannelEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/join", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	ch, _ := f.store.Channel(f.channel.ID)
	if ch.UserCount != 1 {
		t.Fatalf("user count not bumped: %d", ch.UserCount)
	}
}

func TestJoinLockedChannelEndpoint(t *testing.T) {
	f := newFixture(t)
	locked := true
	if _, err := f.store.UpdateChannel(f.channel.ID, &models.UpdateChannelRequest{IsLocked: &locked}); err != nil {
		t.Fatalf("update: %v", err)
	}

	w := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/join", "u1", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestJoinFullChannelEndpoint(t *testing.T) {
	f := newFixture(t)
	max := 1
	if _, err := f.store.UpdateChannel(f.channel.ID, &models.UpdateChannelRequest{MaxUsers: &max}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if w := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/join", "u1", nil); w.Code != http.StatusOK {
		t.Fatalf("first join should pass, got %d", w.Code)
	}
	if w := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/join", "u2", nil); w.Code != http.StatusConflict {
		t.Fatalf("full channel should be 409, got %d", w.Code)
	}
}
