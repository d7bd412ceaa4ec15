package services

import (
	"strings"
	"testing"

	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/store"
)

func newModFixture() (*store.Store, *ModerationService, *models.Channel, *models.ChatUser) {
	st := store.New()
	svc := NewModerationService(st)
	ch, _ := st.CreateChannel(&models.CreateChannelRequest{Name: "General"}, "system")
	u := &models.ChatUser{ID: "u1", Username: "anna", Level: 10, PlaytimeHours: 100, Role: models.RoleUser}
	st.AddUser(u)
	return st, svc, ch, u
}

func TestCheckPostAllowsByDefault(t *testing.T) {
	_, svc, ch, u := newModFixture()
	if v := svc.CheckPost(ch, u, "hello there"); !v.Allowed {
		t.Fatalf("expected allow, got %q", v.Reason)
	}
}

func TestCheckPostChatDisabled(t *testing.T) {
	st, svc, ch, u := newModFixture()
	off := false
	st.UpdateSettings(&models.UpdateSettingsRequest{ChatEnabled: &off})

	if v := svc.CheckPost(ch, u, "hello"); v.Allowed {
		t.Fatalf("expected deny when chat disabled")
	}
}

func TestCheckPostMaintenanceMode(t *testing.T) {
	st, svc, ch, u := newModFixture()
	on := true
	st.UpdateSettings(&models.UpdateSettingsRequest{MaintenanceMode: &on})

	if v := svc.CheckPost(ch, u, "hello"); v.Allowed {
		t.Fatalf("expected deny in maintenance mode")
	}
}

func TestCheckPostBannedUser(t *testing.T) {
	st, svc, ch, u := newModFixture()

	u.IsBanned = true
	if v := svc.CheckPost(ch, u, "hello"); v.Allowed {
		t.Fatalf("globally banned user should be denied")
	}

	u.IsBanned = false
	_ = st.BanFromChannel(ch.ID, u.ID)
	v := svc.CheckPost(ch, u, "hello")
	if v.Allowed {
		t.Fatalf("channel-banned user should be denied")
	}
	if !strings.Contains(v.Reason, "banned") {
		t.Fatalf("reason should mention the ban, got %q", v.Reason)
	}
}

func TestCheckPostBanBeatsStaff(t *testing.T) {
	_, svc, ch, u := newModFixture()
	u.Role = models.RoleModerator
	u.IsBanned = true

	if v := svc.CheckPost(ch, u, "hello"); v.Allowed {
		t.Fatalf("staff role must not bypass a ban")
	}
}

func TestCheckPostMutedUser(t *testing.T) {
	st, svc, ch, u := newModFixture()
	_ = st.MuteInChannel(ch.ID, u.ID)

	if v := svc.CheckPost(ch, u, "hello"); v.Allowed {
		t.Fatalf("muted user should be denied")
	}
}

func TestCheckPostLevelGates(t *testing.T) {
	st, svc, ch, u := newModFixture()

	lvl := 20
	if _, err := st.UpdateChannel(ch.ID, &models.UpdateChannelRequest{MinLevel: &lvl}); err != nil {
		t.Fatalf("update channel: %v", err)
	}
	if v := svc.CheckPost(ch, u, "hello"); v.Allowed {
		t.Fatalf("level 10 user should not pass a level 20 gate")
	}

	// Staff bypass entry gates
	u.Role = models.RoleAdmin
	if v := svc.CheckPost(ch, u, "hello"); !v.Allowed {
		t.Fatalf("staff should bypass level gates, got %q", v.Reason)
	}
}

func TestCheckPostSlowMode(t *testing.T) {
	st, svc, ch, u := newModFixture()
	slow := 30
	if _, err := st.UpdateChannel(ch.ID, &models.UpdateChannelRequest{SlowMode: &slow}); err != nil {
		t.Fatalf("update channel: %v", err)
	}

	if v := svc.CheckPost(ch, u, "first"); !v.Allowed {
		t.Fatalf("first post should pass, got %q", v.Reason)
	}
	svc.RecordPost(u.ID, ch.ID)

	v := svc.CheckPost(ch, u, "second")
	if v.Allowed {
		t.Fatalf("second post inside the slow-mode window should be denied")
	}
	if !strings.Contains(v.Reason, "slow mode") {
		t.Fatalf("reason should mention slow mode, got %q", v.Reason)
	}

	// Staff are exempt from slow mode
	u.Role = models.RoleModerator
	if v := svc.CheckPost(ch, u, "third"); !v.Allowed {
		t.Fatalf("staff should bypass slow mode, got %q", v.Reason)
	}
}

func TestCheckPostMaxLength(t *testing.T) {
	_, svc, ch, u := newModFixture()
	long := strings.Repeat("a", 501)

	if v := svc.CheckPost(ch, u, long); v.Allowed {
		t.Fatalf("over-length message should be denied")
	}
	if v := svc.CheckPost(ch, u, strings.Repeat("a", 500)); !v.Allowed {
		t.Fatalf("message at the limit should pass, got %q", v.Reason)
	}

	// The limit counts characters, not bytes
	if v := svc.CheckPost(ch, u, strings.Repeat("é", 500)); !v.Allowed {
		t.Fatalf("500 multi-byte characters should pass, got %q", v.Reason)
	}
}

func TestCheckPostRateLimit(t *testing.T) {
	st, svc, ch, u := newModFixture()
	limit := 3
	st.UpdateSettings(&models.UpdateSettingsRequest{GlobalRateLimit: &limit})

	allowed := 0
	for i := 0; i < 10; i++ {
		if svc.CheckPost(ch, u, "spam").Allowed {
			allowed++
		}
	}
	if allowed > limit {
		t.Fatalf("burst should be capped at %d, got %d", limit, allowed)
	}
	if allowed == 0 {
		t.Fatalf("the initial burst should be allowed")
	}
}

func TestCheckPostWordFilter(t *testing.T) {
	st, svc, ch, u := newModFixture()
	on := true
	if _, err := st.UpdateChannel(ch.ID, &models.UpdateChannelRequest{AutoModEnabled: &on}); err != nil {
		t.Fatalf("update channel: %v", err)
	}
	filter := []string{"scamlink"}
	st.UpdateSettings(&models.UpdateSettingsRequest{WordFilter: &filter})

	if v := svc.CheckPost(ch, u, "check out this SCAMLINK now"); v.Allowed {
		t.Fatalf("filtered word should be denied case-insensitively")
	}
	if v := svc.CheckPost(ch, u, "a perfectly fine message"); !v.Allowed {
		t.Fatalf("clean message should pass, got %q", v.Reason)
	}

	// Without auto-mod the filter is not applied
	off := false
	_, _ = st.UpdateChannel(ch.ID, &models.UpdateChannelRequest{AutoModEnabled: &off})
	if v := svc.CheckPost(ch, u, "scamlink"); !v.Allowed {
		t.Fatalf("filter should only apply with auto-mod enabled, got %q", v.Reason)
	}
}

func TestCheckPostCapsRatio(t *testing.T) {
	st, svc, ch, u := newModFixture()
	on := true
	_, _ = st.UpdateChannel(ch.ID, &models.UpdateChannelRequest{AutoModEnabled: &on})

	if v := svc.CheckPost(ch, u, "STOP SHOUTING AT EVERYONE"); v.Allowed {
		t.Fatalf("all-caps message should be denied")
	}
	// Short messages are exempt from the caps check
	if v := svc.CheckPost(ch, u, "WOW GG"); !v.Allowed {
		t.Fatalf("short caps message should pass, got %q", v.Reason)
	}
}

func TestCheckGift(t *testing.T) {
	st, svc, ch, u := newModFixture()

	if v := svc.CheckGift(ch, u); !v.Allowed {
		t.Fatalf("expected allow, got %q", v.Reason)
	}

	off := false
	st.UpdateSettings(&models.UpdateSettingsRequest{ChatEnabled: &off})
	if v := svc.CheckGift(ch, u); v.Allowed {
		t.Fatalf("expected deny when chat disabled")
	}
}

func TestCheckGiftBannedSender(t *testing.T) {
	st, svc, ch, u := newModFixture()

	_ = st.BanFromChannel(ch.ID, u.ID)
	v := svc.CheckGift(ch, u)
	if v.Allowed {
		t.Fatalf("channel-banned user should not gift")
	}
	if !strings.Contains(v.Reason, "banned") {
		t.Fatalf("reason should mention the ban, got %q", v.Reason)
	}
}

func TestCheckGiftMutedSender(t *testing.T) {
	st, svc, ch, u := newModFixture()

	_ = st.MuteInChannel(ch.ID, u.ID)
	if v := svc.CheckGift(ch, u); v.Allowed {
		t.Fatalf("muted user should not gift")
	}
}

func TestCheckReact(t *testing.T) {
	st, svc, ch, u := newModFixture()

	if v := svc.CheckReact(ch, u); !v.Allowed {
		t.Fatalf("expected allow, got %q", v.Reason)
	}

	_ = st.BanFromChannel(ch.ID, u.ID)
	if v := svc.CheckReact(ch, u); v.Allowed {
		t.Fatalf("banned user should not react")
	}
}

func TestCheckJoin(t *testing.T) {
	st, svc, ch, u := newModFixture()

	if v := svc.CheckJoin(ch, u); !v.Allowed {
		t.Fatalf("expected allow, got %q", v.Reason)
	}

	locked := true
	_, _ = st.UpdateChannel(ch.ID, &models.UpdateChannelRequest{IsLocked: &locked})
	if v := svc.CheckJoin(ch, u); v.Allowed {
		t.Fatalf("locked channel should deny regular users")
	}
	u.Role = models.RoleModerator
	if v := svc.CheckJoin(ch, u); !v.Allowed {
		t.Fatalf("staff should join locked channels, got %q", v.Reason)
	}
}

func TestCheckJoinVIPOnly(t *testing.T) {
	st, svc, ch, u := newModFixture()
	vip := true
	_, _ = st.UpdateChannel(ch.ID, &models.UpdateChannelRequest{VIPOnly: &vip})

	if v := svc.CheckJoin(ch, u); v.Allowed {
		t.Fatalf("regular user should not join a VIP channel")
	}
	u.Role = models.RoleVIPBronze
	if v := svc.CheckJoin(ch, u); !v.Allowed {
		t.Fatalf("VIP member should join, got %q", v.Reason)
	}
}
