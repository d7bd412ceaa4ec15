package services

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/store"
	"github.com/eldrun-online/community-hub/backend/websocket"
)

var chatterLines = []string{
	"anyone up for a dungeon run?",
	"just hit a new level, finally",
	"selling iron ore in trade, good prices",
	"who took the north mine again??",
	"gg that siege was close",
	"is the event boss up tonight?",
	"lf2m for the ember caverns",
	"brb, need more coffee",
	"the market prices are wild today",
	"anyone seen Grimshade around?",
	"that patch really changed the meta",
	"wts rare rose bundle, pm me",
	"first time beating the chasm solo!",
	"careful in the west woods, gankers about",
	"can a mod pin the event schedule?",
}

// PresenceService generates synthetic chat and presence changes while no
// backend is attached, so an offline deployment still feels alive. Exactly
// one loop runs per process; Start is idempotent. The remote-mode flag is
// checked on every tick so attaching a backend mid-session silences the
// simulator without a restart.
type PresenceService struct {
	store    *store.Store
	wsHub    *websocket.Hub
	metrics  *websocket.Metrics
	interval time.Duration

	ticker *time.Ticker
	done   chan bool

	mu      sync.Mutex
	started bool
	rng     *rand.Rand
}

// NewPresenceService creates a presence simulator with the given tick interval
func NewPresenceService(st *store.Store, wsHub *websocket.Hub, metrics *websocket.Metrics, interval time.Duration) *PresenceService {
	return &PresenceService{
		store:    st,
		wsHub:    wsHub,
		metrics:  metrics,
		interval: interval,
		done:     make(chan bool),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins the simulation loop. Calling it again while running is a
// no-op; duplicate loops would double synthetic message volume.
func (s *PresenceService) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ticker = time.NewTicker(s.interval)
	s.mu.Unlock()

	go s.run()
	log.Println("Presence simulator started")
}

// Stop halts the simulation loop
func (s *PresenceService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	ticker := s.ticker
	s.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
	}
	s.done <- true
	log.Println("Presence simulator stopped")
}

func (s *PresenceService) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.Tick()
		}
	}
}

// Tick performs one simulation step. A failure inside a tick is swallowed;
// the loop continues on the next interval.
func (s *PresenceService) Tick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Presence: tick recovered from panic: %v", r)
		}
	}()

	// Remote mode durably silences synthetic traffic
	if s.store.RemoteAttached() {
		return
	}

	channels := s.store.ListChannels()
	users := s.store.SimulatedUsers()
	if len(channels) == 0 || len(users) == 0 {
		return
	}

	s.mu.Lock()
	ch := channels[s.rng.Intn(len(channels))]
	user := users[s.rng.Intn(len(users))]
	line := chatterLines[s.rng.Intn(len(chatterLines))]
	rotate := s.rng.Intn(3) == 0
	statusPick := s.rng.Intn(3)
	s.mu.Unlock()

	snapshot, ok := s.store.Snapshot(user.ID)
	if !ok {
		return
	}

	msg, err := s.store.Append(ch.ID, store.Draft{
		Author:  snapshot,
		Content: line,
		Type:    models.MessageText,
	})
	if err != nil {
		log.Printf("Presence: failed to append synthetic message: %v", err)
		return
	}
	s.metrics.IncMessages("simulator")
	if s.wsHub != nil {
		s.wsHub.BroadcastChatMessage(msg)
	}

	if rotate {
		statuses := []models.UserStatus{models.StatusOnline, models.StatusAway, models.StatusBusy}
		next := statuses[statusPick]
		if err := s.store.SetStatus(user.ID, next, user.StatusMessage); err == nil && s.wsHub != nil {
			s.wsHub.BroadcastPresence(user.ID, string(next))
		}
	}
}
