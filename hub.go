package main

import (
	"log"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"
)

const (
	maxConnsPerIP   = 5
	maxTotalConns   = 256
	maxLimiters     = 4096
	broadcastPeriod = 50 * time.Millisecond

	upgradeRate  = rate.Limit(2)
	upgradeBurst = 4
)

// Hub fans the relay's view of the match out to websocket spectators
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once

	// Connection limiting (accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	limiters   map[string]*rate.Limiter

	// Match view, fed by the relay workers
	stateMu sync.Mutex
	peers   [2]SpectatorPeer
	score   *ScoreLedger
	cursor  eventCursor
	tick    uint64

	matchID   string
	relayAddr string
	policy    ScorePolicy
	db        *DB
}

// NewHub creates a spectator hub for one match. db may be nil.
func NewHub(matchID, relayAddr string, policy ScorePolicy, db *DB) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		stop:       make(chan struct{}),
		ipConns:    make(map[string]int),
		limiters:   make(map[string]*rate.Limiter),
		score:      NewScoreLedger(policy),
		matchID:    matchID,
		relayAddr:  relayAddr,
		policy:     policy,
		db:         db,
	}
}

// AllowUpgrade applies the per-IP websocket upgrade rate
func (h *Hub) AllowUpgrade(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	lim, ok := h.limiters[ip]
	if !ok {
		if len(h.limiters) >= maxLimiters {
			clear(h.limiters)
		}
		lim = rate.NewLimiter(upgradeRate, upgradeBurst)
		h.limiters[ip] = lim
	}
	return lim.Allow()
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// PeerChanged implements RelayObserver
func (h *Hub) PeerChanged(index int, connected bool) {
	if index < 0 || index > 1 {
		return
	}
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	h.peers[index].Connected = connected
	if connected {
		h.cursor.reset(index)
	}
}

// SnapshotReceived implements RelayObserver
func (h *Hub) SnapshotReceived(index int, s Snapshot) {
	if index < 0 || index > 1 {
		return
	}
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	for _, ev := range h.cursor.fresh(index, s) {
		h.score.Apply(ev)
	}
	s.Events = nil
	h.peers[index].Craft = &s
}

// Frame returns the current spectator view and advances the tick
func (h *Hub) Frame() SpectatorFrame {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	h.tick++
	return SpectatorFrame{
		Tick:    h.tick,
		MatchID: h.matchID,
		Peers:   h.peers,
		Scores:  h.score.Scores(),
	}
}

// Run processes register/unregister events and broadcasts frames until Stop
func (h *Hub) Run() {
	ticker := time.NewTicker(broadcastPeriod)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			h.broadcast(h.Frame())

		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register hands a new spectator to Run. It reports false once the hub
// has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case <-h.stop:
		return false
	default:
	}
	select {
	case h.register <- c:
		return true
	case <-h.stop:
		return false
	}
}

// Unregister hands a departing spectator to Run; after Stop it is a no-op.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

// Stop ends Run and closes every spectator
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) broadcast(f SpectatorFrame) {
	data, err := msgpack.Marshal(&f)
	if err != nil {
		log.Printf("spectator frame marshal error: %v", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.SendBinary(data)
	}
}

// Status summarizes the match for /status
func (h *Hub) Status() StatusMsg {
	h.stateMu.Lock()
	peers := 0
	for _, p := range h.peers {
		if p.Connected {
			peers++
		}
	}
	h.stateMu.Unlock()
	return StatusMsg{
		MatchID:    h.matchID,
		Peers:      peers,
		Spectators: h.ClientCount(),
		Relay:      h.relayAddr,
	}
}

// Leaderboard returns the persisted standings of this match, or the live
// scores when no stats database is attached.
func (h *Hub) Leaderboard() ([]LeaderboardEntry, error) {
	if h.db != nil {
		return h.db.Leaderboard(h.matchID, h.policy)
	}
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	scores := h.score.Scores()
	return []LeaderboardEntry{
		{Player: 1, Score: scores[0]},
		{Player: 2, Score: scores[1]},
	}, nil
}

// ClientCount returns the number of connected spectators
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
