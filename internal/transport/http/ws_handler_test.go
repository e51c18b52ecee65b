package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Great2008/reads/internal/domain"
)

func TestLeaderboardFeedStreams(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "Alice", "alice@example.com")
	aliceID := profileID(t, srv, token)

	// Browser websocket clients cannot set headers, so the token rides
	// in the query string.
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/leaderboard?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	initial := readBoard(conn, t)
	if len(initial.Entries) != 1 || initial.Entries[0].TokenBalance != 0 {
		t.Fatalf("unexpected initial board %+v", initial.Entries)
	}

	resp := request(t, http.MethodPost, srv.URL+"/admin/tokens", token, map[string]any{
		"user_id": aliceID, "amount": 50, "reason": "launch promo",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("grant: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The broadcast happens before the grant response, so the update is
	// already in flight; allow a couple of reads in case snapshots
	// coalesced.
	seen := false
	for i := 0; i < 3 && !seen; i++ {
		board := readBoard(conn, t)
		for _, e := range board.Entries {
			if e.UserID == aliceID && e.TokenBalance == 50 {
				seen = true
			}
		}
	}
	if !seen {
		t.Fatalf("never saw the updated balance on the feed")
	}
}

func TestLeaderboardFeedRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/leaderboard"
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		conn.Close()
		t.Fatalf("expected handshake to fail without token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}

func readBoard(conn *websocket.Conn, t *testing.T) domain.Leaderboard {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", msg.Type)
	}
	var board domain.Leaderboard
	if err := json.Unmarshal(msg.Payload, &board); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return board
}
