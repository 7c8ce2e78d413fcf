// Package lobby is the in-process session/lobby collaborator: per-game
// configuration plus the mutable status field the room engine updates on
// finish. Matchmaking CRUD endpoints live elsewhere; this package only
// holds what the engine needs at delayed-start time.
package lobby

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	game "github.com/nastosinka/oops-trap-sub000"
)

// Session is one configured game.
type Session struct {
	GameID     int64             `json:"gameId"`
	Token      string            `json:"token"`
	MapID      string            `json:"mapId"`
	Difficulty string            `json:"difficulty"`
	TrapperID  string            `json:"trapperId"`
	OwnerID    string            `json:"ownerId"`
	Roster     map[string]string `json:"roster"`
	Status     string            `json:"status"`
}

// Service implements game.LobbyProvider over an in-memory table.
type Service struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewService() *Service {
	return &Service{sessions: make(map[int64]*Session)}
}

// Put registers or replaces a session configuration. The token
// identifies the lobby handoff and is generated when absent.
func (s *Service) Put(session Session) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.Token == "" {
		session.Token = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = game.LobbyStatusWaiting
	}
	copied := session
	copied.Roster = cloneRoster(session.Roster)
	s.sessions[session.GameID] = &copied
	return copied
}

// Game satisfies game.LobbyProvider.
func (s *Service) Game(gameID int64) (game.SessionConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[gameID]
	if !ok {
		return game.SessionConfig{}, fmt.Errorf("unknown game %d", gameID)
	}
	return game.SessionConfig{
		GameID:     session.GameID,
		MapID:      session.MapID,
		Difficulty: session.Difficulty,
		TrapperID:  session.TrapperID,
		OwnerID:    session.OwnerID,
		Roster:     cloneRoster(session.Roster),
	}, nil
}

// SetStatus satisfies game.LobbyProvider.
func (s *Service) SetStatus(gameID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[gameID]
	if !ok {
		return fmt.Errorf("unknown game %d", gameID)
	}
	session.Status = status
	return nil
}

// Status reads back a session's status, mostly for tests and diagnostics.
func (s *Service) Status(gameID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[gameID]
	if !ok {
		return "", false
	}
	return session.Status, true
}

// LoadFile seeds the table from a JSON array of sessions. Used by dev
// deployments that run without a matchmaking service.
func (s *Service) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read lobby seed: %w", err)
	}
	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return fmt.Errorf("parse lobby seed: %w", err)
	}
	for _, session := range sessions {
		if session.GameID == 0 {
			return fmt.Errorf("lobby seed: session without gameId")
		}
		s.Put(session)
	}
	return nil
}

func cloneRoster(roster map[string]string) map[string]string {
	if roster == nil {
		return nil
	}
	copied := make(map[string]string, len(roster))
	for id, name := range roster {
		copied[id] = name
	}
	return copied
}
