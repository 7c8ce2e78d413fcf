package lobby

import (
	"os"
	"path/filepath"
	"testing"

	game "github.com/nastosinka/oops-trap-sub000"
)

func TestPutAndGame(t *testing.T) {
	service := NewService()
	stored := service.Put(Session{
		GameID:     7,
		MapID:      "arena",
		Difficulty: "normal",
		TrapperID:  "2",
		OwnerID:    "1",
		Roster:     map[string]string{"1": "alice", "2": "bob"},
	})
	if stored.Token == "" {
		t.Fatal("Put must generate a token when absent")
	}
	if stored.Status != game.LobbyStatusWaiting {
		t.Fatalf("default status = %q, want %q", stored.Status, game.LobbyStatusWaiting)
	}

	cfg, err := service.Game(7)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if cfg.MapID != "arena" || cfg.TrapperID != "2" || len(cfg.Roster) != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	// The returned roster is a copy.
	cfg.Roster["1"] = "mallory"
	again, _ := service.Game(7)
	if again.Roster["1"] != "alice" {
		t.Fatal("Game leaked the internal roster map")
	}

	if _, err := service.Game(99); err == nil {
		t.Fatal("unknown game must error")
	}
}

func TestSetStatus(t *testing.T) {
	service := NewService()
	service.Put(Session{GameID: 7, MapID: "arena"})

	if err := service.SetStatus(7, game.LobbyStatusInGame); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	status, ok := service.Status(7)
	if !ok || status != game.LobbyStatusInGame {
		t.Fatalf("status = %q/%v, want %q", status, ok, game.LobbyStatusInGame)
	}

	if err := service.SetStatus(99, game.LobbyStatusInGame); err == nil {
		t.Fatal("SetStatus for an unknown game must error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `[
  {"gameId": 1, "mapId": "arena", "difficulty": "normal", "trapperId": "2", "ownerId": "1", "roster": {"1": "alice", "2": "bob"}},
  {"gameId": 2, "mapId": "arena", "token": "fixed-token"}
]`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	service := NewService()
	if err := service.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg, err := service.Game(1)
	if err != nil {
		t.Fatalf("Game(1): %v", err)
	}
	if cfg.TrapperID != "2" || cfg.Roster["1"] != "alice" {
		t.Fatalf("seeded config = %+v", cfg)
	}
	if _, err := service.Game(2); err != nil {
		t.Fatalf("Game(2): %v", err)
	}
}

func TestLoadFileRejectsMissingGameID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(`[{"mapId": "arena"}]`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if err := NewService().LoadFile(path); err == nil {
		t.Fatal("a session without a gameId must be rejected")
	}
}
