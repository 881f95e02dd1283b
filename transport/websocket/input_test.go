package websocket

import (
	"context"
	"errors"
	"testing"

	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/service"
)

// stubService records the calls ServiceInput makes
type stubService struct {
	service.GameService
	calls []string
}

func (s *stubService) SetDirection(ctx context.Context, id, direction string) (*service.DirectionResult, error) {
	s.calls = append(s.calls, "direction:"+direction)
	return &service.DirectionResult{}, nil
}

func (s *stubService) Start(ctx context.Context, id string) (*engine.Snapshot, error) {
	s.calls = append(s.calls, "start")
	return &engine.Snapshot{}, nil
}

func (s *stubService) Reset(ctx context.Context, id string) (*engine.Snapshot, error) {
	s.calls = append(s.calls, "reset")
	return nil, errors.New("boom")
}

func TestServiceInput(t *testing.T) {
	stub := &stubService{}
	input := NewServiceInput(stub)
	ctx := context.Background()

	if err := input.HandleInput(ctx, "ab12", InputMessage{Action: "direction", Direction: "left"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := input.HandleInput(ctx, "ab12", InputMessage{Action: "START"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := input.HandleInput(ctx, "ab12", InputMessage{Action: "reset"}); err == nil {
		t.Error("Expected reset error to propagate")
	}
	if err := input.HandleInput(ctx, "ab12", InputMessage{Action: "jump"}); err == nil {
		t.Error("Expected error for unknown action")
	}

	want := []string{"direction:left", "start", "reset"}
	if len(stub.calls) != len(want) {
		t.Fatalf("Expected calls %v, got %v", want, stub.calls)
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Errorf("Call %d: expected %s, got %s", i, want[i], stub.calls[i])
		}
	}
}
