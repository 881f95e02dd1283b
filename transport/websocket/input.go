package websocket

import (
	"context"
	"fmt"
	"strings"

	"github.com/wricardo/snake-game/game/service"
)

// ServiceInput routes client actions to the game service
type ServiceInput struct {
	service service.GameService
}

// NewServiceInput creates an InputHandler backed by svc
func NewServiceInput(svc service.GameService) *ServiceInput {
	return &ServiceInput{service: svc}
}

// HandleInput applies one action. State changes reach clients through the session listener.
func (s *ServiceInput) HandleInput(ctx context.Context, sessionID string, input InputMessage) error {
	switch strings.ToLower(input.Action) {
	case "direction", "turn":
		_, err := s.service.SetDirection(ctx, sessionID, input.Direction)
		return err
	case "start":
		_, err := s.service.Start(ctx, sessionID)
		return err
	case "reset":
		_, err := s.service.Reset(ctx, sessionID)
		return err
	default:
		return fmt.Errorf("unknown action '%s'", input.Action)
	}
}
