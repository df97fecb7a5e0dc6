package command

import (
	"context"
)

// MutatingService is the slice of the runtime the command surface mutates
// through.
type MutatingService interface {
	Subscribe(ctx context.Context, sessionID string, uri string) error
	Unsubscribe(ctx context.Context, sessionID string, uri string) error
	RemoveSession(ctx context.Context, sessionID string) error
}

type SubscribeCommand struct {
	service MutatingService
}

func NewSubscribeCommand(service MutatingService) *SubscribeCommand {
	return &SubscribeCommand{service: service}
}

func (c *SubscribeCommand) Execute(ctx context.Context, msg SubscribeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: subscribe service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: subscribe rejected")
	}
	return c.service.Subscribe(ctx, msg.SessionID, msg.ResourceURI)
}

type UnsubscribeCommand struct {
	service MutatingService
}

func NewUnsubscribeCommand(service MutatingService) *UnsubscribeCommand {
	return &UnsubscribeCommand{service: service}
}

func (c *UnsubscribeCommand) Execute(ctx context.Context, msg UnsubscribeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: unsubscribe service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: unsubscribe rejected")
	}
	return c.service.Unsubscribe(ctx, msg.SessionID, msg.ResourceURI)
}

type RemoveSessionCommand struct {
	service MutatingService
}

func NewRemoveSessionCommand(service MutatingService) *RemoveSessionCommand {
	return &RemoveSessionCommand{service: service}
}

func (c *RemoveSessionCommand) Execute(ctx context.Context, msg RemoveSessionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: remove session service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: remove session rejected")
	}
	return c.service.RemoveSession(ctx, msg.SessionID)
}
