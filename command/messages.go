package command

import (
	"fmt"
	"strings"
)

const (
	TypeSubscribe     = "planka.command.subscription.subscribe"
	TypeUnsubscribe   = "planka.command.subscription.unsubscribe"
	TypeRemoveSession = "planka.command.session.remove"
)

type SubscribeMessage struct {
	SessionID   string
	ResourceURI string
}

func (SubscribeMessage) Type() string { return TypeSubscribe }

func (m SubscribeMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return fmt.Errorf("command: session id is required")
	}
	if strings.TrimSpace(m.ResourceURI) == "" {
		return fmt.Errorf("command: resource uri is required")
	}
	return nil
}

type UnsubscribeMessage struct {
	SessionID   string
	ResourceURI string
}

func (UnsubscribeMessage) Type() string { return TypeUnsubscribe }

func (m UnsubscribeMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return fmt.Errorf("command: session id is required")
	}
	if strings.TrimSpace(m.ResourceURI) == "" {
		return fmt.Errorf("command: resource uri is required")
	}
	return nil
}

type RemoveSessionMessage struct {
	SessionID string
}

func (RemoveSessionMessage) Type() string { return TypeRemoveSession }

func (m RemoveSessionMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return fmt.Errorf("command: session id is required")
	}
	return nil
}
