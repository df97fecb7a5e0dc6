package query

import (
	"fmt"
	"strings"
)

const (
	TypeSessionResources = "planka.query.session.resources"
	TypeIsSubscribed     = "planka.query.subscription.exists"
	TypeSubscribers      = "planka.query.resource.subscribers"
)

type SessionResourcesMessage struct {
	SessionID string
}

func (SessionResourcesMessage) Type() string { return TypeSessionResources }

func (m SessionResourcesMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return fmt.Errorf("query: session id is required")
	}
	return nil
}

type IsSubscribedMessage struct {
	SessionID   string
	ResourceURI string
}

func (IsSubscribedMessage) Type() string { return TypeIsSubscribed }

func (m IsSubscribedMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return fmt.Errorf("query: session id is required")
	}
	if strings.TrimSpace(m.ResourceURI) == "" {
		return fmt.Errorf("query: resource uri is required")
	}
	return nil
}

type SubscribersMessage struct {
	ResourceURI string
}

func (SubscribersMessage) Type() string { return TypeSubscribers }

func (m SubscribersMessage) Validate() error {
	if strings.TrimSpace(m.ResourceURI) == "" {
		return fmt.Errorf("query: resource uri is required")
	}
	return nil
}
