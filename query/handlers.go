package query

import (
	"context"
)

// SubscriptionReader is the read-only slice of the runtime the query
// surface serves from.
type SubscriptionReader interface {
	SessionResources(ctx context.Context, sessionID string) ([]string, error)
	IsSubscribed(ctx context.Context, sessionID string, uri string) (bool, error)
	Subscribers(ctx context.Context, uri string) ([]string, error)
}

type SessionResourcesQuery struct {
	reader SubscriptionReader
}

func NewSessionResourcesQuery(reader SubscriptionReader) *SessionResourcesQuery {
	return &SessionResourcesQuery{reader: reader}
}

func (q *SessionResourcesQuery) Query(ctx context.Context, msg SessionResourcesMessage) ([]string, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: subscription reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, queryWrapValidation(err, "query: session resources rejected")
	}
	return q.reader.SessionResources(ctx, msg.SessionID)
}

type IsSubscribedQuery struct {
	reader SubscriptionReader
}

func NewIsSubscribedQuery(reader SubscriptionReader) *IsSubscribedQuery {
	return &IsSubscribedQuery{reader: reader}
}

func (q *IsSubscribedQuery) Query(ctx context.Context, msg IsSubscribedMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: subscription reader is required")
	}
	if err := msg.Validate(); err != nil {
		return false, queryWrapValidation(err, "query: subscription lookup rejected")
	}
	return q.reader.IsSubscribed(ctx, msg.SessionID, msg.ResourceURI)
}

type SubscribersQuery struct {
	reader SubscriptionReader
}

func NewSubscribersQuery(reader SubscriptionReader) *SubscribersQuery {
	return &SubscribersQuery{reader: reader}
}

func (q *SubscribersQuery) Query(ctx context.Context, msg SubscribersMessage) ([]string, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: subscription reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, queryWrapValidation(err, "query: subscribers lookup rejected")
	}
	return q.reader.Subscribers(ctx, msg.ResourceURI)
}
