package query

import (
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[SessionResourcesMessage, []string] = (*SessionResourcesQuery)(nil)
	_ gocmd.Querier[IsSubscribedMessage, bool]         = (*IsSubscribedQuery)(nil)
	_ gocmd.Querier[SubscribersMessage, []string]      = (*SubscribersQuery)(nil)
)
