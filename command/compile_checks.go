package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SubscribeMessage]     = (*SubscribeCommand)(nil)
	_ gocmd.Commander[UnsubscribeMessage]   = (*UnsubscribeCommand)(nil)
	_ gocmd.Commander[RemoveSessionMessage] = (*RemoveSessionCommand)(nil)
)
