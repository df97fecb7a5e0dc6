package dispatcher

import (
	"context"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/mintopia/planka-mcp-sub001/core"
)

// LogNotifier records each notification intent through structured logging.
// It stands in for a live MCP transport: swapping in a real sender is a
// matter of providing another core.Notifier.
type LogNotifier struct {
	Logger core.Logger
}

func NewLogNotifier(logger core.Logger) *LogNotifier {
	return &LogNotifier{Logger: glog.Ensure(logger)}
}

func (n *LogNotifier) NotifyResourceChanged(ctx context.Context, sessionID string, uri string) error {
	sessionID = strings.TrimSpace(sessionID)
	uri = strings.TrimSpace(uri)
	if sessionID == "" || uri == "" {
		return dispatchBadInput("dispatcher: session id and resource uri are required", nil)
	}
	logger := glog.Ensure(n.loggerOrNil())
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Info("resource changed", "session_id", sessionID, "resource_uri", uri)
	return nil
}

func (n *LogNotifier) loggerOrNil() core.Logger {
	if n == nil {
		return nil
	}
	return n.Logger
}

// NopNotifier drops every intent. Useful in tests and when dispatch is
// wired but delivery is intentionally disabled.
type NopNotifier struct{}

func (NopNotifier) NotifyResourceChanged(context.Context, string, string) error { return nil }

var (
	_ core.Notifier = (*LogNotifier)(nil)
	_ core.Notifier = NopNotifier{}
)
