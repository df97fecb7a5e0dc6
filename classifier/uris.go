// Package classifier maps Planka webhook events onto the MCP resource URIs
// they invalidate.
package classifier

const Scheme = "planka"

// NotificationsURI is the single resource covering the current user's
// notification feed. Every notificationCreate event maps here regardless of
// the target user; per-user fan-out is a deliberate non-feature for now.
const NotificationsURI = Scheme + "://notifications"

func BoardURI(boardID string) string {
	return Scheme + "://boards/" + boardID
}

func ListURI(listID string) string {
	return Scheme + "://lists/" + listID
}

func ListCardsURI(listID string) string {
	return Scheme + "://lists/" + listID + "/cards"
}

func CardURI(cardID string) string {
	return Scheme + "://cards/" + cardID
}

func CardCommentsURI(cardID string) string {
	return Scheme + "://cards/" + cardID + "/comments"
}
