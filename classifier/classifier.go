package classifier

import (
	"fmt"
	"strings"
)

// Classify maps one webhook event onto the resource URIs it invalidates.
// The result is deduplicated, preserves first-seen order, and is
// deterministic for a given input. Missing identifiers suppress the URIs
// that would have used them; an unrecognized event type yields an empty
// list. Classify never fails: absence of data degrades to "nothing to
// invalidate" so a malformed payload can not block webhook acknowledgement.
func Classify(eventType string, data map[string]any) []string {
	eventType = strings.TrimSpace(eventType)
	set := newURISet()

	switch {
	case eventType == "cardCreate" || eventType == "cardDelete":
		if boardID := lookupID(data, "boardId"); boardID != "" {
			set.add(BoardURI(boardID))
		}
		if listID := lookupID(data, "listId"); listID != "" {
			set.add(ListCardsURI(listID))
		}
	case eventType == "cardUpdate":
		if cardID := lookupID(data, "cardId", "id"); cardID != "" {
			set.add(CardURI(cardID))
		}
		if boardID := lookupID(data, "boardId"); boardID != "" {
			set.add(BoardURI(boardID))
		}
		listID := lookupID(data, "listId")
		if listID != "" {
			set.add(ListCardsURI(listID))
		}
		// A card moved across lists touches the previous list's card
		// collection too.
		if prevListID := lookupID(data, "prevListId"); prevListID != "" && prevListID != listID {
			set.add(ListCardsURI(prevListID))
		}
	case strings.HasPrefix(eventType, "comment"):
		if cardID := lookupID(data, "cardId"); cardID != "" {
			set.add(CardURI(cardID))
			set.add(CardCommentsURI(cardID))
		}
	case strings.HasPrefix(eventType, "task"):
		if cardID := lookupID(data, "cardId"); cardID != "" {
			set.add(CardURI(cardID))
		}
	case strings.HasPrefix(eventType, "board"):
		if boardID := lookupID(data, "boardId", "id"); boardID != "" {
			set.add(BoardURI(boardID))
		}
	case strings.HasPrefix(eventType, "list"):
		if boardID := lookupID(data, "boardId"); boardID != "" {
			set.add(BoardURI(boardID))
		}
		if listID := lookupID(data, "listId", "id"); listID != "" {
			set.add(ListURI(listID))
			set.add(ListCardsURI(listID))
		}
	case strings.HasPrefix(eventType, "label"):
		if boardID := lookupID(data, "boardId"); boardID != "" {
			set.add(BoardURI(boardID))
		}
	case eventType == "notificationCreate":
		set.add(NotificationsURI)
	case strings.HasPrefix(eventType, "attachment"):
		if cardID := lookupID(data, "cardId"); cardID != "" {
			set.add(CardURI(cardID))
		}
	}

	return set.values()
}

// lookupID probes the payload for the first present identifier among the
// candidate keys, checking the top level and then the nested item wrapper
// per key. First match wins.
func lookupID(data map[string]any, keys ...string) string {
	if len(data) == 0 {
		return ""
	}
	item, _ := data["item"].(map[string]any)
	for _, key := range keys {
		if value := stringValue(data[key]); value != "" {
			return value
		}
		if item != nil {
			if value := stringValue(item[key]); value != "" {
				return value
			}
		}
	}
	return ""
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		// JSON numbers decode to float64; Planka ids are integral.
		return strings.TrimSpace(fmt.Sprintf("%.0f", typed))
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

type uriSet struct {
	seen    map[string]struct{}
	ordered []string
}

func newURISet() *uriSet {
	return &uriSet{seen: map[string]struct{}{}}
}

func (s *uriSet) add(uri string) {
	if _, exists := s.seen[uri]; exists {
		return
	}
	s.seen[uri] = struct{}{}
	s.ordered = append(s.ordered, uri)
}

func (s *uriSet) values() []string {
	if len(s.ordered) == 0 {
		return []string{}
	}
	return append([]string(nil), s.ordered...)
}
