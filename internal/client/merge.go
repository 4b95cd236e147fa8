package client

import "sort"

// MergeConversation combines the historical page with live traffic for one
// open conversation into a single ordered, deduplicated view. It is a pure
// function of its inputs and is recomputed whenever any of them change.
//
// A live entry is dropped when its id is already historical, or — for an
// optimistic entry — when its confirmed counterpart is already present, so a
// temporary entry and its confirmation are never visible together.
func MergeConversation(historical, live []ChatMessage, selfID, peerID int64) []ChatMessage {
	merged := make([]ChatMessage, 0, len(historical)+len(live))
	seen := make(map[string]struct{}, len(historical)+len(live))

	// Confirmed ids from either source suppress their temp counterparts,
	// regardless of the order entries arrived in.
	confirmed := make(map[string]struct{}, len(historical)+len(live))
	for _, msg := range historical {
		confirmed[msg.ID] = struct{}{}
	}
	for _, msg := range live {
		if !msg.IsTemp() {
			confirmed[msg.ID] = struct{}{}
		}
	}

	for _, msg := range historical {
		if _, ok := seen[msg.ID]; ok {
			continue
		}
		seen[msg.ID] = struct{}{}
		merged = append(merged, msg)
	}

	for _, msg := range live {
		if !belongsToConversation(msg, selfID, peerID) {
			continue
		}
		if _, ok := seen[msg.ID]; ok {
			continue
		}
		if msg.IsTemp() {
			if _, ok := confirmed[msg.ConfirmedID()]; ok {
				continue
			}
		}
		seen[msg.ID] = struct{}{}
		merged = append(merged, msg)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}

func belongsToConversation(msg ChatMessage, selfID, peerID int64) bool {
	return (msg.SenderID == selfID && msg.ReceiverID == peerID) ||
		(msg.SenderID == peerID && msg.ReceiverID == selfID)
}
