/*
Package model contains the shared domain types of the treasury dashboard:
the open-ended dashboard state, gallery/sold items, lobby chat messages and
the ephemeral lobby participants.
*/
package model

// State is the open-ended dashboard state document. There is no fixed schema;
// well-known fields (contractAddress, burnPercent, tokenStats, nextPurchase,
// confetti) coexist with arbitrary additional keys.
type State map[string]any

// Merge applies updates to the state and returns the merged copy.
// Object-valued fields merge key-by-key with the existing value, scalars and
// arrays replace, and an explicit null replaces (used to clear a field).
// The receiver is not modified.
func (s State) Merge(updates State) State {
	merged := make(State, len(s)+len(updates))
	for k, v := range s {
		merged[k] = v
	}

	for k, v := range updates {
		if v == nil {
			merged[k] = nil
			continue
		}

		if obj, ok := v.(map[string]any); ok {
			out := make(map[string]any, len(obj))
			if prev, ok := s[k].(map[string]any); ok {
				for pk, pv := range prev {
					out[pk] = pv
				}
			}
			for ok2, ov := range obj {
				out[ok2] = ov
			}
			merged[k] = out
			continue
		}

		merged[k] = v
	}

	return merged
}

// GalleryItem is a single NFT entry in the gallery or sold collection.
// Identity for deletion is the name or the storage url.
type GalleryItem struct {
	Name         string `json:"name"`
	Price        string `json:"price"`
	URL          string `json:"url"`
	MagicEdenURL string `json:"magicEdenUrl,omitempty"`
	Date         string `json:"date"`
}

// ItemMeta is the per-file metadata attached to an upload request.
type ItemMeta struct {
	Name         string `json:"name"`
	Price        string `json:"price"`
	MagicEdenURL string `json:"magicEdenUrl,omitempty"`
}

// DefaultItemMeta is the placeholder used when per-item metadata is missing
// or malformed; a bad meta entry degrades instead of aborting the batch.
func DefaultItemMeta() ItemMeta {
	return ItemMeta{Name: "Unknown", Price: "0"}
}

// ChatMessage is one lobby chat entry. Immutable once stored.
// Timestamp is milliseconds since the Unix epoch; zero means "not stamped yet".
type ChatMessage struct {
	Username      string `json:"username"`
	WalletAddress string `json:"walletAddress,omitempty"`
	Text          string `json:"text"`
	Timestamp     int64  `json:"timestamp,omitempty"`
}

// Participant is an ephemeral lobby member, keyed by connection identity.
// Usernames are display names, not unique keys.
type Participant struct {
	Username      string `json:"username"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// Chart mirrors the contract address shown in the dashboard's chart iframe.
type Chart struct {
	Address string `json:"address"`
}
