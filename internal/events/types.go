// Package events defines the canonical push-event schema consumed by the
// dispatcher. All transport sources MUST deliver events in these types.
package events

import (
	"encoding/json"
	"fmt"

	"arrsync/pkg/model"
)

// Key names a class of realtime event. The key space is fixed and closed:
// unknown keys received from the server are dropped by the dispatcher, not
// treated as errors.
type Key string

const (
	// Connection lifecycle keys, synthesized by the transport.
	KeyConnect      Key = "connect"
	KeyConnectError Key = "connect_error"
	KeyDisconnect   Key = "disconnect"

	// KeyMessage carries free-form notification content, not resource ids.
	KeyMessage Key = "message"

	// Resource keys. Payloads are id lists, empty for scope-level keys.
	KeySeries             Key = "series"
	KeyMovie              Key = "movie"
	KeyEpisode            Key = "episode"
	KeyEpisodeWanted      Key = "episode-wanted"
	KeyMovieWanted        Key = "movie-wanted"
	KeySettings           Key = "settings"
	KeyLanguages          Key = "languages"
	KeyBadges             Key = "badges"
	KeyMovieHistory       Key = "movie-history"
	KeyMovieBlacklist     Key = "movie-blacklist"
	KeyEpisodeHistory     Key = "episode-history"
	KeyEpisodeBlacklist   Key = "episode-blacklist"
	KeyResetEpisodeWanted Key = "reset-episode-wanted"
	KeyResetMovieWanted   Key = "reset-movie-wanted"
	KeyTask               Key = "task"
	KeyJob                Key = "job"
)

// IsValid checks if the key is one this client knows how to handle.
func (k Key) IsValid() bool {
	switch k {
	case KeyConnect, KeyConnectError, KeyDisconnect, KeyMessage,
		KeySeries, KeyMovie, KeyEpisode, KeyEpisodeWanted, KeyMovieWanted,
		KeySettings, KeyLanguages, KeyBadges, KeyMovieHistory,
		KeyMovieBlacklist, KeyEpisodeHistory, KeyEpisodeBlacklist,
		KeyResetEpisodeWanted, KeyResetMovieWanted, KeyTask, KeyJob:
		return true
	default:
		return false
	}
}

// Kind is the nature of change an event represents. Events on the wire
// carry update or delete; any is a handler variant that matches both and
// never arrives in an event.
type Kind string

const (
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
	KindAny    Kind = "any"
)

// IsValid checks if the kind is a known wire kind.
func (k Kind) IsValid() bool {
	return k == KindUpdate || k == KindDelete
}

// Event is the envelope delivered by a transport source. The payload stays
// raw until a handler decodes it with IDs, Entries or Messages.
type Event struct {
	Key     Key             `json:"key"`
	Kind    Kind            `json:"kind,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessagePayload is one entry of a "message" event.
type MessagePayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Entries decodes the payload as a generic list. An empty payload decodes
// to an empty list. Each entry is left as-is so callers can report
// malformed ids individually.
func (e Event) Entries() ([]any, error) {
	if len(e.Payload) == 0 {
		return nil, nil
	}
	var entries []any
	if err := json.Unmarshal(e.Payload, &entries); err != nil {
		return nil, fmt.Errorf("payload is not a list: %w", err)
	}
	return entries, nil
}

// IDs decodes the payload as a list of numeric identifiers, silently
// skipping malformed entries. Handlers that must warn per entry use
// Entries with model.AsID instead.
func (e Event) IDs() []int64 {
	entries, err := e.Entries()
	if err != nil {
		return nil
	}
	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		if id, ok := model.AsID(entry); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Messages decodes the payload of a "message" event.
func (e Event) Messages() ([]MessagePayload, error) {
	if len(e.Payload) == 0 {
		return nil, nil
	}
	var msgs []MessagePayload
	if err := json.Unmarshal(e.Payload, &msgs); err != nil {
		return nil, fmt.Errorf("decoding message payload: %w", err)
	}
	return msgs, nil
}
