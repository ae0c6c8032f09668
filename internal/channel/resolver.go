// Package channel resolves a requested sales channel to the spreadsheet and
// ranges that back it.
package channel

import (
	"strings"

	"orderdesk/internal/apperr"
	"orderdesk/internal/model"
)

const DefaultKey = "telegram"

// Resolution is the outcome of resolving a requested channel key.
type Resolution struct {
	RequestedKey   string
	ResolvedKey    string
	SpreadsheetID  string
	CompletedRange string
	AbandonedRange string
}

// Fallback reports whether the requested channel was replaced by the default.
func (r Resolution) Fallback() bool {
	return r.ResolvedKey != r.RequestedKey
}

type Resolver struct {
	defaultKey string
	channels   map[string]model.Channel
}

// NewResolver indexes channels by lower-cased key. The default channel is
// synthesized from legacy if the map lacks it, and any field it leaves
// empty is taken from legacy.
func NewResolver(defaultKey string, channels map[string]model.Channel, legacy model.Channel) *Resolver {
	key := normalize(defaultKey)
	if key == "" {
		key = DefaultKey
	}

	indexed := make(map[string]model.Channel, len(channels)+1)
	for k, ch := range channels {
		nk := normalize(k)
		ch.Key = nk
		indexed[nk] = ch
	}

	def := indexed[key]
	def.Key = key
	if strings.TrimSpace(def.SpreadsheetID) == "" {
		def.SpreadsheetID = legacy.SpreadsheetID
	}
	if strings.TrimSpace(def.CompletedRange) == "" {
		def.CompletedRange = legacy.CompletedRange
	}
	if strings.TrimSpace(def.AbandonedRange) == "" {
		def.AbandonedRange = legacy.AbandonedRange
	}
	indexed[key] = def

	return &Resolver{defaultKey: key, channels: indexed}
}

func (r *Resolver) DefaultKey() string {
	return r.defaultKey
}

func (r *Resolver) Resolve(requested string) (Resolution, error) {
	requestedKey := normalize(requested)
	if requestedKey == "" {
		requestedKey = r.defaultKey
	}

	def := r.channels[r.defaultKey]
	if strings.TrimSpace(def.SpreadsheetID) == "" {
		return Resolution{}, &apperr.ConfigurationError{Message: "default channel " + r.defaultKey + " has no spreadsheet id"}
	}

	resolved := def
	if ch, ok := r.channels[requestedKey]; ok && strings.TrimSpace(ch.SpreadsheetID) != "" {
		resolved = ch
	}

	return Resolution{
		RequestedKey:   requestedKey,
		ResolvedKey:    resolved.Key,
		SpreadsheetID:  strings.TrimSpace(resolved.SpreadsheetID),
		CompletedRange: firstNonEmpty(resolved.CompletedRange, def.CompletedRange),
		AbandonedRange: firstNonEmpty(resolved.AbandonedRange, def.AbandonedRange),
	}, nil
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
