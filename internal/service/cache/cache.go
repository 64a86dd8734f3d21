package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key joins lower-cased parts with ':' so "Wheat"/"wheat" share an entry.
func Key(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(norm, ":")
}

// Prefixed namespaces every key of an underlying cache.
type Prefixed struct {
	next   BytesCache
	prefix string
}

func NewPrefixed(next BytesCache, prefix string) *Prefixed {
	return &Prefixed{next: next, prefix: prefix}
}

func (p *Prefixed) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	return p.next.GetBytes(ctx, p.prefix+key)
}

func (p *Prefixed) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.next.SetBytes(ctx, p.prefix+key, value, ttl)
}

// Noop never hits.
type Noop struct{}

func (Noop) GetBytes(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) SetBytes(context.Context, string, []byte, time.Duration) error { return nil }

// GetJSON decodes a cached value into dest. A decode failure counts as a miss.
func GetJSON(ctx context.Context, c BytesCache, key string, dest interface{}) (bool, error) {
	b, ok, err := c.GetBytes(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c BytesCache, key string, v interface{}, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.SetBytes(ctx, key, b, ttl)
}
