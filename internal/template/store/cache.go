package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	platformredis "certserve/internal/platform/redis"
	"certserve/internal/template/models"
)

const (
	defaultTemplateKey = "certserve:template:default"
	defaultTemplateTTL = 5 * time.Minute
)

// DefaultCache is a read-through Redis cache in front of the default-template
// lookup, the hottest read on the event path. Cache errors degrade to the
// backing store; they never fail a lookup.
type DefaultCache struct {
	redis  *platformredis.Client
	logger *slog.Logger
}

func NewDefaultCache(redis *platformredis.Client, logger *slog.Logger) *DefaultCache {
	return &DefaultCache{redis: redis, logger: logger}
}

// Get returns the cached default template, or nil on miss.
func (c *DefaultCache) Get(ctx context.Context) *models.Template {
	if c == nil || c.redis == nil {
		return nil
	}
	raw, err := c.redis.Get(ctx, defaultTemplateKey).Bytes()
	if err != nil {
		return nil
	}
	var tpl models.Template
	if err := json.Unmarshal(raw, &tpl); err != nil {
		c.logger.Warn("corrupt cached default template, ignoring", "error", err.Error())
		return nil
	}
	return &tpl
}

// Set stores the default template for subsequent lookups.
func (c *DefaultCache) Set(ctx context.Context, tpl *models.Template) {
	if c == nil || c.redis == nil {
		return
	}
	raw, err := json.Marshal(tpl)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, defaultTemplateKey, raw, defaultTemplateTTL).Err(); err != nil {
		c.logger.Warn("failed to cache default template", "error", err.Error())
	}
}

// Invalidate drops the cached entry after any template mutation.
func (c *DefaultCache) Invalidate(ctx context.Context) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, defaultTemplateKey).Err(); err != nil {
		c.logger.Warn("failed to invalidate template cache", "error", err.Error())
	}
}
