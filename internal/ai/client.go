package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Collaborator is the single seam between the engines and the external
// text-understanding service. Tests substitute a scripted implementation.
type Collaborator interface {
	AnalyzeJSON(ctx context.Context, profile Profile, input string) (json.RawMessage, error)
}

type ClientConfig struct {
	Model         string
	Timeout       int
	MaxInputChars int
}

// Client drives a registered provider with profile prompts, bounds each call
// with a timeout, and caches responses for identical inputs.
type Client struct {
	provider IProvider
	cfg      ClientConfig
	cache    *expirable.LRU[string, string]
}

func NewClient(provider IProvider, cfg ClientConfig) *Client {
	cache := expirable.NewLRU[string, string](2000, nil, 2*time.Hour)
	return &Client{provider: provider, cfg: cfg, cache: cache}
}

func (c *Client) AnalyzeJSON(ctx context.Context, profile Profile, input string) (json.RawMessage, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, fmt.Errorf("empty input for profile %s", profile)
	}
	if max := c.cfg.MaxInputChars; max > 0 && len(text) > max {
		logutil.GetLogger(ctx).Warn("truncating oversized input",
			zap.String("profile", string(profile)),
			zap.Int("size", len(text)),
			zap.Int("max", max),
		)
		text = text[:max]
	}
	key := c.cacheKey(profile, text)
	if cached, ok := c.cache.Get(key); ok {
		return json.RawMessage(cached), nil
	}

	prompt, err := BuildPrompt(profile, text)
	if err != nil {
		return nil, err
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := c.provider.Generate(ctx, c.cfg.Model, prompt)
	if err != nil {
		return nil, err
	}
	raw, err := DecodeJSON(resp)
	if err != nil {
		logutil.GetLogger(ctx).Error("collaborator returned malformed json",
			zap.String("profile", string(profile)),
			zap.String("provider", c.provider.Name()),
			zap.Int("response_size", len(resp)),
		)
		return nil, fmt.Errorf("profile %s: %w", profile, err)
	}
	c.cache.Add(key, string(raw))
	return raw, nil
}

func (c *Client) cacheKey(profile Profile, text string) string {
	hash := sha256.Sum256([]byte(text))
	return string(profile) + ":" + hex.EncodeToString(hash[:])
}
