// Package siteconfig provides the optional site configuration that links
// the viewer to a parent site.
package siteconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dbehnke/relaisblick/internal/logger"
	"github.com/dbehnke/relaisblick/internal/relais"
)

// Config is the site configuration. Every field is optional.
type Config struct {
	ParentSiteURL  *string `json:"parentSiteUrl"`
	ParentSiteLogo *string `json:"parentSiteLogo"`
	ParentSiteName *string `json:"parentSiteName"`
}

// Default is the all-null configuration used when none can be loaded.
func Default() Config { return Config{} }

// HasParentSite reports whether a parent site link can be shown.
func (c Config) HasParentSite() bool {
	return c.ParentSiteURL != nil
}

func (c Config) clone() Config {
	return Config{
		ParentSiteURL:  copyString(c.ParentSiteURL),
		ParentSiteLogo: copyString(c.ParentSiteLogo),
		ParentSiteName: copyString(c.ParentSiteName),
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Provider loads the site configuration at most once and caches it,
// including the default after a failed fetch.
type Provider struct {
	url    string
	client *http.Client
	log    *logger.Logger

	group  singleflight.Group
	mu     sync.Mutex
	cached *Config
}

// NewProvider creates a provider for the configuration at url. A nil
// client uses http.DefaultClient.
func NewProvider(url string, client *http.Client, log *logger.Logger) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{
		url:    url,
		client: client,
		log:    logger.OrNop(log).Named("siteconfig"),
	}
}

// Get returns the configuration, fetching it on first use. Concurrent
// first callers share one fetch. Get never fails; problems yield Default.
// Every call returns its own copy.
func (p *Provider) Get(ctx context.Context) Config {
	p.mu.Lock()
	if p.cached != nil {
		c := p.cached.clone()
		p.mu.Unlock()
		return c
	}
	p.mu.Unlock()

	// shared by all waiting callers, so detached from this caller's cancellation
	fetchCtx := context.WithoutCancel(ctx)

	v, _, _ := p.group.Do("config", func() (interface{}, error) {
		p.mu.Lock()
		if p.cached != nil {
			c := *p.cached
			p.mu.Unlock()
			return c, nil
		}
		p.mu.Unlock()

		c, err := p.fetch(fetchCtx)
		if err != nil {
			p.log.Debugw("Site configuration unavailable, using defaults", "url", p.url, "error", err)
			c = Default()
		}

		p.mu.Lock()
		p.cached = &c
		p.mu.Unlock()
		return c, nil
	})

	return v.(Config).clone()
}

func (p *Provider) fetch(ctx context.Context) (Config, error) {
	if p.url == "" {
		return Config{}, fmt.Errorf("no configuration URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Config{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Config{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Config{}, fmt.Errorf("config not found: HTTP %d", resp.StatusCode)
	}

	var raw struct {
		ParentSiteURL  relais.Text `json:"parentSiteUrl"`
		ParentSiteLogo relais.Text `json:"parentSiteLogo"`
		ParentSiteName relais.Text `json:"parentSiteName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	return Config{
		ParentSiteURL:  optional(raw.ParentSiteURL),
		ParentSiteLogo: optional(raw.ParentSiteLogo),
		ParentSiteName: optional(raw.ParentSiteName),
	}, nil
}

func optional(t relais.Text) *string {
	if t == "" {
		return nil
	}
	s := string(t)
	return &s
}
