// Package update checks whether a newer release of the plugin was published.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultURL is the endpoint describing the latest release.
const DefaultURL = "https://api.github.com/repos/thedutchmc/harotorch/releases/latest"

// Timeout limits the duration of a single check.
const Timeout = 10 * time.Second

// Config holds the settings of the update check. They are read from the
// environment.
type Config struct {
	// URL is the endpoint describing the latest release.
	URL string `env:"HAROTORCH_RELEASES_URL" envDefault:"https://api.github.com/repos/thedutchmc/harotorch/releases/latest"`
	// Enabled may be set to false to skip the check.
	Enabled bool `env:"HAROTORCH_UPDATE_CHECK" envDefault:"true"`
}

// ConfigFromEnv reads the update check settings from the environment.
func ConfigFromEnv() (Config, error) {
	var conf Config
	if err := env.Parse(&conf); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return conf, nil
}

// Release describes a published release.
type Release struct {
	Tag string `json:"tag_name"`
	URL string `json:"html_url"`
}

// Checker compares the running version with the latest release.
type Checker struct {
	conf    Config
	current Version
	raw     string
	client  *http.Client
	log     *slog.Logger
}

// NewChecker returns a Checker for the running version passed.
func NewChecker(conf Config, running string, client *http.Client, log *slog.Logger) (*Checker, error) {
	current, err := ParseVersion(running)
	if err != nil {
		return nil, fmt.Errorf("running version: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Checker{conf: conf, current: current, raw: running, client: client, log: log.With("component", "update")}, nil
}

// Check fetches the latest release and logs an advisory if it is newer than
// the running version. Failures are logged as warnings. Check reports the
// latest release if it is newer.
func (c *Checker) Check(ctx context.Context) (Release, bool) {
	if !c.conf.Enabled {
		return Release{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	rel, err := c.latest(ctx)
	if err != nil {
		c.log.Warn("Could not check for the latest version of HaroTorch.", "error", err)
		return Release{}, false
	}
	latest, err := ParseVersion(rel.Tag)
	if err != nil {
		c.log.Warn("Could not check for the latest version of HaroTorch.", "error", err)
		return Release{}, false
	}
	if latest.Compare(c.current) > 0 {
		c.log.Warn("An update of HaroTorch is available.", "running", c.raw, "latest", rel.Tag, "download", rel.URL)
		return rel, true
	}
	c.log.Info("You are running the latest version of HaroTorch.", "version", c.raw)
	return Release{}, false
}

// StatusError is returned when the release endpoint answers with a status
// other than 200 OK.
type StatusError struct {
	Code   int
	Status string
}

// Error ...
func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

func (c *Checker) latest(ctx context.Context) (Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.conf.URL, nil)
	if err != nil {
		return Release{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "HaroTorch Plugin v"+c.raw)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("request latest release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Release{}, StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	var rel Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&rel); err != nil {
		return Release{}, fmt.Errorf("decode release: %w", err)
	}
	return rel, nil
}
