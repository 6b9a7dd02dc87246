package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"focuslog/internal/config"
	"focuslog/internal/daemon"
	"focuslog/internal/models"
	"focuslog/internal/web"
)

var errNotRunning = errors.New("no tracking session is running; start one with `focuslog track`")

// sessionClient reads the live session from a running tracker's web API
type sessionClient struct {
	baseURL string
	http    *http.Client
}

func newSessionClient(cfg *config.Config) (*sessionClient, error) {
	running, _, err := daemon.New(cfg.Daemon.PIDFile).IsRunning()
	if err != nil {
		return nil, err
	}
	if !running {
		return nil, errNotRunning
	}

	return &sessionClient{
		baseURL: "http://" + cfg.Address(),
		http:    &http.Client{Timeout: 5 * time.Second},
	}, nil
}

func (c *sessionClient) getJSON(path string, out interface{}) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return errors.Wrap(err, "failed to reach tracking session (was it started with --no-web?)")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode %s", path)
	}
	return nil
}

func (c *sessionClient) Segments() ([]models.Segment, error) {
	var segments []models.Segment
	err := c.getJSON("/api/segments", &segments)
	return segments, err
}

func (c *sessionClient) Status() (*web.Status, error) {
	var status web.Status
	if err := c.getJSON("/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}
