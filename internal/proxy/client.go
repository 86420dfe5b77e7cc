// Package proxy wraps the stateless HTTP services behind the screenshot,
// text-to-speech, audio-conversion, and image-search commands. Every call
// runs under a bounded timeout; failures here never touch bot state.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var ErrService = errors.New("proxy: service failure")

type Config struct {
	ScreenshotURL  string
	TTSURL         string
	ImageSearchURL string
	ConvertURL     string
	Timeout        time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Image is one image-search result.
type Image struct {
	Data     []byte
	MimeType string
}

// Screenshot captures a page render of target.
func (c *Client) Screenshot(ctx context.Context, target string) ([]byte, string, error) {
	if c.cfg.ScreenshotURL == "" {
		return nil, "", fmt.Errorf("%w: screenshot service not configured", ErrService)
	}
	u := c.cfg.ScreenshotURL + "?url=" + url.QueryEscape(target)
	return c.get(ctx, u)
}

// TTS renders text as spoken audio.
func (c *Client) TTS(ctx context.Context, text string) ([]byte, string, error) {
	if c.cfg.TTSURL == "" {
		return nil, "", fmt.Errorf("%w: tts service not configured", ErrService)
	}
	u := c.cfg.TTSURL + "?text=" + url.QueryEscape(text)
	return c.get(ctx, u)
}

// ToMP3 converts audio data (voice notes, mostly ogg/opus) to MP3.
func (c *Client) ToMP3(ctx context.Context, data []byte, mimeType string) ([]byte, error) {
	if c.cfg.ConvertURL == "" {
		return nil, fmt.Errorf("%w: convert service not configured", ErrService)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ConvertURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrService, err)
	}
	req.Header.Set("Content-Type", mimeType)
	out, _, err := c.do(req)
	return out, err
}

// ImageSearch returns up to count images matching query.
func (c *Client) ImageSearch(ctx context.Context, query string, count int) ([]Image, error) {
	if c.cfg.ImageSearchURL == "" {
		return nil, fmt.Errorf("%w: image search service not configured", ErrService)
	}
	u := fmt.Sprintf("%s?q=%s&count=%d", c.cfg.ImageSearchURL, url.QueryEscape(query), count)
	body, _, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var results []struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("%w: bad search response: %v", ErrService, err)
	}
	if len(results) > count {
		results = results[:count]
	}

	var images []Image
	for _, r := range results {
		data, mime, err := c.get(ctx, r.URL)
		if err != nil {
			continue // skip dead links, keep what we got
		}
		images = append(images, Image{Data: data, MimeType: mime})
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no images found", ErrService)
	}
	return images, nil
}

// Fetch downloads an arbitrary resource the bot re-hosts (menu image).
func (c *Client) Fetch(ctx context.Context, u string) ([]byte, string, error) {
	return c.get(ctx, u)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrService, err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s returned %s", ErrService, req.URL.Host, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrService, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
