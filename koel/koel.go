// Package koel talks to the object storage endpoints of a Koel server.
package koel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type StatusError int

func (se StatusError) Error() string {
	return strconv.Itoa(int(se))
}

type Client struct {
	BaseURL    string
	AppKey     string
	HTTPClient *http.Client
}

type songRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Tags   any    `json:"tags,omitempty"`
	AppKey string `json:"appKey"`
}

// PutSong creates or updates the song stored at bucket/key.
func (c *Client) PutSong(ctx context.Context, bucket, key string, tags any) error {
	return c.do(ctx, http.MethodPost, songRequest{Bucket: bucket, Key: key, Tags: tags, AppKey: c.AppKey})
}

// DeleteSong removes the song stored at bucket/key.
func (c *Client) DeleteSong(ctx context.Context, bucket, key string) error {
	return c.do(ctx, http.MethodDelete, songRequest{Bucket: bucket, Key: key, AppKey: c.AppKey})
}

func (c *Client) do(ctx context.Context, method string, body songRequest) error {
	u, err := url.Parse(strings.TrimRight(c.BaseURL, "/"))
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	u = u.JoinPath("api", "os", "s3", "song")

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("make request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return StatusError(resp.StatusCode)
	}
	return nil
}
