package infra_media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/humanbelnik/penaltydraw/internal/model"
	"github.com/tidwall/gjson"
)

// UpstreamError is a non-2xx answer of the media service.
type UpstreamError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *UpstreamError) Error() string {
	if msg := gjson.Get(e.Body, "error").String(); msg != "" {
		return msg
	}
	return fmt.Sprintf("Video API error: %s", e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return model.ErrMediaGenerationFailed
}

type requestDTO struct {
	RoomID    string   `json:"roomId"`
	Winner    string   `json:"winner"`
	Others    []string `json:"others"`
	BaseVideo string   `json:"baseVideo"`
}

// Client calls a media service endpoint. The deadline is taken from ctx;
// the http.Client carries no timeout of its own.
type Client struct {
	httpClient *http.Client
	url        string
}

func New(
	url string,
	httpClient *http.Client,
) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		url:        url,
	}
}

// Generate asks for a video and returns its URL.
func (c *Client) Generate(ctx context.Context, req model.MediaRequest) (string, error) {
	body, err := c.Forward(ctx, req)
	if err != nil {
		return "", err
	}

	videoURL := gjson.GetBytes(body, "videoUrl").String()
	if videoURL == "" {
		return "", fmt.Errorf("%w: video URL not received", model.ErrMediaGenerationFailed)
	}
	return videoURL, nil
}

// Forward performs the call and returns the raw 2xx body.
func (c *Client) Forward(ctx context.Context, req model.MediaRequest) ([]byte, error) {
	others := req.Others
	if others == nil {
		others = []string{}
	}
	payload, err := json.Marshal(requestDTO{
		RoomID:    string(req.RoomID),
		Winner:    req.Winner,
		Others:    others,
		BaseVideo: req.BaseVideo,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrMediaGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrMediaGenerationFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportErr(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportErr(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return body, nil
}

func (c *Client) transportErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.ErrMediaTimeout
	}
	return fmt.Errorf("%w: %w", model.ErrMediaGenerationFailed, err)
}
