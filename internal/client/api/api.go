package client_api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/humanbelnik/penaltydraw/internal/model"
)

const (
	participantHeader = "X-Participant-Name"
	requestTimeout    = 30 * time.Second
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type CreateResult struct {
	RoomID       model.RoomID
	Participants []string
	Link         string
}

type createResponse struct {
	RoomID       string   `json:"roomId"`
	Participants []string `json:"participants"`
	Link         string   `json:"link"`
}

type statusResponse struct {
	RoomID       string   `json:"roomId"`
	IsStarted    bool     `json:"isStarted"`
	Loser        string   `json:"loser"`
	MemeURLs     []string `json:"memeUrls"`
	VideoURL     *string  `json:"videoUrl"`
	Participants []string `json:"participants"`
}

type drawResponse struct {
	Loser     string   `json:"loser"`
	MemeURLs  []string `json:"memeUrls"`
	VideoURL  *string  `json:"videoUrl"`
	ShareText string   `json:"shareText"`
}

// Client talks to the room API on behalf of one participant. The name is
// sent with host-only actions.
type Client struct {
	baseURL    string
	name       string
	httpClient *http.Client
}

func New(baseURL string, name string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		name:       name,
		httpClient: &http.Client{},
	}
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) CreateRoom(ctx context.Context, names []string) (CreateResult, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/rooms", map[string][]string{"participants": names}, &resp, true); err != nil {
		return CreateResult{}, err
	}
	return CreateResult{
		RoomID:       model.RoomID(resp.RoomID),
		Participants: resp.Participants,
		Link:         resp.Link,
	}, nil
}

func (c *Client) Status(ctx context.Context, roomID model.RoomID) (model.RoomStatus, error) {
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(string(roomID))+"/status", nil, &resp, true); err != nil {
		return model.RoomStatus{}, err
	}
	return model.RoomStatus{
		RoomID:       model.RoomID(resp.RoomID),
		IsStarted:    resp.IsStarted,
		Loser:        resp.Loser,
		MemeURLs:     resp.MemeURLs,
		VideoURL:     deref(resp.VideoURL),
		Participants: resp.Participants,
	}, nil
}

func (c *Client) CheckIsHost(ctx context.Context, roomID model.RoomID, name string) (bool, error) {
	var resp struct {
		IsHost bool `json:"isHost"`
	}
	path := "/rooms/" + url.PathEscape(string(roomID)) + "/host?name=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, true); err != nil {
		return false, err
	}
	return resp.IsHost, nil
}

// StartDraw is bounded only by ctx since a video draw can take minutes.
func (c *Client) StartDraw(ctx context.Context, roomID model.RoomID, kind model.DrawKind) (model.DrawResult, error) {
	var resp drawResponse
	path := "/rooms/" + url.PathEscape(string(roomID)) + "/draw"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"kind": string(kind)}, &resp, false); err != nil {
		return model.DrawResult{}, err
	}
	return model.DrawResult{
		Loser:    resp.Loser,
		MemeURLs: resp.MemeURLs,
		VideoURL: deref(resp.VideoURL),
	}, nil
}

func (c *Client) Reset(ctx context.Context, roomID model.RoomID) error {
	return c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(string(roomID))+"/reset", nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any, bounded bool) error {
	if bounded {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestTimeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.name != "" {
		req.Header.Set(participantHeader, c.name)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: %s: %w", method, path, resp.Status, err)
	}
	if !env.Success {
		return apiError(resp.StatusCode, env.Error)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func apiError(status int, message string) error {
	var sentinel error
	switch status {
	case http.StatusNotFound:
		sentinel = model.ErrRoomNotFound
	case http.StatusForbidden:
		sentinel = model.ErrNotHost
	case http.StatusBadRequest:
		sentinel = model.ErrInvalidRoster
		if strings.Contains(message, "draw kind") || strings.HasPrefix(message, "kind ") {
			sentinel = model.ErrInvalidDrawKind
		}
	case http.StatusConflict:
		sentinel = model.ErrAlreadyStarted
		if strings.Contains(message, "in progress") {
			sentinel = model.ErrDrawInProgress
		}
	case http.StatusUnprocessableEntity:
		sentinel = model.ErrNoParticipants
	case http.StatusGatewayTimeout:
		sentinel = model.ErrMediaTimeout
	case http.StatusBadGateway:
		sentinel = model.ErrMediaGenerationFailed
	case http.StatusServiceUnavailable:
		sentinel = model.ErrStoreUnavailable
	default:
		return errors.New(message)
	}
	if message == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, message)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
