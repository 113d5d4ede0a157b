package http_media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	infra_media "github.com/humanbelnik/penaltydraw/internal/infra/media"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

const DefaultTimeout = 30 * time.Minute

type Forwarder interface {
	Forward(ctx context.Context, req model.MediaRequest) ([]byte, error)
}

type VideoRequestDTO struct {
	RoomID    string   `json:"roomId"`
	Winner    string   `json:"winner"`
	Others    []string `json:"others"`
	BaseVideo string   `json:"baseVideo"`
}

// ErrorResponseDTO mirrors the media service error contract, not the API envelope.
type ErrorResponseDTO struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Controller relays video requests to the upstream media service.
type Controller struct {
	upstream Forwarder
	timeout  time.Duration
	logger   *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.timeout = d
	}
}

func New(upstream Forwarder,
	opts ...ControllerOption) *Controller {
	c := &Controller{
		upstream: upstream,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/videos", c.generate)
}

func (c *Controller) generate(ctx *gin.Context) {
	var req VideoRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponseDTO{Error: "invalid request body"})
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), c.timeout)
	defer cancel()

	body, err := c.upstream.Forward(reqCtx, model.MediaRequest{
		RoomID:    model.RoomID(req.RoomID),
		Winner:    req.Winner,
		Others:    req.Others,
		BaseVideo: req.BaseVideo,
	})
	if err != nil {
		c.logger.Error("video proxy failed",
			slog.String("room_id", req.RoomID),
			slog.String("error", err.Error()),
		)

		var upstreamErr *infra_media.UpstreamError
		switch {
		case errors.As(err, &upstreamErr):
			ctx.JSON(http.StatusInternalServerError, ErrorResponseDTO{
				Error:  fmt.Sprintf("Video API error: %s", upstreamErr.Status),
				Detail: upstreamErr.Body,
			})
		case errors.Is(err, model.ErrMediaTimeout):
			ctx.JSON(http.StatusInternalServerError, ErrorResponseDTO{Error: "Video generation timed out."})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponseDTO{Error: err.Error()})
		}
		return
	}

	ctx.Data(http.StatusOK, "application/json", body)
}
