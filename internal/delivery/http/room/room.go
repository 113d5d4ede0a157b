package http_room

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/penaltydraw/internal/delivery/http/common"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

//go:generate mockery --name=RoomService --output=./mocks/room/rooms --filename=rooms.go
type RoomService interface {
	Create(ctx context.Context, names []string) (model.RoomID, []string, error)
	Status(ctx context.Context, roomID model.RoomID) (model.RoomStatus, error)
	IsHost(ctx context.Context, roomID model.RoomID, name string) (bool, error)
	Reset(ctx context.Context, roomID model.RoomID) error
}

//go:generate mockery --name=DrawService --output=./mocks/room/draws --filename=draws.go
type DrawService interface {
	Start(ctx context.Context, roomID model.RoomID, kind model.DrawKind) (model.DrawResult, error)
}

type CreateRequestDTO struct {
	Participants []string `json:"participants" binding:"required"`
}

type CreateResponseDTO struct {
	RoomID       string   `json:"roomId"`
	Participants []string `json:"participants"`
	Link         string   `json:"link"`
}

type StatusResponseDTO struct {
	RoomID       string   `json:"roomId"`
	IsStarted    bool     `json:"isStarted"`
	Loser        string   `json:"loser,omitempty"`
	MemeURLs     []string `json:"memeUrls"`
	VideoURL     *string  `json:"videoUrl"`
	Participants []string `json:"participants"`
}

type HostResponseDTO struct {
	IsHost bool `json:"isHost"`
}

type DrawRequestDTO struct {
	Kind string `json:"kind" binding:"required"`
}

type DrawResponseDTO struct {
	Loser     string   `json:"loser"`
	MemeURLs  []string `json:"memeUrls"`
	VideoURL  *string  `json:"videoUrl"`
	ShareText string   `json:"shareText"`
}

type Controller struct {
	rooms RoomService
	draws DrawService
	host  gin.HandlerFunc

	publicBaseURL string
	logger        *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithPublicBaseURL(url string) ControllerOption {
	return func(c *Controller) {
		c.publicBaseURL = url
	}
}

// New wires the room endpoints. host guards draw and reset.
func New(rooms RoomService,
	draws DrawService,
	host gin.HandlerFunc,
	opts ...ControllerOption) *Controller {
	c := &Controller{
		rooms:  rooms,
		draws:  draws,
		host:   host,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", c.create)
		rooms.GET("/:room_id/status", c.status)
		rooms.GET("/:room_id/host", c.isHost)
		rooms.POST("/:room_id/draw", c.host, c.draw)
		rooms.POST("/:room_id/reset", c.host, c.reset)
	}
}

func (c *Controller) create(ctx *gin.Context) {
	var req CreateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		http_common.Fail(ctx, http.StatusBadRequest, "participants are required")
		return
	}

	roomID, roster, err := c.rooms.Create(ctx.Request.Context(), req.Participants)
	if err != nil {
		c.logger.Error("failed to create room", slog.String("error", err.Error()))
		http_common.AbortWithError(ctx, err)
		return
	}

	http_common.OK(ctx, http.StatusCreated, CreateResponseDTO{
		RoomID:       string(roomID),
		Participants: roster,
		Link:         model.RoomLink(c.publicBaseURL, roomID),
	})
}

func (c *Controller) status(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	status, err := c.rooms.Status(ctx.Request.Context(), roomID)
	if err != nil {
		c.logger.Error("failed to get status",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
		http_common.AbortWithError(ctx, err)
		return
	}

	http_common.OK(ctx, http.StatusOK, StatusResponseDTO{
		RoomID:       string(status.RoomID),
		IsStarted:    status.IsStarted,
		Loser:        status.Loser,
		MemeURLs:     status.MemeURLs,
		VideoURL:     nullable(status.VideoURL),
		Participants: status.Participants,
	})
}

func (c *Controller) isHost(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	isHost, err := c.rooms.IsHost(ctx.Request.Context(), roomID, ctx.Query("name"))
	if err != nil {
		c.logger.Error("failed to check host",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
		http_common.AbortWithError(ctx, err)
		return
	}

	http_common.OK(ctx, http.StatusOK, HostResponseDTO{IsHost: isHost})
}

func (c *Controller) draw(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	var req DrawRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		http_common.Fail(ctx, http.StatusBadRequest, "kind is required")
		return
	}

	result, err := c.draws.Start(ctx.Request.Context(), roomID, model.DrawKind(req.Kind))
	if err != nil {
		c.logger.Error("failed to start draw",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
		http_common.AbortWithError(ctx, err)
		return
	}

	http_common.OK(ctx, http.StatusOK, DrawResponseDTO{
		Loser:     result.Loser,
		MemeURLs:  result.MemeURLs,
		VideoURL:  nullable(result.VideoURL),
		ShareText: model.ShareText(result.Loser, model.RoomLink(c.publicBaseURL, roomID)),
	})
}

func (c *Controller) reset(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	if err := c.rooms.Reset(ctx.Request.Context(), roomID); err != nil {
		c.logger.Error("failed to reset room",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
		http_common.AbortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, http_common.Response{Success: true})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
