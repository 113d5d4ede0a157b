package http_host_middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/penaltydraw/internal/delivery/http/common"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

const Header = "X-Participant-Name"

type Authorizer interface {
	Authorize(ctx context.Context, roomID model.RoomID, name string) error
}

type Middleware struct {
	authorizer Authorizer
	logger     *slog.Logger
}

func New(
	authorizer Authorizer,
) *Middleware {
	return &Middleware{
		authorizer: authorizer,
		logger:     slog.Default(),
	}
}

// HostRequired admits only the stored host of the :room_id room.
func (m *Middleware) HostRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		roomID := model.RoomID(ctx.Param("room_id"))
		name := ctx.GetHeader(Header)

		if err := m.authorizer.Authorize(ctx, roomID, name); err != nil {
			m.logger.Warn("host check failed",
				slog.String("room_id", string(roomID)),
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
			http_common.AbortWithError(ctx, err)
			return
		}
		ctx.Next()
	}
}
