package http_common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

// Response is the envelope of every API answer.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, Response{Success: true, Data: data})
}

func Fail(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, Response{Success: false, Error: message})
}

// AbortWithError renders err with the status mapped from its sentinel.
func AbortWithError(ctx *gin.Context, err error) {
	status, message := StatusOf(err)
	Fail(ctx, status, message)
	ctx.Abort()
}

func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return http.StatusNotFound, "room not found"
	case errors.Is(err, model.ErrInvalidRoster),
		errors.Is(err, model.ErrInvalidDrawKind):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrNotHost):
		return http.StatusForbidden, "only the host may do this"
	case errors.Is(err, model.ErrAlreadyStarted):
		return http.StatusConflict, "draw already started"
	case errors.Is(err, model.ErrDrawInProgress):
		return http.StatusConflict, "draw already in progress"
	case errors.Is(err, model.ErrNoParticipants):
		return http.StatusUnprocessableEntity, "no participants found"
	case errors.Is(err, model.ErrMediaTimeout):
		return http.StatusGatewayTimeout, "video generation timed out, please try again"
	case errors.Is(err, model.ErrMediaGenerationFailed):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, model.ErrRoomsUnavailable):
		return http.StatusServiceUnavailable, "no room codes available"
	case errors.Is(err, model.ErrPartialCreate):
		return http.StatusInternalServerError, "failed to register participants"
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
