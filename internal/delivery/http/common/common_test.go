package http_common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/humanbelnik/penaltydraw/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{model.ErrRoomNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: duplicate name", model.ErrInvalidRoster), http.StatusBadRequest},
		{model.ErrNotHost, http.StatusForbidden},
		{errors.Join(model.ErrAlreadyStarted, model.ErrInvalidTransition), http.StatusConflict},
		{model.ErrDrawInProgress, http.StatusConflict},
		{model.ErrMediaTimeout, http.StatusGatewayTimeout},
		{fmt.Errorf("%w: 502", model.ErrMediaGenerationFailed), http.StatusBadGateway},
		{errors.Join(model.ErrPartialCreate, model.ErrStoreUnavailable), http.StatusInternalServerError},
		{model.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		status, message := StatusOf(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.NotEmpty(t, message)
	}
}
