package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"

	"github.com/codespire/rca-console/internal/engine"
	"github.com/codespire/rca-console/internal/repo"
	"github.com/codespire/rca-console/internal/services"
	"github.com/codespire/rca-console/internal/utils"
)

func TestHTTPStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("%w: bad", services.ErrInvalidRequest), http.StatusBadRequest},
		{engine.ErrEmptyQuestion, http.StatusBadRequest},
		{services.ErrStaleSearch, http.StatusConflict},
		{utils.NewStatusError("get", "404 Not Found", 404, repo.ErrNotFound), http.StatusNotFound},
		{utils.NewStatusError("create", "title missing", 422, repo.ErrUpstream), http.StatusUnprocessableEntity},
		{utils.NewStatusError("list", "boom", 500, repo.ErrUpstream), http.StatusBadGateway},
		{errors.Join(engine.ErrNoGuidanceFound, fmt.Errorf("%w: x", engine.ErrTransportFailure)), http.StatusBadGateway},
		{engine.ErrNoGuidanceFound, http.StatusNotFound},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, httpStatusFor(tc.err), "%v", tc.err)
	}
	assert.Equal(t, codes.Unavailable, grpcCodeFor(engine.ErrTransportFailure))
	assert.Equal(t, codes.Aborted, grpcCodeFor(services.ErrStaleSearch))
}
