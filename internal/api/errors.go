package api

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/codespire/rca-console/internal/engine"
	"github.com/codespire/rca-console/internal/repo"
	"github.com/codespire/rca-console/internal/services"
	"github.com/codespire/rca-console/internal/utils"
)

// httpStatusFor maps console errors onto REST status codes.
func httpStatusFor(err error) int {
	var appErr *utils.AppError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, services.ErrMissingTicketID),
		errors.Is(err, engine.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrStaleSearch):
		return http.StatusConflict
	case errors.Is(err, services.ErrViewNotFound), errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &appErr) && appErr.Status >= 400 && appErr.Status < 500:
		return appErr.Status
	case errors.Is(err, engine.ErrTransportFailure), errors.Is(err, repo.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, engine.ErrNoGuidanceFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// grpcCodeFor maps console errors onto gRPC status codes.
func grpcCodeFor(err error) codes.Code {
	switch httpStatusFor(err) {
	case http.StatusOK:
		return codes.OK
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.Aborted
	case http.StatusBadGateway:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
