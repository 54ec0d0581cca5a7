package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/dugoutlabs/ballclub/internal/usecase"
)

// RunRefreshSnapshotsJob rebuilds the cached team and roster views. It is
// exposed only to internal callers holding the job token.
func (h *Handler) RunRefreshSnapshotsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshSnapshotsJob")
	defer span.End()

	if h.refreshService == nil {
		writeError(ctx, w, fmt.Errorf("%w: refresh service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeRefreshSnapshotsRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.refreshService.RefreshSnapshots(ctx, usecase.RefreshInput{
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "refresh snapshots job failed", "max_workers", req.MaxWorkers, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func decodeRefreshSnapshotsRequest(r *http.Request) (refreshSnapshotsRequest, error) {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req refreshSnapshotsRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return refreshSnapshotsRequest{}, nil
		}
		return refreshSnapshotsRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

type refreshSnapshotsRequest struct {
	MaxWorkers int `json:"maxWorkers" validate:"omitempty,min=1,max=16"`
}
