package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/popvault/popdash/internal/model"
	"github.com/popvault/popdash/internal/query"
	"github.com/popvault/popdash/internal/snapshot"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// datasetResponse summarizes the loaded dataset.
type datasetResponse struct {
	Source      string                `json:"source"`
	LoadedAt    time.Time             `json:"loaded_at"`
	Diagnostics model.Diagnostics     `json:"diagnostics"`
	Bounds      query.DatasetBounds   `json:"bounds"`
	Categories  []query.CategoryCount `json:"categories"`
}

func summarize(ds *snapshot.Dataset) datasetResponse {
	return datasetResponse{
		Source:      ds.Source,
		LoadedAt:    ds.LoadedAt,
		Diagnostics: ds.Diagnostics,
		Bounds:      ds.Bounds,
		Categories:  query.CategoryCounts(ds.Records),
	}
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, summarize(s.dataset()))
}

// rankedEntry is one row of a top-N view.
type rankedEntry struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

func rankedView(records []model.Record, metric model.Metric, n int) []rankedEntry {
	top := query.TopBy(records, metric, n)
	out := make([]rankedEntry, 0, len(top))
	for _, rec := range top {
		out = append(out, rankedEntry{
			Name:     rec.Name,
			Category: rec.Category,
			Value:    *rec.Value(metric),
		})
	}
	return out
}

// queryResponse carries one query's views.
type queryResponse struct {
	QueryID    string                         `json:"query_id"`
	Matched    int                            `json:"matched"`
	Params     model.Params                   `json:"params"`
	Categories []query.CategoryCount          `json:"categories"`
	Top        map[model.Metric][]rankedEntry `json:"top"`
	Records    []model.Record                 `json:"records,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	ds := s.dataset()

	if ds.Diagnostics.AllPricesMissing() {
		respondError(w, r, http.StatusUnprocessableEntity, "dataset has no usable price values")
		return
	}
	if ds.Diagnostics.AllVolumesMissing() {
		respondError(w, r, http.StatusUnprocessableEntity, "dataset has no usable volume values")
		return
	}

	req, err := parseQueryRequest(r, ds.Bounds, s.query)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	matched := query.Filter(ds.Records, req.Params)

	queryID := uuid.NewString()
	zap.L().Debug("server: query",
		zap.String("query_id", queryID),
		zap.Int("matched", len(matched)),
	)

	resp := queryResponse{
		QueryID:    queryID,
		Matched:    len(matched),
		Params:     req.Params,
		Categories: query.CategoryCounts(matched),
		Top:        make(map[model.Metric][]rankedEntry, len(req.Metrics)),
	}
	for _, m := range req.Metrics {
		resp.Top[m] = rankedView(matched, m, req.Top)
	}
	if req.IncludeRecords {
		resp.Records = matched
	}

	render.JSON(w, r, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.runner.Reload(r.Context())
	if err != nil {
		zap.L().Warn("server: reload failed", zap.Error(err))

		var parseErr *model.ParseError
		var schemaErr *model.SchemaError
		status := http.StatusBadGateway
		if errors.As(err, &parseErr) || errors.As(err, &schemaErr) {
			status = http.StatusUnprocessableEntity
		}
		respondError(w, r, status, eris.ToString(err, false))
		return
	}

	s.swap(ds)
	zap.L().Info("server: dataset reloaded",
		zap.String("source", ds.Source),
		zap.Int("records", ds.Diagnostics.RecordCount),
	)

	render.JSON(w, r, summarize(ds))
}
