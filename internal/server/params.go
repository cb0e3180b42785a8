package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/popvault/popdash/internal/config"
	"github.com/popvault/popdash/internal/model"
	"github.com/popvault/popdash/internal/query"
)

// queryRequest is the parsed form of /api/query parameters.
type queryRequest struct {
	Params         model.Params
	Metrics        []model.Metric
	Top            int
	IncludeRecords bool
}

// parseQueryRequest reads filter parameters from the URL, defaulting
// every range to the dataset bounds. When year bounds are underivable
// explicit year filters are rejected and unknown years are included.
func parseQueryRequest(r *http.Request, bounds query.DatasetBounds, defaults config.QueryConfig) (queryRequest, error) {
	q := r.URL.Query()

	params := query.ParamsFromBounds(bounds)
	if bounds.Year == nil && (q.Has("min_year") || q.Has("max_year")) {
		return queryRequest{}, eris.New("no release years are derivable for this dataset; year filters are not supported")
	}
	includeDefault := params.IncludeUnknownYears || defaults.IncludeUnknownYears

	var err error
	if params.Year.Min, err = floatParam(q, "min_year", params.Year.Min); err != nil {
		return queryRequest{}, err
	}
	if params.Year.Max, err = floatParam(q, "max_year", params.Year.Max); err != nil {
		return queryRequest{}, err
	}
	if params.Price.Min, err = floatParam(q, "min_price", params.Price.Min); err != nil {
		return queryRequest{}, err
	}
	if params.Price.Max, err = floatParam(q, "max_price", params.Price.Max); err != nil {
		return queryRequest{}, err
	}
	if params.Volume.Min, err = floatParam(q, "min_volume", params.Volume.Min); err != nil {
		return queryRequest{}, err
	}
	if params.Volume.Max, err = floatParam(q, "max_volume", params.Volume.Max); err != nil {
		return queryRequest{}, err
	}
	if params.IncludeUnknownYears, err = boolParam(q, "include_unknown_years", includeDefault); err != nil {
		return queryRequest{}, err
	}

	req := queryRequest{Params: params}
	if req.Top, err = intParam(q, "top", defaults.Top); err != nil {
		return queryRequest{}, err
	}
	if req.Top < 1 {
		return queryRequest{}, eris.New("top must be >= 1")
	}
	if req.IncludeRecords, err = boolParam(q, "include_records", false); err != nil {
		return queryRequest{}, err
	}

	if raw := q["metric"]; len(raw) > 0 {
		for _, v := range raw {
			m, err := model.ParseMetric(v)
			if err != nil {
				return queryRequest{}, err
			}
			req.Metrics = append(req.Metrics, m)
		}
	} else {
		req.Metrics = model.Metrics()
	}

	return req, nil
}

func floatParam(q url.Values, key string, def float64) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, eris.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

func boolParam(q url.Values, key string, def bool) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, eris.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}
