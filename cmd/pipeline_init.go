package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/popvault/popdash/internal/ingest"
	"github.com/popvault/popdash/internal/pipeline"
	"github.com/popvault/popdash/internal/snapshot"
	"github.com/popvault/popdash/internal/source"
)

// resolveLocation picks the dataset location from the positional
// argument, falling back to config.
func resolveLocation(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Source.Location != "" {
		return cfg.Source.Location, nil
	}
	return "", eris.New("no source location: pass one as an argument or set source.location")
}

// resolveProfile loads the schema profile. An explicit profile file
// (flag first, then config) wins; otherwise the built-in profile picks
// up the pipeline and source settings from config.
func resolveProfile(path string) (*ingest.Profile, error) {
	if path == "" {
		path = cfg.Source.Profile
	}
	if path != "" {
		p, err := ingest.LoadProfile(path)
		if err != nil {
			return nil, err
		}
		zap.L().Debug("profile loaded", zap.String("path", path))
		return p, nil
	}

	p := ingest.DefaultProfile()
	p.DateFormat = cfg.Pipeline.DateFormat
	p.Strict = cfg.Pipeline.StrictNumericCoercion
	p.LowVolumeThreshold = cfg.Pipeline.ExcludeLowVolumeThreshold
	p.Encoding = cfg.Source.Encoding
	p.Sheet = cfg.Source.Sheet
	return p, nil
}

// newRunner builds the shared load pipeline for a location and profile.
func newRunner(location string, profile *ingest.Profile) *pipeline.Runner {
	return pipeline.New(snapshot.New(cfg.Cache.MaxEntries), pipeline.Options{
		Location: location,
		Profile:  profile,
		Source: source.Options{
			Encoding:   profile.Encoding,
			Sheet:      profile.Sheet,
			Timeout:    time.Duration(cfg.Source.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Source.MaxRetries,
			UserAgent:  cfg.Source.UserAgent,
		},
	})
}
