package main

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/epithet-ssh/tlv/pkg/config"
	"github.com/epithet-ssh/tlv/pkg/tlvserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ServeCLI struct {
	config.Codec `embed:""`

	Listen    string `help:"Address to listen on, or unix:///path for a socket" short:"l" default:"0.0.0.0:8080"`
	Profiles  string `help:"File of named codec settings selectable with ?profile= (YAML, JSON, TOML or CUE)"`
	BodyLimit int64  `help:"Maximum request body size in bytes" default:"1048576"`
}

func (c *ServeCLI) Run(logger *slog.Logger) error {
	logger.Debug("serve command called", "serve", c)

	if err := c.Codec.Validate(); err != nil {
		return err
	}

	profiles, err := c.loadProfiles()
	if err != nil {
		return err
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/", tlvserver.New(logger,
		tlvserver.WithCodec(c.Codec),
		tlvserver.WithProfiles(profiles),
		tlvserver.WithBodyLimit(c.BodyLimit),
	))

	logger.Info("starting tlv server",
		"listen", c.Listen,
		"profiles", slices.Sorted(maps.Keys(profiles)),
		"body_limit", c.BodyLimit)

	return listenAndServe(c.Listen, r)
}

func (c *ServeCLI) loadProfiles() (map[string]config.Codec, error) {
	if c.Profiles == "" {
		return nil, nil
	}

	profiles, err := config.LoadFromFile[map[string]config.Codec](c.Profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	for name, p := range *profiles {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
	}
	return *profiles, nil
}
