// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/showlog/showlog/internal/config"
	"github.com/showlog/showlog/internal/database"
	"github.com/showlog/showlog/internal/library"
)

// Router wires handlers and middleware into the HTTP mux.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter creates the router for the given engine and configuration.
func NewRouter(engine *library.Engine, db *database.DB, cfg *config.Config) *Router {
	return &Router{
		handler: NewHandler(engine, db, &cfg.API),
		cfg:     cfg,
	}
}

// Setup builds the full route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order
	r.Use(RequestID())
	r.Use(RequestLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(router.cfg.Server.CORSOrigins))

	// Operational endpoints stay outside identity and rate limiting
	r.Get("/healthz", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(router.cfg.Server.RateLimitReqs, router.cfg.Server.RateLimitWindow))
		r.Use(PrometheusMetrics())
		r.Use(Identity())

		r.Get("/items", router.handler.Items)
		r.Get("/items/paginated", router.handler.ItemsPaginated)
		r.Get("/list/items", router.handler.ListItems)
		r.Get("/calendar", router.handler.Calendar)
		r.Get("/details/{mediaItemID}", router.handler.ItemDetails)
	})

	return r
}
