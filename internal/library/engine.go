// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

/*
Package library is the view aggregation engine at the heart of Showlog.

Given the facts at rest (catalog, list memberships, seen events, progress
markers, ratings), it computes consistent derived per-target state and
assembles ordered, filtered, optionally paginated result sets at three
granularities, plus calendar and details projections.

Design:

Each operation opens one database Snapshot and performs all reads through
it, so every number in a response describes the same state. Aggregates
are fetched in batches keyed by id sets, then joined in memory into
tagged ItemViews; filtering, ordering, and pagination run over the
assembled views. Time never comes from the clock: every operation takes
an explicit now.
*/
package library

import (
	"context"
	"time"

	"github.com/showlog/showlog/internal/database"
	"github.com/showlog/showlog/internal/logging"
	"github.com/showlog/showlog/internal/metrics"
	"github.com/showlog/showlog/internal/models"
)

// Engine computes derived library views from stored facts.
type Engine struct {
	db *database.DB
}

// New creates an engine over the given fact store.
func New(db *database.DB) *Engine {
	return &Engine{db: db}
}

// ListItems resolves, filters, and orders the requested scope without
// pagination.
func (e *Engine) ListItems(ctx context.Context, req *ListItemsRequest) (views []*models.ItemView, err error) {
	start := time.Now()
	defer func() { metrics.RecordEngineQuery("list_items", time.Since(start), err) }()

	snap, err := e.db.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	views, err = e.resolveViews(ctx, snap, req)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Int64("userId", req.UserID).
		Int("total", len(views)).
		Msg("library listing resolved")

	return views, nil
}

// ListItemsPaginated resolves, filters, and orders the requested scope,
// then cuts one page. The total count and the page data come from the
// same snapshot.
func (e *Engine) ListItemsPaginated(ctx context.Context, req *ListItemsRequest) (page *models.Page, err error) {
	start := time.Now()
	defer func() { metrics.RecordEngineQuery("list_items_paginated", time.Since(start), err) }()

	if req.Page < 1 {
		return nil, ErrInvalidPage
	}

	snap, err := e.db.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	views, err := e.resolveViews(ctx, snap, req)
	if err != nil {
		return nil, err
	}

	return paginate(views, req.Page, req.itemsPerPage())
}

// resolveViews runs the shared scope -> assemble -> filter -> sort
// pipeline inside one snapshot.
func (e *Engine) resolveViews(ctx context.Context, snap *database.Snapshot, req *ListItemsRequest) ([]*models.ItemView, error) {
	targets, err := resolveScope(ctx, snap, req)
	if err != nil {
		return nil, err
	}

	views, err := assembleViews(ctx, snap, req.UserID, req.Now, targets)
	if err != nil {
		return nil, err
	}
	metrics.EngineItemsResolved.Observe(float64(len(views)))

	views = applyFilter(views, &req.Filter, req.Now)
	sortViews(views, req.SortBy, req.SortOrder)

	return views, nil
}
