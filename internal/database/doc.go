// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

/*
Package database provides DuckDB-backed storage for Showlog facts.

It owns the schema (media catalog, lists, seen events, progress markers,
user ratings), the write path for recording facts, and the batched read
queries the library engine aggregates over.

Read Path Design:

All reads for one engine request run inside a Snapshot, a read-only
transaction, so the total count and the page data of a listing observe the
same state. Aggregate queries are batched: each query takes a set of show,
season, or episode ids and returns a map keyed by id, one round trip per
aggregate kind regardless of result-set size.

Usage:

	db, err := database.New(&cfg.Database)
	if err != nil { ... }
	defer db.Close()

	snap, err := db.Snapshot(ctx)
	if err != nil { ... }
	defer snap.Close()

	counts, err := snap.ShowAiredCounts(ctx, showIDs, now)
*/
package database
