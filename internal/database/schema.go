// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

/*
schema.go - Database Schema Management

Tables:
  - media_item: the catalog (movies, shows, books, audiobooks, video games)
  - season, episode: the tv hierarchy; episode carries the denormalized
    season_and_episode_number ordering key
  - list, list_item: user lists; members target a show, season, or episode
  - seen: consumption events (episode-level for tv, item-level otherwise)
  - progress: in-flight consumption markers
  - user_rating: ratings and reviews at exact granularity

Schema Strategy:
All columns are defined in the initial CREATE TABLE statements, giving a
single source of truth and migration-free startup.

Index Strategy:
Indexes cover the columns the batched aggregate queries filter and group
on: the tv hierarchy foreign keys, release dates, and the per-user fact
lookups (user + target id).
*/
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates sequences, tables, and indexes
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	statements := make([]string, 0, len(sequenceStatements)+len(tableStatements)+len(indexStatements))
	statements = append(statements, sequenceStatements...)
	statements = append(statements, tableStatements...)
	statements = append(statements, indexStatements...)

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %s: %w", stmt, err)
		}
	}

	return nil
}

var sequenceStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_media_item_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_season_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_episode_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_list_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_list_item_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_seen_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_progress_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_user_rating_id START 1`,
}

var tableStatements = []string{
	`CREATE TABLE IF NOT EXISTS media_item (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_media_item_id'),
		media_type TEXT NOT NULL,
		title TEXT NOT NULL,
		release_date TIMESTAMP,
		runtime INTEGER,
		overview TEXT,
		poster TEXT,
		backdrop TEXT,
		network TEXT,
		status TEXT,
		genres TEXT,
		tmdb_id INTEGER,
		imdb_id TEXT,
		tvdb_id INTEGER,
		number_of_seasons INTEGER,
		added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS season (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_season_id'),
		tv_show_id BIGINT NOT NULL,
		season_number INTEGER NOT NULL,
		title TEXT NOT NULL,
		is_special BOOLEAN NOT NULL DEFAULT FALSE,
		release_date TIMESTAMP,
		overview TEXT,
		poster TEXT,
		number_of_episodes INTEGER
	)`,

	// season_and_episode_number = season_number*1000 + episode_number,
	// stored denormalized so ordered scans need no join
	`CREATE TABLE IF NOT EXISTS episode (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_episode_id'),
		tv_show_id BIGINT NOT NULL,
		season_id BIGINT NOT NULL,
		season_number INTEGER NOT NULL,
		episode_number INTEGER NOT NULL,
		title TEXT NOT NULL,
		is_special BOOLEAN NOT NULL DEFAULT FALSE,
		release_date TIMESTAMP,
		runtime INTEGER,
		season_and_episode_number INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS list (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_list_id'),
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		is_watchlist BOOLEAN NOT NULL DEFAULT FALSE,
		privacy TEXT NOT NULL DEFAULT 'private',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// season_id and episode_id are mutually exclusive; an episode target
	// leaves season_id NULL because the episode determines its season
	`CREATE TABLE IF NOT EXISTS list_item (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_list_item_id'),
		list_id BIGINT NOT NULL,
		media_item_id BIGINT NOT NULL,
		season_id BIGINT,
		episode_id BIGINT,
		added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (season_id IS NULL OR episode_id IS NULL)
	)`,

	// episode_id is set for tv consumption, NULL for every other media type.
	// seen_at is nullable: events with an unknown date count toward seen
	// flags but never toward last-seen timestamps.
	`CREATE TABLE IF NOT EXISTS seen (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_seen_id'),
		user_id BIGINT NOT NULL,
		media_item_id BIGINT NOT NULL,
		episode_id BIGINT,
		seen_at TIMESTAMP,
		duration BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS progress (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_progress_id'),
		user_id BIGINT NOT NULL,
		media_item_id BIGINT NOT NULL,
		episode_id BIGINT,
		progress DOUBLE NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		duration BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS user_rating (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_user_rating_id'),
		user_id BIGINT NOT NULL,
		media_item_id BIGINT NOT NULL,
		season_id BIGINT,
		episode_id BIGINT,
		rating DOUBLE,
		review TEXT,
		rated_at TIMESTAMP NOT NULL,
		CHECK (season_id IS NULL OR episode_id IS NULL)
	)`,
}

var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_media_item_type ON media_item(media_type)`,
	`CREATE INDEX IF NOT EXISTS idx_media_item_release ON media_item(release_date)`,
	`CREATE INDEX IF NOT EXISTS idx_season_show ON season(tv_show_id)`,
	`CREATE INDEX IF NOT EXISTS idx_episode_show ON episode(tv_show_id)`,
	`CREATE INDEX IF NOT EXISTS idx_episode_season ON episode(season_id)`,
	`CREATE INDEX IF NOT EXISTS idx_episode_release ON episode(release_date)`,
	`CREATE INDEX IF NOT EXISTS idx_episode_ordering ON episode(tv_show_id, season_and_episode_number)`,
	`CREATE INDEX IF NOT EXISTS idx_list_user ON list(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_list_item_list ON list_item(list_id)`,
	`CREATE INDEX IF NOT EXISTS idx_list_item_media ON list_item(media_item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_seen_user_media ON seen(user_id, media_item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_seen_user_episode ON seen(user_id, episode_id)`,
	`CREATE INDEX IF NOT EXISTS idx_progress_user_media ON progress(user_id, media_item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rating_user_media ON user_rating(user_id, media_item_id)`,
}
