// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

/*
Package models defines data structures for the Showlog application.

It is the single source of truth for the stored facts and the derived views
the library engine computes from them.

Model Categories:

 1. Stored facts:
    - MediaItem, Season, Episode: the media catalog
    - List, ListItem: user lists and their members at show, season, or
      episode granularity
    - Seen, Progress, UserRating: per-user consumption facts

 2. Derived views:
    - ItemView: one row of a library listing, tagged by granularity
    - ItemDetails, SeasonDetails: the fully expanded details projection
    - Page: pagination envelope
    - CalendarEntry: one upcoming release in a calendar window

Stored facts are immutable value types with no behavior beyond small
derivation helpers (ordering keys, release checks). All aggregation logic
lives in the library package.
*/
package models
