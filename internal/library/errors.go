// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package library

import (
	"errors"
)

var (
	// ErrInvalidPage is returned for a non-positive page number or a page
	// beyond the end of the result set.
	ErrInvalidPage = errors.New("invalid page")

	// ErrNotFound is returned when the requested list or media item does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the user may not read the requested
	// list.
	ErrForbidden = errors.New("forbidden")
)
