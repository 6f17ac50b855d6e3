// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package library

import (
	"github.com/showlog/showlog/internal/models"
)

// paginate cuts one 1-indexed page out of an ordered result set. A page
// whose starting offset lies beyond the total is invalid; page 1 of an
// empty set is the one exception and yields an empty page.
func paginate(views []*models.ItemView, page, perPage int) (*models.Page, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}

	total := len(views)
	from := perPage * (page - 1)
	if from > total {
		return nil, ErrInvalidPage
	}

	to := perPage * page
	if to > total {
		to = total
	}

	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}

	return &models.Page{
		From:       from,
		To:         to,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Data:       views[from:to],
	}, nil
}
