// Package entity defines response shapes assembled by the web layer.
package entity

import (
	"kaban/database/model"
)

// ColumnWithCards is a column with its cards nested, sorted by rank.
type ColumnWithCards struct {
	model.Column
	Cards []model.Card `json:"cards"`
}

// BoardDetail is the denormalized read-side aggregate for a single board:
// the board, its columns in rank order and each column's cards in rank
// order. It is assembled per request, never persisted.
type BoardDetail struct {
	model.Board
	Columns []ColumnWithCards `json:"columns"`
}
