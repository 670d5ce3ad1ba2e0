package service

import (
	"kaban/database"
	"kaban/database/model"

	"github.com/google/uuid"
)

// ColumnService owns column CRUD and sibling order assignment within a board.
type ColumnService struct{}

func (s *ColumnService) GetColumn(id string) (*model.Column, error) {
	db := database.GetDB()

	column := &model.Column{}
	err := db.Model(model.Column{}).
		Where("id = ?", id).
		First(column).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound("Column not found")
	} else if err != nil {
		return nil, err
	}
	return column, nil
}

// CreateColumn appends a column to a board: its order is one past the
// current highest sibling, or 0 on an empty board. The find-max-then-insert
// pair is not atomic; concurrent creators may produce duplicate ranks, which
// the sort's id tiebreak tolerates.
func (s *ColumnService) CreateColumn(title string, boardId string) (*model.Column, error) {
	if title == "" {
		return nil, ErrValidation("Column title required")
	}
	if boardId == "" {
		return nil, ErrValidation("Board id required")
	}

	db := database.GetDB()

	order := 0
	last := &model.Column{}
	err := db.Model(model.Column{}).
		Where("board_id = ?", boardId).
		Order("sort_order DESC").
		First(last).
		Error
	if err == nil {
		order = last.Order + 1
	} else if !database.IsNotFound(err) {
		return nil, err
	}

	column := &model.Column{
		Id:      uuid.NewString(),
		Title:   title,
		BoardId: boardId,
		Order:   order,
	}
	if err := db.Create(column).Error; err != nil {
		return nil, err
	}
	return column, nil
}

func (s *ColumnService) UpdateColumn(id string, title string) (*model.Column, error) {
	column, err := s.GetColumn(id)
	if err != nil {
		return nil, err
	}
	column.Title = title

	db := database.GetDB()
	if err := db.Save(column).Error; err != nil {
		return nil, err
	}
	return column, nil
}

// ReorderColumn overwrites the advisory rank; siblings are deliberately not
// renumbered.
func (s *ColumnService) ReorderColumn(id string, order int) (*model.Column, error) {
	column, err := s.GetColumn(id)
	if err != nil {
		return nil, err
	}
	column.Order = order

	db := database.GetDB()
	if err := db.Save(column).Error; err != nil {
		return nil, err
	}
	return column, nil
}

// DeleteColumn removes the column's cards first, then the column.
func (s *ColumnService) DeleteColumn(id string) error {
	column, err := s.GetColumn(id)
	if err != nil {
		return err
	}

	db := database.GetDB()

	err = db.Where("column_id = ?", column.Id).
		Delete(&model.Card{}).
		Error
	if err != nil {
		return err
	}

	return db.Delete(&model.Column{}, "id = ?", column.Id).Error
}
