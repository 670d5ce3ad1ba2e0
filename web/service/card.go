package service

import (
	"sync"

	"kaban/database"
	"kaban/database/model"

	"github.com/google/uuid"
)

const defaultCardColor = "#6366f1"

// CardService owns card CRUD, moves between columns and the batch reorder.
type CardService struct{}

// CardUpdate carries a partial card mutation; nil fields are left untouched.
type CardUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// CardReorder is one entry of a batch reorder.
type CardReorder struct {
	Id       string `json:"id"`
	ColumnId string `json:"columnId"`
	Order    int    `json:"order"`
}

func (s *CardService) GetCard(id string) (*model.Card, error) {
	db := database.GetDB()

	card := &model.Card{}
	err := db.Model(model.Card{}).
		Where("id = ?", id).
		First(card).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound("Card not found")
	} else if err != nil {
		return nil, err
	}
	return card, nil
}

// CreateCard appends a card to a column at rank max+1 (0 when the column is
// empty). Same non-atomic find-max-then-insert as columns.
func (s *CardService) CreateCard(title, description, columnId, color string) (*model.Card, error) {
	if title == "" {
		return nil, ErrValidation("Card title required")
	}
	if columnId == "" {
		return nil, ErrValidation("Column id required")
	}
	if color == "" {
		color = defaultCardColor
	}

	db := database.GetDB()

	order := 0
	last := &model.Card{}
	err := db.Model(model.Card{}).
		Where("column_id = ?", columnId).
		Order("sort_order DESC").
		First(last).
		Error
	if err == nil {
		order = last.Order + 1
	} else if !database.IsNotFound(err) {
		return nil, err
	}

	card := &model.Card{
		Id:          uuid.NewString(),
		Title:       title,
		Description: description,
		ColumnId:    columnId,
		Order:       order,
		Color:       color,
	}
	if err := db.Create(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

func (s *CardService) UpdateCard(id string, upd CardUpdate) (*model.Card, error) {
	card, err := s.GetCard(id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		card.Title = *upd.Title
	}
	if upd.Description != nil {
		card.Description = *upd.Description
	}
	if upd.Color != nil {
		card.Color = *upd.Color
	}

	db := database.GetDB()
	if err := db.Save(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

func (s *CardService) DeleteCard(id string) error {
	card, err := s.GetCard(id)
	if err != nil {
		return err
	}

	db := database.GetDB()
	return db.Delete(&model.Card{}, "id = ?", card.Id).Error
}

// MoveCard reassigns the owning column (when given) and overwrites the rank.
// Siblings in neither column are renumbered.
func (s *CardService) MoveCard(id string, columnId string, order int) (*model.Card, error) {
	card, err := s.GetCard(id)
	if err != nil {
		return nil, err
	}
	if columnId != "" {
		card.ColumnId = columnId
	}
	card.Order = order

	db := database.GetDB()
	if err := db.Save(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

// BatchReorder applies every entry independently and concurrently. There is
// no atomicity across entries: one failed update does not roll back the
// others, the first error is reported. Scope checks happen before this is
// called, so no write is issued for a rejected batch.
func (s *CardService) BatchReorder(entries []CardReorder) error {
	db := database.GetDB()

	var wg sync.WaitGroup
	errs := make([]error, len(entries))
	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry CardReorder) {
			defer wg.Done()
			errs[i] = db.Model(model.Card{}).
				Where("id = ?", entry.Id).
				Updates(map[string]any{
					"column_id":  entry.ColumnId,
					"sort_order": entry.Order,
				}).
				Error
		}(i, entry)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
