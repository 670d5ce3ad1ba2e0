package service

import (
	"kaban/database"
	"kaban/database/model"
	"kaban/web/entity"

	"github.com/google/uuid"
)

// defaultColumns are instantiated on boards created without an explicit
// column list.
var defaultColumns = []string{"New", "In Progress", "Done"}

// BoardService owns board CRUD, the denormalized board aggregate and the
// children-first cascade delete.
type BoardService struct{}

// GetBoards returns every board, newest first.
func (s *BoardService) GetBoards() ([]model.Board, error) {
	db := database.GetDB()

	var boards []model.Board
	err := db.Model(model.Board{}).
		Order("created_at DESC").
		Find(&boards).
		Error
	return boards, err
}

// GetBoardsFor returns the boards visible to user: all of them for admins
// (or when user is nil, the anonymous auth-disabled caller), otherwise only
// the allow-listed ones.
func (s *BoardService) GetBoardsFor(user *model.User) ([]model.Board, error) {
	if user == nil || user.HasFullAccess() {
		return s.GetBoards()
	}
	if len(user.AllowedBoards) == 0 {
		return []model.Board{}, nil
	}

	db := database.GetDB()

	var boards []model.Board
	err := db.Model(model.Board{}).
		Where("id IN ?", user.AllowedBoards).
		Order("created_at DESC").
		Find(&boards).
		Error
	return boards, err
}

func (s *BoardService) GetBoard(id string) (*model.Board, error) {
	db := database.GetDB()

	board := &model.Board{}
	err := db.Model(model.Board{}).
		Where("id = ?", id).
		First(board).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound("Board not found")
	} else if err != nil {
		return nil, err
	}
	return board, nil
}

// GetBoardDetail assembles the read-side aggregate: the board, its columns
// sorted by order and, nested in each column, its cards sorted by order.
// Ties break by id so duplicate order values stay stable.
func (s *BoardService) GetBoardDetail(id string) (*entity.BoardDetail, error) {
	board, err := s.GetBoard(id)
	if err != nil {
		return nil, err
	}

	db := database.GetDB()

	var columns []model.Column
	err = db.Model(model.Column{}).
		Where("board_id = ?", board.Id).
		Order("sort_order ASC, id ASC").
		Find(&columns).
		Error
	if err != nil {
		return nil, err
	}

	columnIds := make([]string, len(columns))
	for i := range columns {
		columnIds[i] = columns[i].Id
	}

	var cards []model.Card
	if len(columnIds) > 0 {
		err = db.Model(model.Card{}).
			Where("column_id IN ?", columnIds).
			Order("sort_order ASC, id ASC").
			Find(&cards).
			Error
		if err != nil {
			return nil, err
		}
	}

	byColumn := make(map[string][]model.Card, len(columns))
	for i := range cards {
		byColumn[cards[i].ColumnId] = append(byColumn[cards[i].ColumnId], cards[i])
	}

	detail := &entity.BoardDetail{Board: *board}
	for i := range columns {
		columnCards := byColumn[columns[i].Id]
		if columnCards == nil {
			columnCards = []model.Card{}
		}
		detail.Columns = append(detail.Columns, entity.ColumnWithCards{
			Column: columns[i],
			Cards:  columnCards,
		})
	}
	if detail.Columns == nil {
		detail.Columns = []entity.ColumnWithCards{}
	}
	return detail, nil
}

// CreateBoard persists the board and its initial columns with order 0..n-1.
// An empty title list falls back to the default columns.
func (s *BoardService) CreateBoard(name string, columnTitles []string) (*model.Board, error) {
	if name == "" {
		return nil, ErrValidation("Board name required")
	}
	if len(columnTitles) == 0 {
		columnTitles = defaultColumns
	}

	db := database.GetDB()

	board := &model.Board{
		Id:   uuid.NewString(),
		Name: name,
	}
	if err := db.Create(board).Error; err != nil {
		return nil, err
	}

	for i, title := range columnTitles {
		column := &model.Column{
			Id:      uuid.NewString(),
			Title:   title,
			BoardId: board.Id,
			Order:   i,
		}
		if err := db.Create(column).Error; err != nil {
			return nil, err
		}
	}
	return board, nil
}

func (s *BoardService) UpdateBoard(id string, name string) (*model.Board, error) {
	board, err := s.GetBoard(id)
	if err != nil {
		return nil, err
	}
	board.Name = name

	db := database.GetDB()
	if err := db.Save(board).Error; err != nil {
		return nil, err
	}
	return board, nil
}

// DeleteBoard cascades strictly children-first: every card of every column,
// then the columns, then the board. No database constraint enforces this,
// the deletion order is the integrity mechanism.
func (s *BoardService) DeleteBoard(id string) error {
	board, err := s.GetBoard(id)
	if err != nil {
		return err
	}

	db := database.GetDB()

	var columns []model.Column
	err = db.Model(model.Column{}).
		Where("board_id = ?", board.Id).
		Find(&columns).
		Error
	if err != nil {
		return err
	}

	for i := range columns {
		err = db.Where("column_id = ?", columns[i].Id).
			Delete(&model.Card{}).
			Error
		if err != nil {
			return err
		}
	}

	err = db.Where("board_id = ?", board.Id).
		Delete(&model.Column{}).
		Error
	if err != nil {
		return err
	}

	return db.Delete(&model.Board{}, "id = ?", board.Id).Error
}
