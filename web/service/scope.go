package service

import (
	"slices"

	"kaban/database"
	"kaban/database/model"
)

// ScopeService decides whether a user's board allow-list covers a given
// resource, walking column→board as needed. Admins bypass the allow-list.
type ScopeService struct {
	userService UserService
}

// CanAccessBoard is a pure check against an already-fetched user record.
func (s *ScopeService) CanAccessBoard(user *model.User, boardId string) bool {
	if user.HasFullAccess() {
		return true
	}
	return slices.Contains(user.AllowedBoards, boardId)
}

// CanAccessBoardByColumn resolves the column's board first and then applies
// the board rule with a freshly fetched user record.
func (s *ScopeService) CanAccessBoardByColumn(userId int, columnId string) (bool, error) {
	db := database.GetDB()

	column := &model.Column{}
	err := db.Model(model.Column{}).
		Where("id = ?", columnId).
		First(column).
		Error
	if database.IsNotFound(err) {
		return false, ErrNotFound("Column not found")
	} else if err != nil {
		return false, err
	}

	user, err := s.userService.GetUser(userId)
	if err != nil {
		return false, err
	}
	return s.CanAccessBoard(user, column.BoardId), nil
}

// CanAccessColumns checks board scope for a set of column ids at once: the
// distinct columns are resolved with a single query and the user is fetched
// once, so batch operations don't degrade into per-card lookups. A missing
// column fails the whole check with not-found.
func (s *ScopeService) CanAccessColumns(userId int, columnIds []string) (bool, error) {
	distinct := make([]string, 0, len(columnIds))
	for _, id := range columnIds {
		if !slices.Contains(distinct, id) {
			distinct = append(distinct, id)
		}
	}
	if len(distinct) == 0 {
		return true, nil
	}

	db := database.GetDB()

	var columns []model.Column
	err := db.Model(model.Column{}).
		Where("id IN ?", distinct).
		Find(&columns).
		Error
	if err != nil {
		return false, err
	}
	if len(columns) != len(distinct) {
		return false, ErrNotFound("Column not found")
	}

	user, err := s.userService.GetUser(userId)
	if err != nil {
		return false, err
	}
	for i := range columns {
		if !s.CanAccessBoard(user, columns[i].BoardId) {
			return false, nil
		}
	}
	return true, nil
}

// GrantBoard appends a board to a user's allow-list. Called after board
// creation so a non-admin creator keeps access to their own board.
func (s *ScopeService) GrantBoard(userId int, boardId string) error {
	user, err := s.userService.GetUser(userId)
	if err != nil {
		return err
	}
	if slices.Contains(user.AllowedBoards, boardId) {
		return nil
	}
	user.AllowedBoards = append(user.AllowedBoards, boardId)

	db := database.GetDB()
	return db.Save(user).Error
}
