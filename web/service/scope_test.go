package service

import (
	"net/http"
	"testing"

	"kaban/database/model"

	"github.com/stretchr/testify/assert"
)

func TestCanAccessBoard(t *testing.T) {
	setup()
	defer teardown()

	scopeService := ScopeService{}

	admin := &model.User{Username: "admin", IsAdmin: true}
	legacyAdmin := &model.User{Username: "legacy", Role: model.RoleAdmin}
	member := &model.User{Username: "bob", AllowedBoards: []string{"b1"}}
	outsider := &model.User{Username: "carol"}

	// Admins bypass the allow-list entirely
	assert.True(t, scopeService.CanAccessBoard(admin, "anything"))
	assert.True(t, scopeService.CanAccessBoard(legacyAdmin, "anything"))

	assert.True(t, scopeService.CanAccessBoard(member, "b1"))
	assert.False(t, scopeService.CanAccessBoard(member, "b2"))
	assert.False(t, scopeService.CanAccessBoard(outsider, "b1"))
}

func TestCanAccessBoardByColumn(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	boardService := BoardService{}
	scopeService := ScopeService{}

	board, err := boardService.CreateBoard("Roadmap", nil)
	assert.NoError(t, err)
	detail, err := boardService.GetBoardDetail(board.Id)
	assert.NoError(t, err)
	columnId := detail.Columns[0].Id

	member := &model.User{Username: "bob", AllowedBoards: []string{board.Id}}
	assert.NoError(t, userService.CreateUser(member, "secret"))
	outsider := &model.User{Username: "carol"}
	assert.NoError(t, userService.CreateUser(outsider, "secret"))

	allowed, err := scopeService.CanAccessBoardByColumn(member.Id, columnId)
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = scopeService.CanAccessBoardByColumn(outsider.Id, columnId)
	assert.NoError(t, err)
	assert.False(t, allowed)

	// An unknown column is a not-found, not a denial
	_, err = scopeService.CanAccessBoardByColumn(member.Id, "missing")
	assert.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Equal(t, "Column not found", err.Error())
}

func TestCanAccessColumns(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	boardService := BoardService{}
	scopeService := ScopeService{}

	mine, err := boardService.CreateBoard("Mine", []string{"Todo"})
	assert.NoError(t, err)
	theirs, err := boardService.CreateBoard("Theirs", []string{"Todo"})
	assert.NoError(t, err)

	mineDetail, _ := boardService.GetBoardDetail(mine.Id)
	theirsDetail, _ := boardService.GetBoardDetail(theirs.Id)
	myColumn := mineDetail.Columns[0].Id
	theirColumn := theirsDetail.Columns[0].Id

	member := &model.User{Username: "bob", AllowedBoards: []string{mine.Id}}
	assert.NoError(t, userService.CreateUser(member, "secret"))

	// Duplicates collapse to one lookup and the whole set must be in scope
	allowed, err := scopeService.CanAccessColumns(member.Id, []string{myColumn, myColumn})
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = scopeService.CanAccessColumns(member.Id, []string{myColumn, theirColumn})
	assert.NoError(t, err)
	assert.False(t, allowed)

	// Any missing column fails the whole batch
	_, err = scopeService.CanAccessColumns(member.Id, []string{myColumn, "missing"})
	assert.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	// The empty set is trivially in scope
	allowed, err = scopeService.CanAccessColumns(member.Id, nil)
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestGrantBoard(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	scopeService := ScopeService{}

	user := &model.User{Username: "bob"}
	assert.NoError(t, userService.CreateUser(user, "secret"))

	assert.NoError(t, scopeService.GrantBoard(user.Id, "b1"))
	assert.NoError(t, scopeService.GrantBoard(user.Id, "b2"))
	// Granting twice is a no-op
	assert.NoError(t, scopeService.GrantBoard(user.Id, "b1"))

	reloaded, err := userService.GetUser(user.Id)
	assert.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, reloaded.AllowedBoards)

	err = scopeService.GrantBoard(9999, "b1")
	assert.True(t, IsStatus(err, http.StatusNotFound))
}
