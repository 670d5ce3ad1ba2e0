package service

import (
	"net/http"
	"os"
	"testing"

	"kaban/database"
	"kaban/database/model"

	"github.com/stretchr/testify/assert"
)

func setup() {
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

func TestAuthLifecycle(t *testing.T) {
	setup()
	defer teardown()

	authService := AuthService{}

	// Fresh database: auth disabled
	status, err := authService.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.AuthEnabled)
	assert.False(t, status.HasAdmin)

	// Enable rejects empty and short credentials
	_, err = authService.Enable("", "")
	assert.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	_, err = authService.Enable("admin", "abc")
	assert.Error(t, err)
	assert.Equal(t, "Password must be at least 4 characters", err.Error())

	// First account switches auth on with every capability
	user, err := authService.Enable("admin", "secret")
	assert.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.True(t, user.IsAdmin)
	assert.True(t, user.CanManageUsers)
	assert.True(t, user.CanManageBoards)
	assert.True(t, user.CanManageTasks)
	assert.NotEqual(t, "secret", user.PasswordHash)

	status, err = authService.GetStatus()
	assert.NoError(t, err)
	assert.True(t, status.AuthEnabled)
	assert.True(t, status.HasAdmin)

	// A second enable is refused while a user exists
	_, err = authService.Enable("other", "secret")
	assert.Error(t, err)
	assert.Equal(t, "Authentication already enabled", err.Error())
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	// Login issues a token that parses back to the same identity
	token, loggedIn, err := authService.Login("admin", "secret")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.Id, loggedIn.Id)

	claims, err := authService.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.Id, claims.UserId)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.True(t, claims.IsAdmin)

	me, err := authService.Me(token)
	assert.NoError(t, err)
	assert.Equal(t, "admin", me.Username)

	// Disable wipes the users and reopens the bootstrap state
	err = authService.Disable()
	assert.NoError(t, err)
	status, err = authService.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.AuthEnabled)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	setup()
	defer teardown()

	authService := AuthService{}
	_, err := authService.Enable("admin", "secret")
	assert.NoError(t, err)

	// Wrong password and unknown user fail with the same error
	_, _, errWrongPass := authService.Login("admin", "nope")
	_, _, errNoUser := authService.Login("ghost", "secret")
	assert.Error(t, errWrongPass)
	assert.Error(t, errNoUser)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
	assert.Equal(t, "Invalid credentials", errWrongPass.Error())
	assert.True(t, IsStatus(errWrongPass, http.StatusUnauthorized))
	assert.True(t, IsStatus(errNoUser, http.StatusUnauthorized))
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	setup()
	defer teardown()

	authService := AuthService{}

	_, err := authService.ParseToken("not-a-token")
	assert.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Invalid token", err.Error())
}

func TestMeAfterUserDeleted(t *testing.T) {
	setup()
	defer teardown()

	authService := AuthService{}
	userService := UserService{}

	_, err := authService.Enable("admin", "secret")
	assert.NoError(t, err)
	token, _, err := authService.Login("admin", "secret")
	assert.NoError(t, err)

	// The token outlives the account; resolving it is a not-found, not a 401
	err = userService.DeleteAllUsers()
	assert.NoError(t, err)

	_, err = authService.Me(token)
	assert.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Equal(t, "User not found", err.Error())
}
