package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"kaban/database"
	"kaban/database/model"
	"kaban/web/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupWeb(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "web_test.db"
	os.Remove(dbPath)
	assert.NoError(t, database.InitDB(dbPath))
	t.Cleanup(func() {
		db, _ := database.GetDB().DB()
		db.Close()
		os.Remove(dbPath)
	})

	server := NewServer()
	engine, err := server.initRouter()
	assert.NoError(t, err)
	return engine
}

func do(engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func login(t *testing.T, engine *gin.Engine, username, password string) string {
	t.Helper()
	w := do(engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	token, _ := decode(t, w)["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

// makeBoard creates a board over the API and returns its id and the id of
// its first column.
func makeBoard(t *testing.T, engine *gin.Engine, token, name string) (string, string) {
	t.Helper()
	w := do(engine, http.MethodPost, "/api/boards", token, gin.H{"name": name})
	assert.Equal(t, http.StatusCreated, w.Code)
	boardId, _ := decode(t, w)["id"].(string)
	assert.NotEmpty(t, boardId)

	w = do(engine, http.MethodGet, "/api/boards/"+boardId, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	columns, _ := decode(t, w)["columns"].([]any)
	assert.NotEmpty(t, columns)
	columnId, _ := columns[0].(map[string]any)["id"].(string)
	assert.NotEmpty(t, columnId)
	return boardId, columnId
}

func TestBootstrapAuthGate(t *testing.T) {
	engine := setupWeb(t)

	w := do(engine, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// No user on record: the whole API is open, no token needed
	w = do(engine, http.MethodGet, "/api/auth/status", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["authEnabled"])

	w = do(engine, http.MethodPost, "/api/boards", "", gin.H{"name": "First board"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Creating the first account flips the gate
	w = do(engine, http.MethodPost, "/api/auth/enable", "", gin.H{
		"username": "admin",
		"password": "secret",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Authentication enabled", decode(t, w)["message"])

	w = do(engine, http.MethodPost, "/api/boards", "", gin.H{"name": "Locked out"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decode(t, w)["error"])

	w = do(engine, http.MethodPost, "/api/boards", "garbage-token", gin.H{"name": "Bad token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", decode(t, w)["error"])

	token := login(t, engine, "admin", "secret")

	w = do(engine, http.MethodPost, "/api/boards", token, gin.H{"name": "Authorized"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(engine, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["username"])

	// Disabling auth reopens the bootstrap state
	w = do(engine, http.MethodPost, "/api/auth/disable", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(engine, http.MethodPost, "/api/boards", "", gin.H{"name": "Open again"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLoginFailureBodiesMatch(t *testing.T) {
	engine := setupWeb(t)

	w := do(engine, http.MethodPost, "/api/auth/enable", "", gin.H{
		"username": "admin",
		"password": "secret",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	wrongPass := do(engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "admin",
		"password": "nope",
	})
	noUser := do(engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "ghost",
		"password": "secret",
	})

	// Wrong password and unknown user must be indistinguishable on the wire
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, noUser.Code)
	assert.Equal(t, wrongPass.Body.String(), noUser.Body.String())
	assert.Equal(t, "Invalid credentials", decode(t, wrongPass)["error"])
}

func TestBatchReorderScopeRejectedBeforeWrite(t *testing.T) {
	engine := setupWeb(t)
	userService := service.UserService{}
	cardService := service.CardService{}

	w := do(engine, http.MethodPost, "/api/auth/enable", "", gin.H{
		"username": "admin",
		"password": "secret",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	adminToken := login(t, engine, "admin", "secret")

	w = do(engine, http.MethodPost, "/api/boards", adminToken, gin.H{"name": "Private"})
	assert.Equal(t, http.StatusCreated, w.Code)
	boardId, _ := decode(t, w)["id"].(string)
	assert.NotEmpty(t, boardId)

	w = do(engine, http.MethodGet, "/api/boards/"+boardId, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	columns, _ := decode(t, w)["columns"].([]any)
	assert.NotEmpty(t, columns)
	columnId, _ := columns[0].(map[string]any)["id"].(string)
	assert.NotEmpty(t, columnId)

	w = do(engine, http.MethodPost, "/api/cards", adminToken, gin.H{
		"title":    "guarded",
		"columnId": columnId,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	cardId, _ := decode(t, w)["id"].(string)

	// A task manager without this board on their allow-list
	limited := &model.User{Username: "limited", CanManageTasks: true}
	assert.NoError(t, userService.CreateUser(limited, "secret"))
	limitedToken := login(t, engine, "limited", "secret")

	w = do(engine, http.MethodPut, "/api/cards/batch/reorder", limitedToken, gin.H{
		"cards": []gin.H{{"id": cardId, "columnId": columnId, "order": 5}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied to this board", decode(t, w)["error"])

	// The rejected batch wrote nothing
	card, err := cardService.GetCard(cardId)
	assert.NoError(t, err)
	assert.Equal(t, 0, card.Order)

	// The same batch goes through for the admin
	w = do(engine, http.MethodPut, "/api/cards/batch/reorder", adminToken, gin.H{
		"cards": []gin.H{{"id": cardId, "columnId": columnId, "order": 5}},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	card, err = cardService.GetCard(cardId)
	assert.NoError(t, err)
	assert.Equal(t, 5, card.Order)
}

func TestMoveCardChecksSourceAndDestinationScope(t *testing.T) {
	engine := setupWeb(t)
	userService := service.UserService{}
	cardService := service.CardService{}

	w := do(engine, http.MethodPost, "/api/auth/enable", "", gin.H{
		"username": "admin",
		"password": "secret",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	adminToken := login(t, engine, "admin", "secret")

	srcBoard, srcColumn := makeBoard(t, engine, adminToken, "Source")
	dstBoard, dstColumn := makeBoard(t, engine, adminToken, "Target")

	w = do(engine, http.MethodPost, "/api/cards", adminToken, gin.H{
		"title":    "mover",
		"columnId": srcColumn,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	cardId, _ := decode(t, w)["id"].(string)

	// Access to the source board alone is not enough to move a card out
	srcOnly := &model.User{Username: "src-only", CanManageTasks: true, AllowedBoards: []string{srcBoard}}
	assert.NoError(t, userService.CreateUser(srcOnly, "secret"))
	srcToken := login(t, engine, "src-only", "secret")

	w = do(engine, http.MethodPut, "/api/cards/"+cardId+"/move", srcToken, gin.H{
		"columnId": dstColumn,
		"order":    3,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied to this board", decode(t, w)["error"])

	// Access to the destination board alone fails on the source side
	dstOnly := &model.User{Username: "dst-only", CanManageTasks: true, AllowedBoards: []string{dstBoard}}
	assert.NoError(t, userService.CreateUser(dstOnly, "secret"))
	dstToken := login(t, engine, "dst-only", "secret")

	w = do(engine, http.MethodPut, "/api/cards/"+cardId+"/move", dstToken, gin.H{
		"columnId": dstColumn,
		"order":    3,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied to this board", decode(t, w)["error"])

	// The rejected moves wrote nothing
	card, err := cardService.GetCard(cardId)
	assert.NoError(t, err)
	assert.Equal(t, srcColumn, card.ColumnId)
	assert.Equal(t, 0, card.Order)

	// With both boards on the allow-list the move goes through
	both := &model.User{Username: "both-boards", CanManageTasks: true, AllowedBoards: []string{srcBoard, dstBoard}}
	assert.NoError(t, userService.CreateUser(both, "secret"))
	bothToken := login(t, engine, "both-boards", "secret")

	w = do(engine, http.MethodPut, "/api/cards/"+cardId+"/move", bothToken, gin.H{
		"columnId": dstColumn,
		"order":    3,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	card, err = cardService.GetCard(cardId)
	assert.NoError(t, err)
	assert.Equal(t, dstColumn, card.ColumnId)
	assert.Equal(t, 3, card.Order)
}

func TestPermissionAndVisibility(t *testing.T) {
	engine := setupWeb(t)
	userService := service.UserService{}

	w := do(engine, http.MethodPost, "/api/auth/enable", "", gin.H{
		"username": "admin",
		"password": "secret",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	adminToken := login(t, engine, "admin", "secret")

	w = do(engine, http.MethodPost, "/api/boards", adminToken, gin.H{"name": "Visible"})
	assert.Equal(t, http.StatusCreated, w.Code)
	visibleId, _ := decode(t, w)["id"].(string)
	w = do(engine, http.MethodPost, "/api/boards", adminToken, gin.H{"name": "Hidden"})
	assert.Equal(t, http.StatusCreated, w.Code)
	hiddenId, _ := decode(t, w)["id"].(string)

	member := &model.User{Username: "member", AllowedBoards: []string{visibleId}}
	assert.NoError(t, userService.CreateUser(member, "secret"))
	memberToken := login(t, engine, "member", "secret")

	// Listing filters to the allow-list
	w = do(engine, http.MethodGet, "/api/boards", memberToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var boards []map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &boards))
	assert.Len(t, boards, 1)
	assert.Equal(t, visibleId, boards[0]["id"])

	// Reading outside the allow-list is a denial, not a not-found
	w = do(engine, http.MethodGet, "/api/boards/"+hiddenId, memberToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied to this board", decode(t, w)["error"])

	// Missing capability beats scope: no canManageBoards, no creation
	w = do(engine, http.MethodPost, "/api/boards", memberToken, gin.H{"name": "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Permission denied: canManageBoards required", decode(t, w)["error"])

	// Unknown routes answer with the uniform error shape
	w = do(engine, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decode(t, w)["error"])
}

func TestNonAdminCreatorKeepsBoardAccess(t *testing.T) {
	engine := setupWeb(t)
	userService := service.UserService{}

	w := do(engine, http.MethodPost, "/api/auth/enable", "", gin.H{
		"username": "admin",
		"password": "secret",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	creator := &model.User{Username: "creator", CanManageBoards: true}
	assert.NoError(t, userService.CreateUser(creator, "secret"))
	creatorToken := login(t, engine, "creator", "secret")

	w = do(engine, http.MethodPost, "/api/boards", creatorToken, gin.H{"name": "My board"})
	assert.Equal(t, http.StatusCreated, w.Code)
	boardId, _ := decode(t, w)["id"].(string)

	// The creation grants the board to the non-admin creator
	reloaded, err := userService.GetUser(creator.Id)
	assert.NoError(t, err)
	assert.Contains(t, reloaded.AllowedBoards, boardId)

	w = do(engine, http.MethodGet, "/api/boards/"+boardId, creatorToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
