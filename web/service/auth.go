package service

import (
	"sync"
	"time"

	"kaban/config"
	"kaban/database/model"
	"kaban/logger"
	"kaban/util/random"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 7 * 24 * time.Hour

var (
	jwtSecretOnce sync.Once
	jwtSecret     []byte
)

func getJWTSecret() []byte {
	jwtSecretOnce.Do(func() {
		secret := config.GetJWTSecret()
		if secret == "" {
			// Tokens won't survive a restart without a configured secret.
			secret = random.Seq(32)
			logger.Warning("JWT_SECRET is not set, using a generated secret")
		}
		jwtSecret = []byte(secret)
	})
	return jwtSecret
}

// AuthService is the credential verifier: it decides whether authentication
// is enabled at all (any user on record) and issues and validates the signed
// bearer tokens.
type AuthService struct {
	userService UserService
}

type AuthStatus struct {
	AuthEnabled bool `json:"authEnabled"`
	HasAdmin    bool `json:"hasAdmin"`
}

// TokenClaims is the decoded identity snapshot embedded in a token. The
// capability bits are signed at login time and go stale; authorization
// decisions must re-fetch the live user record and use only UserId from here.
type TokenClaims struct {
	UserId          int    `json:"userId"`
	Username        string `json:"username"`
	Role            string `json:"role"`
	IsAdmin         bool   `json:"isAdmin"`
	CanManageUsers  bool   `json:"canManageUsers"`
	CanManageBoards bool   `json:"canManageBoards"`
	CanManageTasks  bool   `json:"canManageTasks"`
}

// GetStatus derives the auth state from the user count at call time; it is
// never cached so disable/enable cycles take effect immediately.
func (s *AuthService) GetStatus() (*AuthStatus, error) {
	count, err := s.userService.CountUsers()
	if err != nil {
		return nil, err
	}
	return &AuthStatus{
		AuthEnabled: count > 0,
		HasAdmin:    count > 0,
	}, nil
}

// Enable creates the first account and thereby switches authentication on.
// It is only permitted while no user exists.
func (s *AuthService) Enable(username string, password string) (*model.User, error) {
	count, err := s.userService.CountUsers()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrValidation("Authentication already enabled")
	}
	if username == "" || password == "" {
		return nil, ErrValidation("Username and password required")
	}

	user := &model.User{
		Username:        username,
		Role:            model.RoleAdmin,
		IsAdmin:         true,
		CanManageUsers:  true,
		CanManageBoards: true,
		CanManageTasks:  true,
	}
	if err := s.userService.CreateUser(user, password); err != nil {
		return nil, err
	}
	return user, nil
}

// Disable deletes every user, reverting the system to the auth-disabled
// bootstrap state. The access gate must have verified the caller already.
func (s *AuthService) Disable() error {
	return s.userService.DeleteAllUsers()
}

// Login verifies the credentials and issues a signed 7-day token. The same
// generic failure is returned for unknown users and wrong passwords.
func (s *AuthService) Login(username string, password string) (string, *model.User, error) {
	user := s.userService.CheckUser(username, password)
	if user == nil {
		return "", nil, ErrUnauthorized("Invalid credentials")
	}

	claims := jwt.MapClaims{
		"userId":          user.Id,
		"username":        user.Username,
		"role":            user.Role,
		"isAdmin":         user.IsAdmin,
		"canManageUsers":  user.CanManageUsers,
		"canManageBoards": user.CanManageBoards,
		"canManageTasks":  user.CanManageTasks,
		"exp":             time.Now().Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(getJWTSecret())
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ParseToken verifies the signature and expiry and returns the decoded claims.
func (s *AuthService) ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized("Invalid token")
		}
		return getJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized("Invalid token")
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthorized("Invalid token")
	}

	claims := &TokenClaims{}
	if v, ok := mapClaims["userId"].(float64); ok {
		claims.UserId = int(v)
	}
	claims.Username, _ = mapClaims["username"].(string)
	claims.Role, _ = mapClaims["role"].(string)
	claims.IsAdmin, _ = mapClaims["isAdmin"].(bool)
	claims.CanManageUsers, _ = mapClaims["canManageUsers"].(bool)
	claims.CanManageBoards, _ = mapClaims["canManageBoards"].(bool)
	claims.CanManageTasks, _ = mapClaims["canManageTasks"].(bool)
	return claims, nil
}

// Me resolves a token back to the live user record. A valid token whose user
// has since been deleted yields a not-found error.
func (s *AuthService) Me(tokenString string) (*model.User, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	return s.userService.GetUser(claims.UserId)
}
