package service

import (
	"kaban/database"
	"kaban/database/model"
	"kaban/logger"
	"kaban/util/crypto"

	"gorm.io/gorm"
)

// UserService is the identity store. Raw passwords handed to it are replaced
// by a bcrypt hash before anything is persisted.
type UserService struct{}

// UserUpdate carries a partial user mutation; nil fields are left untouched.
// Password is the raw replacement password, hashed on write.
type UserUpdate struct {
	Username        *string   `json:"username"`
	Password        *string   `json:"password"`
	Role            *string   `json:"role"`
	IsAdmin         *bool     `json:"isAdmin"`
	CanManageUsers  *bool     `json:"canManageUsers"`
	CanManageBoards *bool     `json:"canManageBoards"`
	CanManageTasks  *bool     `json:"canManageTasks"`
	AllowedBoards   *[]string `json:"allowedBoards"`
}

func (s *UserService) CountUsers() (int64, error) {
	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).Count(&count).Error
	return count, err
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("id = ?", id).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound("User not found")
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByUsername(username string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound("User not found")
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUsers() ([]model.User, error) {
	db := database.GetDB()

	var users []model.User
	err := db.Model(model.User{}).Order("id ASC").Find(&users).Error
	return users, err
}

// CreateUser validates credentials, hashes the raw password and inserts the
// record. Duplicate usernames fail with a validation error.
func (s *UserService) CreateUser(user *model.User, rawPassword string) error {
	if err := validateUsername(user.Username); err != nil {
		return err
	}
	if err := validatePassword(rawPassword); err != nil {
		return err
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.Role != model.RoleAdmin && user.Role != model.RoleUser {
		return ErrValidation("Invalid role")
	}

	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).
		Where("username = ?", user.Username).
		Count(&count).
		Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrValidation("Username already exists")
	}

	hash, err := crypto.HashPasswordAsBcrypt(rawPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	return db.Create(user).Error
}

// UpdateUser applies a partial update. A caller modifying their own record
// may not clear their own isAdmin or canManageUsers flag.
func (s *UserService) UpdateUser(actorId int, id int, upd UserUpdate) (*model.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if actorId == id {
		if upd.IsAdmin != nil && user.IsAdmin && !*upd.IsAdmin {
			return nil, ErrValidation("Cannot remove your own admin access")
		}
		if upd.CanManageUsers != nil && user.CanManageUsers && !*upd.CanManageUsers {
			return nil, ErrValidation("Cannot remove your own user management permission")
		}
	}

	db := database.GetDB()

	if upd.Username != nil && *upd.Username != user.Username {
		if err := validateUsername(*upd.Username); err != nil {
			return nil, err
		}
		var count int64
		err := db.Model(model.User{}).
			Where("username = ? AND id <> ?", *upd.Username, id).
			Count(&count).
			Error
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrValidation("Username already exists")
		}
		user.Username = *upd.Username
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := crypto.HashPasswordAsBcrypt(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if upd.Role != nil {
		if *upd.Role != model.RoleAdmin && *upd.Role != model.RoleUser {
			return nil, ErrValidation("Invalid role")
		}
		user.Role = *upd.Role
	}
	if upd.IsAdmin != nil {
		user.IsAdmin = *upd.IsAdmin
	}
	if upd.CanManageUsers != nil {
		user.CanManageUsers = *upd.CanManageUsers
	}
	if upd.CanManageBoards != nil {
		user.CanManageBoards = *upd.CanManageBoards
	}
	if upd.CanManageTasks != nil {
		user.CanManageTasks = *upd.CanManageTasks
	}
	if upd.AllowedBoards != nil {
		user.AllowedBoards = *upd.AllowedBoards
	}

	if err := db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user. Superusers cannot be deleted, whoever asks.
func (s *UserService) DeleteUser(id int) error {
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return ErrValidation("Cannot delete superuser")
	}

	db := database.GetDB()
	return db.Delete(&model.User{}, id).Error
}

func (s *UserService) DeleteAllUsers() error {
	db := database.GetDB()
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.User{}).
		Error
}

// CheckUser verifies a username/password pair and returns the user on
// success, nil otherwise. Unknown user and wrong password are not
// distinguished.
func (s *UserService) CheckUser(username string, password string) *model.User {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}

	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil
	}
	return user
}

func validateUsername(username string) error {
	if len(username) < 3 {
		return ErrValidation("Username must be at least 3 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 4 {
		return ErrValidation("Password must be at least 4 characters")
	}
	return nil
}
