// Package model defines the persistent entities of the kaban server.
package model

import (
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account in the global user directory. The capability flags gate
// classes of mutations; AllowedBoards is the per-user board allow-list and is
// irrelevant when IsAdmin or Role is admin.
type User struct {
	Id              int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username        string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash    string    `json:"-" gorm:"column:password_hash"`
	Role            string    `json:"role" gorm:"not null;default:user"`
	IsAdmin         bool      `json:"isAdmin"`
	CanManageUsers  bool      `json:"canManageUsers"`
	CanManageBoards bool      `json:"canManageBoards"`
	CanManageTasks  bool      `json:"canManageTasks"`
	AllowedBoards   []string  `json:"allowedBoards" gorm:"serializer:json"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasFullAccess reports whether the user bypasses allow-list and capability
// checks entirely.
func (u *User) HasFullAccess() bool {
	return u.IsAdmin || u.Role == RoleAdmin
}

type Board struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Column belongs to a board. Order is an advisory sibling rank: values need
// not be contiguous or unique, sorting decides the display order.
type Column struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title"`
	BoardId   string    `json:"boardId" gorm:"index;not null"`
	Order     int       `json:"order" gorm:"column:sort_order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Card belongs to a column and can move between columns.
type Card struct {
	Id          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ColumnId    string    `json:"columnId" gorm:"index;not null"`
	Order       int       `json:"order" gorm:"column:sort_order"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
