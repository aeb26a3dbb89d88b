package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles used for search prioritization. Files owned by curators form the
// authoritative tier consulted before any member's personal uploads.
const (
	RoleCurator = "curator"
	RoleMember  = "member"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	FirstName    string    `bun:"first_name,notnull" json:"first_name"`
	Role         string    `bun:"role,notnull" json:"role"`
	Username     string    `bun:"username,unique,notnull" json:"username"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	Role      string `json:"role" binding:"required,oneof=curator member"`
	Username  string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserInfo struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Role      string `json:"role"`
	Username  string `json:"username"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

func (u *User) Info() UserInfo {
	return UserInfo{
		ID:        u.ID,
		FirstName: u.FirstName,
		Role:      u.Role,
		Username:  u.Username,
	}
}
