package user

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}
