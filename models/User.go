package models

import (
	"gorm.io/gorm"
)

// Role is the closed set of account roles. Authorization goes through the
// predicates below instead of comparing raw strings at call sites.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	gorm.Model
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" gorm:"uniqueIndex"`
	Password  string `json:"-"`
	Role      Role   `json:"role" gorm:"type:varchar(20);default:user;index"`
}
