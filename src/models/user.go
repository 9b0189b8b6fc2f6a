package models

import (
	"bitlibro/src/types"
	"strings"
)

type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Email        string     `gorm:"size:256;uniqueIndex;not null" json:"email"`
	Username     string     `gorm:"size:256;uniqueIndex;not null" json:"-"`
	PasswordHash string     `json:"-"`
	Name         string     `gorm:"size:50;not null" json:"name"`
	LastName     string     `gorm:"size:50;not null" json:"last_name"`
	Ci           string     `gorm:"size:10;uniqueIndex;not null" json:"ci"`
	Role         types.Role `gorm:"size:20;index;not null" json:"role"`

	Reservations []*Reservation `gorm:"foreignKey:ClientID" json:"-"`

	types.Timestamps
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}

func (u *User) Roles() []string {
	return []string{u.Role.String()}
}

func (u *User) AuthUser() types.AuthUser {
	return types.AuthUser{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		LastName: u.LastName,
		Ci:       u.Ci,
		Roles:    u.Roles(),
	}
}
