package model

import (
	"slices"
	"time"
)

// Profile names stored in Usuario.Perfis.
const (
	PerfilRoot  = "ROOT"
	PerfilAdmin = "ADMIN"
	PerfilUser  = "USER"
)

// Usuario is an operator of the cash drawers.
type Usuario struct {
	ID        uint     `gorm:"primaryKey"`
	Username  string   `gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string   `gorm:"not null"` // bcrypt hash
	Email     string   `gorm:"type:varchar(255)"`
	Ativo     bool     `gorm:"not null;default:true"`
	Perfis    []string `gorm:"serializer:json;type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Usuario) TableName() string { return "usuarios" }

func (u *Usuario) HasPerfil(perfil string) bool {
	return slices.Contains(u.Perfis, perfil)
}
