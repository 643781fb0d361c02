package infra

import (
	"context"

	"siso/internal/auth"
	"siso/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RootUsername is the account created by SeedRoot.
const RootUsername = "rootuser"

// SeedRoot creates the ROOT account when it does not exist yet. It never
// touches an existing rootuser, so running it on every deploy is safe.
// Reports whether a row was inserted.
func SeedRoot(ctx context.Context, db *gorm.DB, password, email string) (bool, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	root := &model.Usuario{
		Username: RootUsername,
		Password: hash,
		Email:    email,
		Ativo:    true,
		Perfis:   []string{model.PerfilRoot},
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(root)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
