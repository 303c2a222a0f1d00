package repository

import (
	"context"

	"github.com/recon2root/eventsite/internal/database"
	"github.com/recon2root/eventsite/internal/model"
)

type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Admin, error)
	Create(ctx context.Context, params model.UpsertAdminParams) (*model.Admin, error)
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
}

type adminRepo struct {
	db database.DBTX
}

func NewAdminRepository(db database.DBTX) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) FindByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.GetContext(ctx, &admin, r.db.Rebind(`
		SELECT * FROM admin WHERE username = ?
	`), username)
	return HandleNotFound(&admin, err)
}

func (r *adminRepo) Create(ctx context.Context, params model.UpsertAdminParams) (*model.Admin, error) {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO admin (id, username, password_hash)
		VALUES (?, ?, ?)
	`), params.ID, params.Username, params.PasswordHash)
	if err != nil {
		return nil, err
	}
	return r.FindByUsername(ctx, params.Username)
}

func (r *adminRepo) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE admin SET password_hash = ? WHERE username = ?
	`), passwordHash, username)
	return err
}
