package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/court-booking/internal/db"
	"github.com/example/court-booking/internal/domain/user"
)

type UserRepo struct{ db *db.DB }

func NewUserRepo(d *db.DB) *UserRepo { return &UserRepo{db: d} }

func (r *UserRepo) Create(ctx context.Context, username string, passwordHash []byte, role user.Role) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, password_bcrypt, role) VALUES ($1,$2,$3) RETURNING id`,
		strings.ToLower(strings.TrimSpace(username)), string(passwordHash), string(role),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user %q: %w", username, err)
	}
	return id, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, username, password_bcrypt, role, created_at FROM users WHERE username=$1`,
		strings.ToLower(strings.TrimSpace(username)))
	var (
		u    user.User
		hash string
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &hash, &role, &u.CreatedAt); err != nil {
		return user.User{}, db.WrapNotFound(err)
	}
	u.PasswordHash = []byte(hash)
	u.Role = user.Role(role)
	return u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, username, role, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		var (
			u    user.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Username, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = user.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}
