package store

import (
	"context"
	"fmt"

	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/entity"
)

type adminStore struct {
	*MYSQLStore
}

// Admin returns an object implementing dependency.Admin interface
func (ms *MYSQLStore) Admin() dependency.Admin {
	return &adminStore{
		MYSQLStore: ms,
	}
}

// AddAdmin creates a new admin
func (as *adminStore) AddAdmin(ctx context.Context, un, pwHash string) error {
	_, err := as.db.ExecContext(ctx, `INSERT INTO admins (username, password_hash) VALUES (?, ?)`, un, pwHash)
	if err != nil {
		return fmt.Errorf("can't add admin user: %w", err)
	}
	return nil
}

// DeleteAdmin deletes an admin
func (as *adminStore) DeleteAdmin(ctx context.Context, username string) error {
	return as.execOne(ctx, `DELETE FROM admins WHERE username = ?`, username)
}

// ChangePassword changes the password of an admin
func (as *adminStore) ChangePassword(ctx context.Context, un, newHash string) error {
	return as.execOne(ctx, `UPDATE admins SET password_hash = ? WHERE username = ?`, newHash, un)
}

func (as *adminStore) execOne(ctx context.Context, query string, args ...any) error {
	res, err := as.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("admin: %w", errNotFound)
	}
	return nil
}

// PasswordHashByUsername returns password hash of an admin
func (as *adminStore) PasswordHashByUsername(ctx context.Context, un string) (string, error) {
	admin, err := QueryNamedOne[entity.Admin](ctx, as.DB(), `
	SELECT id, username, password_hash FROM admins WHERE username = :username`, map[string]any{
		"username": un,
	})
	if err != nil {
		return "", fmt.Errorf("admin %q: %w", un, err)
	}
	return admin.PasswordHash, nil
}
