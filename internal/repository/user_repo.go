package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogify/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByFullName(ctx context.Context, fullName string) (domain.User, error)
	Update(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.User, error)
	SaveBlog(ctx context.Context, userID, blogID string) error
	UnsaveBlog(ctx context.Context, userID, blogID string) error
	IsBlogSaved(ctx context.Context, userID, blogID string) (bool, error)
	SavedBlogIDs(ctx context.Context, userID string) ([]string, error)
}

const userColumns = `id, full_name, email, password_hash, role, is_email_verified,
		profile_image_url, profile_image_public_id, auth_provider, created_at`

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, full_name, email, password_hash, role, is_email_verified,
			profile_image_url, profile_image_public_id, auth_provider, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsEmailVerified,
		user.ProfileImageURL,
		user.ProfileImagePublicID,
		user.AuthProvider,
		user.CreatedAt,
	)
	return err
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsEmailVerified,
		&u.ProfileImageURL,
		&u.ProfileImagePublicID,
		&u.AuthProvider,
		&u.CreatedAt,
	)
	return u, err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByFullName(ctx context.Context, fullName string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE full_name = $1`
	return scanUser(r.pool.QueryRow(ctx, query, fullName))
}

func (r *PgUserRepository) Update(ctx context.Context, user domain.User) error {
	const query = `
		UPDATE users
		SET full_name = $2, password_hash = $3, profile_image_url = $4,
			profile_image_public_id = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.FullName,
		user.PasswordHash,
		user.ProfileImageURL,
		user.ProfileImagePublicID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgUserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) SaveBlog(ctx context.Context, userID, blogID string) error {
	const query = `
		INSERT INTO saved_blogs (user_id, blog_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, userID, blogID)
	return err
}

func (r *PgUserRepository) UnsaveBlog(ctx context.Context, userID, blogID string) error {
	const query = `DELETE FROM saved_blogs WHERE user_id = $1 AND blog_id = $2`
	_, err := r.pool.Exec(ctx, query, userID, blogID)
	return err
}

func (r *PgUserRepository) IsBlogSaved(ctx context.Context, userID, blogID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM saved_blogs WHERE user_id = $1 AND blog_id = $2)`
	var saved bool
	err := r.pool.QueryRow(ctx, query, userID, blogID).Scan(&saved)
	return saved, err
}

func (r *PgUserRepository) SavedBlogIDs(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT blog_id FROM saved_blogs WHERE user_id = $1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsUniqueViolation detecta violaciones de índice único (email o full_name).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
