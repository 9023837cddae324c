package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogify/internal/domain"
)

// CommentRepository define el contrato de persistencia para comentarios.
type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) error
	GetByID(ctx context.Context, id string) (domain.Comment, error)
	Update(ctx context.Context, comment domain.Comment) error
	Delete(ctx context.Context, id string) error
	ListByBlog(ctx context.Context, blogID string) ([]domain.Comment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Comment, error)
	ListAll(ctx context.Context) ([]domain.Comment, error)
	DeleteByBlog(ctx context.Context, blogID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

const commentColumns = `c.id, c.content, c.blog_id, c.created_by, c.parent_comment,
		c.created_at, c.updated_at, u.full_name, u.profile_image_url`

// PgCommentRepository implementa CommentRepository usando pgxpool.
type PgCommentRepository struct {
	pool *pgxpool.Pool
}

func NewPgCommentRepository(pool *pgxpool.Pool) *PgCommentRepository {
	return &PgCommentRepository{pool: pool}
}

func (r *PgCommentRepository) Create(ctx context.Context, comment domain.Comment) error {
	const query = `
		INSERT INTO comments (id, content, blog_id, created_by, parent_comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.Content,
		comment.BlogID,
		comment.CreatedBy,
		comment.ParentComment,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	return err
}

func scanComment(row pgx.Row) (domain.Comment, error) {
	var (
		c          domain.Comment
		parent     *string
		authorName string
		authorImg  string
	)
	err := row.Scan(
		&c.ID,
		&c.Content,
		&c.BlogID,
		&c.CreatedBy,
		&parent,
		&c.CreatedAt,
		&c.UpdatedAt,
		&authorName,
		&authorImg,
	)
	if err != nil {
		return domain.Comment{}, err
	}
	if parent != nil {
		c.ParentComment = *parent
	}
	c.Author = &domain.User{ID: c.CreatedBy, FullName: authorName, ProfileImageURL: authorImg}
	return c, nil
}

func (r *PgCommentRepository) queryComments(ctx context.Context, query string, args ...any) ([]domain.Comment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *PgCommentRepository) GetByID(ctx context.Context, id string) (domain.Comment, error) {
	const query = `
		SELECT ` + commentColumns + `
		FROM comments c JOIN users u ON u.id = c.created_by
		WHERE c.id = $1
	`
	return scanComment(r.pool.QueryRow(ctx, query, id))
}

func (r *PgCommentRepository) Update(ctx context.Context, comment domain.Comment) error {
	const query = `
		UPDATE comments
		SET content = $2, updated_at = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, comment.ID, comment.Content, comment.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgCommentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM comments WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgCommentRepository) ListByBlog(ctx context.Context, blogID string) ([]domain.Comment, error) {
	const query = `
		SELECT ` + commentColumns + `
		FROM comments c JOIN users u ON u.id = c.created_by
		WHERE c.blog_id = $1
		ORDER BY c.created_at ASC
	`
	return r.queryComments(ctx, query, blogID)
}

func (r *PgCommentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Comment, error) {
	const query = `
		SELECT ` + commentColumns + `
		FROM comments c JOIN users u ON u.id = c.created_by
		WHERE c.created_by = $1
		ORDER BY c.created_at DESC
	`
	return r.queryComments(ctx, query, userID)
}

func (r *PgCommentRepository) ListAll(ctx context.Context) ([]domain.Comment, error) {
	const query = `
		SELECT ` + commentColumns + `
		FROM comments c JOIN users u ON u.id = c.created_by
		ORDER BY c.created_at DESC
	`
	return r.queryComments(ctx, query)
}

func (r *PgCommentRepository) DeleteByBlog(ctx context.Context, blogID string) error {
	const query = `DELETE FROM comments WHERE blog_id = $1`
	_, err := r.pool.Exec(ctx, query, blogID)
	return err
}

func (r *PgCommentRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM comments WHERE created_by = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
