package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogify/internal/domain"
)

// BlogRepository define el contrato de persistencia para blogs y likes.
type BlogRepository interface {
	Create(ctx context.Context, blog domain.Blog) error
	GetByID(ctx context.Context, id string) (domain.Blog, error)
	Update(ctx context.Context, blog domain.Blog) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.Blog, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Blog, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Blog, error)
	ListLikedBy(ctx context.Context, userID string) ([]domain.Blog, error)
	SearchByTitle(ctx context.Context, query string, offset, limit int) ([]domain.Blog, int, error)
	Like(ctx context.Context, blogID, userID string) error
	Unlike(ctx context.Context, blogID, userID string) error
	HasLiked(ctx context.Context, blogID, userID string) (bool, error)
	LikeCount(ctx context.Context, blogID string) (int, error)
	DeleteByUser(ctx context.Context, userID string) error
	RemoveUserLikes(ctx context.Context, userID string) error
}

const blogColumns = `b.id, b.title, b.body, b.cover_image_url, b.cover_image_public_id,
		b.created_by, b.created_at, b.updated_at,
		COALESCE((SELECT array_agg(bl.user_id) FROM blog_likes bl WHERE bl.blog_id = b.id), '{}'),
		u.full_name, u.profile_image_url`

// PgBlogRepository implementa BlogRepository usando pgxpool.
type PgBlogRepository struct {
	pool *pgxpool.Pool
}

func NewPgBlogRepository(pool *pgxpool.Pool) *PgBlogRepository {
	return &PgBlogRepository{pool: pool}
}

func (r *PgBlogRepository) Create(ctx context.Context, blog domain.Blog) error {
	const query = `
		INSERT INTO blogs (id, title, body, cover_image_url, cover_image_public_id,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		blog.ID,
		blog.Title,
		blog.Body,
		blog.CoverImageURL,
		blog.CoverImagePublicID,
		blog.CreatedBy,
		blog.CreatedAt,
		blog.UpdatedAt,
	)
	return err
}

func scanBlog(row pgx.Row) (domain.Blog, error) {
	var (
		b          domain.Blog
		authorName string
		authorImg  string
	)
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Body,
		&b.CoverImageURL,
		&b.CoverImagePublicID,
		&b.CreatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.Likes,
		&authorName,
		&authorImg,
	)
	if err != nil {
		return domain.Blog{}, err
	}
	b.Author = &domain.User{ID: b.CreatedBy, FullName: authorName, ProfileImageURL: authorImg}
	return b, nil
}

func (r *PgBlogRepository) queryBlogs(ctx context.Context, query string, args ...any) ([]domain.Blog, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []domain.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}

func (r *PgBlogRepository) GetByID(ctx context.Context, id string) (domain.Blog, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs b JOIN users u ON u.id = b.created_by
		WHERE b.id = $1
	`
	return scanBlog(r.pool.QueryRow(ctx, query, id))
}

func (r *PgBlogRepository) Update(ctx context.Context, blog domain.Blog) error {
	const query = `
		UPDATE blogs
		SET title = $2, body = $3, cover_image_url = $4, cover_image_public_id = $5,
			updated_at = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		blog.ID,
		blog.Title,
		blog.Body,
		blog.CoverImageURL,
		blog.CoverImagePublicID,
		blog.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgBlogRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM blogs WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgBlogRepository) ListAll(ctx context.Context) ([]domain.Blog, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs b JOIN users u ON u.id = b.created_by
		ORDER BY b.created_at DESC
	`
	return r.queryBlogs(ctx, query)
}

func (r *PgBlogRepository) ListByUser(ctx context.Context, userID string) ([]domain.Blog, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs b JOIN users u ON u.id = b.created_by
		WHERE b.created_by = $1
		ORDER BY b.created_at DESC
	`
	return r.queryBlogs(ctx, query, userID)
}

func (r *PgBlogRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Blog, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs b JOIN users u ON u.id = b.created_by
		WHERE b.id = ANY($1)
		ORDER BY b.created_at DESC
	`
	return r.queryBlogs(ctx, query, ids)
}

func (r *PgBlogRepository) ListLikedBy(ctx context.Context, userID string) ([]domain.Blog, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.created_by
		JOIN blog_likes l ON l.blog_id = b.id
		WHERE l.user_id = $1
		ORDER BY b.created_at DESC
	`
	return r.queryBlogs(ctx, query, userID)
}

func (r *PgBlogRepository) SearchByTitle(ctx context.Context, search string, offset, limit int) ([]domain.Blog, int, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs b JOIN users u ON u.id = b.created_by
		WHERE b.title ILIKE '%' || $1 || '%'
		ORDER BY b.created_at DESC
		OFFSET $2 LIMIT $3
	`
	blogs, err := r.queryBlogs(ctx, query, search, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	const countQuery = `SELECT count(*) FROM blogs WHERE title ILIKE '%' || $1 || '%'`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, search).Scan(&total); err != nil {
		return nil, 0, err
	}
	return blogs, total, nil
}

func (r *PgBlogRepository) Like(ctx context.Context, blogID, userID string) error {
	const query = `
		INSERT INTO blog_likes (blog_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, blogID, userID)
	return err
}

func (r *PgBlogRepository) Unlike(ctx context.Context, blogID, userID string) error {
	const query = `DELETE FROM blog_likes WHERE blog_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, blogID, userID)
	return err
}

func (r *PgBlogRepository) HasLiked(ctx context.Context, blogID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM blog_likes WHERE blog_id = $1 AND user_id = $2)`
	var liked bool
	err := r.pool.QueryRow(ctx, query, blogID, userID).Scan(&liked)
	return liked, err
}

func (r *PgBlogRepository) LikeCount(ctx context.Context, blogID string) (int, error) {
	const query = `SELECT count(*) FROM blog_likes WHERE blog_id = $1`
	var count int
	err := r.pool.QueryRow(ctx, query, blogID).Scan(&count)
	return count, err
}

func (r *PgBlogRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM blogs WHERE created_by = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *PgBlogRepository) RemoveUserLikes(ctx context.Context, userID string) error {
	const query = `DELETE FROM blog_likes WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
