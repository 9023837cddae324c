package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"blogify/internal/domain"
)

// NotificationRepository define el contrato de persistencia para notificaciones.
type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) error
	GetByID(ctx context.Context, id string) (domain.Notification, error)
	ListUnreadByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// PgNotificationRepository implementa NotificationRepository usando pgxpool.
type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

func (r *PgNotificationRepository) Create(ctx context.Context, n domain.Notification) error {
	const query = `
		INSERT INTO notifications (id, user_id, type, blog_id, comment_id, from_user, is_read, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.BlogID,
		n.CommentID,
		n.FromUser,
		n.IsRead,
		n.CreatedAt,
	)
	return err
}

func (r *PgNotificationRepository) GetByID(ctx context.Context, id string) (domain.Notification, error) {
	const query = `
		SELECT id, user_id, type, blog_id, COALESCE(comment_id, ''), from_user, is_read, created_at
		FROM notifications
		WHERE id = $1
	`
	var n domain.Notification
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.BlogID,
		&n.CommentID,
		&n.FromUser,
		&n.IsRead,
		&n.CreatedAt,
	)
	return n, err
}

func (r *PgNotificationRepository) ListUnreadByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	const query = `
		SELECT n.id, n.user_id, n.type, n.blog_id, COALESCE(n.comment_id, ''), n.from_user,
			n.is_read, n.created_at,
			u.full_name, u.profile_image_url,
			b.title, b.cover_image_url
		FROM notifications n
		JOIN users u ON u.id = n.from_user
		JOIN blogs b ON b.id = n.blog_id
		WHERE n.user_id = $1 AND n.is_read = FALSE
		ORDER BY n.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var (
			n          domain.Notification
			actorName  string
			actorImg   string
			blogTitle  string
			blogCover  string
		)
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.BlogID,
			&n.CommentID,
			&n.FromUser,
			&n.IsRead,
			&n.CreatedAt,
			&actorName,
			&actorImg,
			&blogTitle,
			&blogCover,
		)
		if err != nil {
			return nil, err
		}
		n.Actor = &domain.User{ID: n.FromUser, FullName: actorName, ProfileImageURL: actorImg}
		n.Blog = &domain.Blog{ID: n.BlogID, Title: blogTitle, CoverImageURL: blogCover}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *PgNotificationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notifications WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgNotificationRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM notifications WHERE user_id = $1 OR from_user = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
