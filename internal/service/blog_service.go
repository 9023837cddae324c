package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"blogify/internal/domain"
	"blogify/internal/imagestore"
	"blogify/internal/repository"
)

// BlogService coordina blogs, comentarios, likes y sus notificaciones.
type BlogService struct {
	logger        *zap.Logger
	blogs         repository.BlogRepository
	comments      repository.CommentRepository
	notifications repository.NotificationRepository
	images        imagestore.Store
}

const coverImageFolder = "Blogify/Post"

// SearchPageSize es el tamaño de página fijo de la búsqueda por título.
const SearchPageSize = 10

func NewBlogService(
	logger *zap.Logger,
	blogs repository.BlogRepository,
	comments repository.CommentRepository,
	notifications repository.NotificationRepository,
	images imagestore.Store,
) *BlogService {
	return &BlogService{
		logger:        logger,
		blogs:         blogs,
		comments:      comments,
		notifications: notifications,
		images:        images,
	}
}

func (s *BlogService) Create(ctx context.Context, userID, title, body string, cover io.Reader) (domain.Blog, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return domain.Blog{}, ErrMissingFields
	}

	now := time.Now().UTC()
	blog := domain.Blog{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if cover != nil {
		upload, err := s.images.Upload(ctx, cover, coverImageFolder)
		if err != nil {
			return domain.Blog{}, err
		}
		blog.CoverImageURL = upload.URL
		blog.CoverImagePublicID = upload.PublicID
	}

	if err := s.blogs.Create(ctx, blog); err != nil {
		return domain.Blog{}, err
	}
	return blog, nil
}

func (s *BlogService) Get(ctx context.Context, id string) (domain.Blog, []domain.Comment, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Blog{}, nil, ErrBlogNotFound
		}
		return domain.Blog{}, nil, err
	}
	comments, err := s.comments.ListByBlog(ctx, id)
	if err != nil {
		return domain.Blog{}, nil, err
	}
	return blog, comments, nil
}

func (s *BlogService) List(ctx context.Context) ([]domain.Blog, error) {
	return s.blogs.ListAll(ctx)
}

// Search busca por título con paginación fija de 10 por página.
func (s *BlogService) Search(ctx context.Context, query string, page int) ([]domain.Blog, int, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * SearchPageSize
	blogs, total, err := s.blogs.SearchByTitle(ctx, query, offset, SearchPageSize)
	if err != nil {
		return nil, 0, err
	}
	totalPages := (total + SearchPageSize - 1) / SearchPageSize
	return blogs, totalPages, nil
}

func (s *BlogService) Update(ctx context.Context, id, title, body string, cover io.Reader) (domain.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Blog{}, ErrBlogNotFound
		}
		return domain.Blog{}, err
	}

	if title = strings.TrimSpace(title); title != "" {
		blog.Title = title
	}
	if body = strings.TrimSpace(body); body != "" {
		blog.Body = body
	}

	if cover != nil {
		upload, err := s.images.Upload(ctx, cover, coverImageFolder)
		if err != nil {
			return domain.Blog{}, err
		}
		if blog.CoverImagePublicID != "" {
			s.destroyImage(ctx, blog.CoverImagePublicID)
		}
		blog.CoverImageURL = upload.URL
		blog.CoverImagePublicID = upload.PublicID
	}

	blog.UpdatedAt = time.Now().UTC()
	if err := s.blogs.Update(ctx, blog); err != nil {
		return domain.Blog{}, err
	}
	return blog, nil
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBlogNotFound
		}
		return err
	}

	if blog.CoverImagePublicID != "" {
		s.destroyImage(ctx, blog.CoverImagePublicID)
	}
	if err := s.comments.DeleteByBlog(ctx, id); err != nil {
		return err
	}
	return s.blogs.Delete(ctx, id)
}

// ToggleLike alterna el like del usuario y notifica al dueño del blog.
func (s *BlogService) ToggleLike(ctx context.Context, blogID, userID string) (bool, int, error) {
	blog, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, 0, ErrBlogNotFound
		}
		return false, 0, err
	}

	liked, err := s.blogs.HasLiked(ctx, blogID, userID)
	if err != nil {
		return false, 0, err
	}

	if liked {
		err = s.blogs.Unlike(ctx, blogID, userID)
	} else {
		err = s.blogs.Like(ctx, blogID, userID)
	}
	if err != nil {
		return false, 0, err
	}

	if !liked && blog.CreatedBy != userID {
		s.notify(ctx, domain.Notification{
			ID:        uuid.NewString(),
			UserID:    blog.CreatedBy,
			Type:      domain.NotificationLike,
			BlogID:    blogID,
			FromUser:  userID,
			CreatedAt: time.Now().UTC(),
		})
	}

	count, err := s.blogs.LikeCount(ctx, blogID)
	if err != nil {
		return false, 0, err
	}
	return !liked, count, nil
}

func (s *BlogService) AddComment(ctx context.Context, blogID, userID, content, parentID string) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, ErrMissingFields
	}

	blog, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, ErrBlogNotFound
		}
		return domain.Comment{}, err
	}

	if parentID = strings.TrimSpace(parentID); parentID != "" {
		if _, err := s.comments.GetByID(ctx, parentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Comment{}, ErrParentNotFound
			}
			return domain.Comment{}, err
		}
	}

	now := time.Now().UTC()
	comment := domain.Comment{
		ID:            uuid.NewString(),
		Content:       content,
		BlogID:        blogID,
		CreatedBy:     userID,
		ParentComment: parentID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return domain.Comment{}, err
	}

	if blog.CreatedBy != userID {
		s.notify(ctx, domain.Notification{
			ID:        uuid.NewString(),
			UserID:    blog.CreatedBy,
			Type:      domain.NotificationComment,
			BlogID:    blogID,
			CommentID: comment.ID,
			FromUser:  userID,
			CreatedAt: now,
		})
	}
	return comment, nil
}

func (s *BlogService) GetComment(ctx context.Context, id string) (domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, ErrCommentNotFound
		}
		return domain.Comment{}, err
	}
	return comment, nil
}

func (s *BlogService) UpdateComment(ctx context.Context, id, content string) (domain.Comment, error) {
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return domain.Comment{}, err
	}
	comment.Content = strings.TrimSpace(content)
	comment.UpdatedAt = time.Now().UTC()
	if err := s.comments.Update(ctx, comment); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

func (s *BlogService) DeleteComment(ctx context.Context, id string) error {
	if _, err := s.GetComment(ctx, id); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

// notify es best-effort: una notificación perdida no corta la operación.
func (s *BlogService) notify(ctx context.Context, n domain.Notification) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.Create(ctx, n); err != nil && s.logger != nil {
		s.logger.Warn("create notification failed", zap.Error(err), zap.String("blog_id", n.BlogID))
	}
}

func (s *BlogService) destroyImage(ctx context.Context, publicID string) {
	if s.images == nil || publicID == "" {
		return
	}
	if err := s.images.Destroy(ctx, publicID); err != nil && s.logger != nil {
		s.logger.Warn("image destroy failed", zap.Error(err), zap.String("public_id", publicID))
	}
}
