package http

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"blogify/internal/domain"
	"blogify/internal/repository"
)

// stubUserRepo implementa lo justo para los tests de handlers; los
// métodos no sobreescritos del embed hacen panic si alguien los llama.
type stubUserRepo struct {
	repository.UserRepository
	mu    sync.Mutex
	users map[string]domain.User
}

func newStubUserRepo(seed ...domain.User) *stubUserRepo {
	s := &stubUserRepo{users: make(map[string]domain.User)}
	for _, u := range seed {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserRepo) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.FullName == user.FullName {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByFullName(_ context.Context, fullName string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.FullName == fullName {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

type stubBlogRepo struct {
	repository.BlogRepository
	blogs map[string]domain.Blog
}

func newStubBlogRepo(seed ...domain.Blog) *stubBlogRepo {
	s := &stubBlogRepo{blogs: make(map[string]domain.Blog)}
	for _, b := range seed {
		s.blogs[b.ID] = b
	}
	return s
}

func (s *stubBlogRepo) GetByID(_ context.Context, id string) (domain.Blog, error) {
	b, ok := s.blogs[id]
	if !ok {
		return domain.Blog{}, pgx.ErrNoRows
	}
	return b, nil
}

func (s *stubBlogRepo) ListByUser(_ context.Context, userID string) ([]domain.Blog, error) {
	var out []domain.Blog
	for _, b := range s.blogs {
		if b.CreatedBy == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type stubCommentRepo struct {
	repository.CommentRepository
	comments map[string]domain.Comment
}

func newStubCommentRepo(seed ...domain.Comment) *stubCommentRepo {
	s := &stubCommentRepo{comments: make(map[string]domain.Comment)}
	for _, c := range seed {
		s.comments[c.ID] = c
	}
	return s
}

func (s *stubCommentRepo) GetByID(_ context.Context, id string) (domain.Comment, error) {
	c, ok := s.comments[id]
	if !ok {
		return domain.Comment{}, pgx.ErrNoRows
	}
	return c, nil
}

// captureSender guarda el último código despachado por correo.
type captureSender struct {
	mu   sync.Mutex
	code string
	to   string
}

func (s *captureSender) SendOTP(_ context.Context, toEmail, code string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = toEmail
	s.code = code
	return nil
}

func (s *captureSender) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}
