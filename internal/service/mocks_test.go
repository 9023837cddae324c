package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"blogify/internal/domain"
	"blogify/internal/imagestore"
)

type mockUserRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]string
	byName  map[string]string
	saved   map[string]map[string]bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		byName:  make(map[string]string),
		saved:   make(map[string]map[string]bool),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[user.Email]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	if _, exists := m.byName[user.FullName]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user.ID
	m.byName[user.FullName] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) GetByFullName(ctx context.Context, fullName string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.byName[fullName]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) Update(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.byName, old.FullName)
	m.byName[user.FullName] = user.ID
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return nil
	}
	delete(m.byEmail, user.Email)
	delete(m.byName, user.FullName)
	delete(m.byID, id)
	return nil
}

func (m *mockUserRepo) ListAll(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []domain.User
	for _, u := range m.byID {
		users = append(users, u)
	}
	return users, nil
}

func (m *mockUserRepo) SaveBlog(_ context.Context, userID, blogID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved[userID] == nil {
		m.saved[userID] = make(map[string]bool)
	}
	m.saved[userID][blogID] = true
	return nil
}

func (m *mockUserRepo) UnsaveBlog(_ context.Context, userID, blogID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved[userID], blogID)
	return nil
}

func (m *mockUserRepo) IsBlogSaved(_ context.Context, userID, blogID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[userID][blogID], nil
}

func (m *mockUserRepo) SavedBlogIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.saved[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

type mockBlogRepo struct {
	mu    sync.Mutex
	blogs map[string]domain.Blog
	likes map[string]map[string]bool
}

func newMockBlogRepo() *mockBlogRepo {
	return &mockBlogRepo{
		blogs: make(map[string]domain.Blog),
		likes: make(map[string]map[string]bool),
	}
}

func (m *mockBlogRepo) Create(_ context.Context, blog domain.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blogs[blog.ID] = blog
	return nil
}

func (m *mockBlogRepo) GetByID(_ context.Context, id string) (domain.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blog, ok := m.blogs[id]
	if !ok {
		return domain.Blog{}, pgx.ErrNoRows
	}
	return blog, nil
}

func (m *mockBlogRepo) Update(_ context.Context, blog domain.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blogs[blog.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.blogs[blog.ID] = blog
	return nil
}

func (m *mockBlogRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blogs, id)
	return nil
}

func (m *mockBlogRepo) ListAll(_ context.Context) ([]domain.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var blogs []domain.Blog
	for _, b := range m.blogs {
		blogs = append(blogs, b)
	}
	return blogs, nil
}

func (m *mockBlogRepo) ListByUser(_ context.Context, userID string) ([]domain.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var blogs []domain.Blog
	for _, b := range m.blogs {
		if b.CreatedBy == userID {
			blogs = append(blogs, b)
		}
	}
	return blogs, nil
}

func (m *mockBlogRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var blogs []domain.Blog
	for _, id := range ids {
		if b, ok := m.blogs[id]; ok {
			blogs = append(blogs, b)
		}
	}
	return blogs, nil
}

func (m *mockBlogRepo) ListLikedBy(_ context.Context, userID string) ([]domain.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var blogs []domain.Blog
	for id, users := range m.likes {
		if users[userID] {
			blogs = append(blogs, m.blogs[id])
		}
	}
	return blogs, nil
}

func (m *mockBlogRepo) SearchByTitle(_ context.Context, _ string, _, _ int) ([]domain.Blog, int, error) {
	return nil, 0, nil
}

func (m *mockBlogRepo) Like(_ context.Context, blogID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.likes[blogID] == nil {
		m.likes[blogID] = make(map[string]bool)
	}
	m.likes[blogID][userID] = true
	return nil
}

func (m *mockBlogRepo) Unlike(_ context.Context, blogID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.likes[blogID], userID)
	return nil
}

func (m *mockBlogRepo) HasLiked(_ context.Context, blogID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.likes[blogID][userID], nil
}

func (m *mockBlogRepo) LikeCount(_ context.Context, blogID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.likes[blogID]), nil
}

func (m *mockBlogRepo) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, b := range m.blogs {
		if b.CreatedBy == userID {
			delete(m.blogs, id)
		}
	}
	return nil
}

func (m *mockBlogRepo) RemoveUserLikes(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, users := range m.likes {
		delete(users, userID)
	}
	return nil
}

type mockCommentRepo struct {
	mu       sync.Mutex
	comments map[string]domain.Comment
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[string]domain.Comment)}
}

func (m *mockCommentRepo) Create(_ context.Context, c domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ID] = c
	return nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id string) (domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return domain.Comment{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCommentRepo) Update(_ context.Context, c domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.comments[c.ID] = c
	return nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.comments, id)
	return nil
}

func (m *mockCommentRepo) ListByBlog(_ context.Context, blogID string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Comment
	for _, c := range m.comments {
		if c.BlogID == blogID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentRepo) ListByUser(_ context.Context, userID string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Comment
	for _, c := range m.comments {
		if c.CreatedBy == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentRepo) ListAll(_ context.Context) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Comment
	for _, c := range m.comments {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCommentRepo) DeleteByBlog(_ context.Context, blogID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.comments {
		if c.BlogID == blogID {
			delete(m.comments, id)
		}
	}
	return nil
}

func (m *mockCommentRepo) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.comments {
		if c.CreatedBy == userID {
			delete(m.comments, id)
		}
	}
	return nil
}

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]domain.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[string]domain.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.ID] = n
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.Notification{}, pgx.ErrNoRows
	}
	return n, nil
}

func (m *mockNotificationRepo) ListUnreadByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notifications, id)
	return nil
}

func (m *mockNotificationRepo) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.notifications {
		if n.UserID == userID || n.FromUser == userID {
			delete(m.notifications, id)
		}
	}
	return nil
}

// recordingSender captura los códigos enviados por correo.
type recordingSender struct {
	mu    sync.Mutex
	codes []string
	fail  bool
}

func (s *recordingSender) SendOTP(_ context.Context, _ string, code string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errSendFailed
	}
	s.codes = append(s.codes, code)
	return nil
}

func (s *recordingSender) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return ""
	}
	return s.codes[len(s.codes)-1]
}

var errSendFailed = &smtpError{}

type smtpError struct{}

func (e *smtpError) Error() string { return "smtp unavailable" }

// noopImages cuenta uploads y destroys sin tocar nada remoto.
type noopImages struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
}

func (s *noopImages) Upload(_ context.Context, _ io.Reader, _ string) (imagestore.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	return imagestore.Upload{URL: "https://img.example/up", PublicID: "pub-id"}, nil
}

func (s *noopImages) Destroy(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

// allowAll nunca limita.
type allowAll struct{}

func (allowAll) Allow(string) bool { return true }
