package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"blogify/internal/domain"
	"blogify/internal/email"
	"blogify/internal/imagestore"
	"blogify/internal/otp"
	"blogify/internal/repository"
	"blogify/internal/token"
)

// AccountService coordina signup con OTP, login y ciclo de vida de cuentas.
type AccountService struct {
	logger        *zap.Logger
	users         repository.UserRepository
	blogs         repository.BlogRepository
	comments      repository.CommentRepository
	notifications repository.NotificationRepository
	ledger        otp.Ledger
	emailSender   email.Sender
	images        imagestore.Store
	otpLimiter    OTPRateLimiter
}

// OTPTTL es la validez de un código de verificación.
const OTPTTL = 2 * time.Minute

const profileImageFolder = "Blogify/Profile"

func NewAccountService(
	logger *zap.Logger,
	users repository.UserRepository,
	blogs repository.BlogRepository,
	comments repository.CommentRepository,
	notifications repository.NotificationRepository,
	ledger otp.Ledger,
	emailSender email.Sender,
	images imagestore.Store,
	otpLimiter OTPRateLimiter,
) *AccountService {
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(10*time.Minute, 3)
	}
	return &AccountService{
		logger:        logger,
		users:         users,
		blogs:         blogs,
		comments:      comments,
		notifications: notifications,
		ledger:        ledger,
		emailSender:   emailSender,
		images:        images,
		otpLimiter:    otpLimiter,
	}
}

// Signup inicia la verificación por OTP. No crea el usuario todavía:
// deja un PendingSignup en el ledger y manda el código por correo.
func (s *AccountService) Signup(ctx context.Context, fullName, emailAddr, password string) error {
	fullName = strings.TrimSpace(fullName)
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if fullName == "" || emailAddr == "" || password == "" {
		return ErrMissingFields
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if _, err := s.users.GetByFullName(ctx, fullName); err == nil {
		return ErrNameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	return s.startPendingSignup(ctx, fullName, emailAddr, password)
}

// ResendOTP reemplaza el registro pendiente y reenvia el código.
// A diferencia de Signup no revalida unicidad: el índice único de la
// base corta igual cualquier carrera al verificar.
func (s *AccountService) ResendOTP(ctx context.Context, fullName, emailAddr, password string) error {
	fullName = strings.TrimSpace(fullName)
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if fullName == "" || emailAddr == "" || password == "" {
		return ErrMissingFields
	}
	return s.startPendingSignup(ctx, fullName, emailAddr, password)
}

func (s *AccountService) startPendingSignup(ctx context.Context, fullName, emailAddr, password string) error {
	if s.otpLimiter != nil && !s.otpLimiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	// El password candidato se guarda ya con bcrypt, nunca en claro.
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	code, err := generateOTPCode()
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(OTPTTL)

	rec := otp.PendingSignup{
		Email:        emailAddr,
		FullName:     fullName,
		PasswordHash: string(passwordHash),
		OTPHash:      token.HashSecret(code),
		ExpiresAt:    expiresAt,
	}
	// Put reemplaza cualquier registro pendiente: un solo código vivo por email.
	if err := s.ledger.Put(ctx, rec); err != nil {
		return err
	}

	if s.emailSender == nil {
		return ErrMailSend
	}
	if err := s.emailSender.SendOTP(ctx, emailAddr, code, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send otp failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrMailSend
	}
	return nil
}

// VerifyOTP consume el código: crea el usuario verificado y borra el
// registro pendiente. Un código vencido purga el registro al tocarlo.
func (s *AccountService) VerifyOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}

	rec, err := s.ledger.Get(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, otp.ErrNotFound) {
			return domain.User{}, ErrOTPInvalid
		}
		return domain.User{}, err
	}
	if !token.VerifyDigest(code, rec.OTPHash) {
		return domain.User{}, ErrOTPInvalid
	}
	if time.Now().UTC().After(rec.ExpiresAt) {
		_ = s.ledger.Delete(ctx, emailAddr)
		return domain.User{}, ErrOTPExpired
	}

	user := domain.User{
		ID:              uuid.NewString(),
		FullName:        rec.FullName,
		Email:           rec.Email,
		PasswordHash:    rec.PasswordHash,
		Role:            domain.RoleUser,
		IsEmailVerified: true,
		ProfileImageURL: domain.DefaultProfileImage,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	if err := s.ledger.Delete(ctx, emailAddr); err != nil && s.logger != nil {
		s.logger.Warn("delete pending signup failed", zap.Error(err), zap.String("email", emailAddr))
	}
	return user, nil
}

// Login autentica con email y password contra el hash almacenado.
func (s *AccountService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if !user.IsEmailVerified {
		return domain.User{}, ErrEmailNotVerified
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GoogleLogin crea la cuenta pre-verificada si no existe. Un email ya
// registrado con password local inicia sesión en esa misma cuenta.
func (s *AccountService) GoogleLogin(ctx context.Context, name, emailAddr string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	// Placeholder aleatorio: la cuenta federada no tiene password usable.
	placeholder := make([]byte, 16)
	if _, err := rand.Read(placeholder); err != nil {
		return domain.User{}, err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(placeholder)), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user = domain.User{
		ID:              uuid.NewString(),
		FullName:        strings.TrimSpace(name),
		Email:           emailAddr,
		PasswordHash:    string(passwordHash),
		Role:            domain.RoleUser,
		IsEmailVerified: true,
		ProfileImageURL: domain.DefaultProfileImage,
		AuthProvider:    "google",
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.User{}, ErrNameTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

// PublicProfile devuelve un usuario por su handle y sus blogs.
func (s *AccountService) PublicProfile(ctx context.Context, fullName string) (domain.User, []domain.Blog, error) {
	user, err := s.users.GetByFullName(ctx, strings.TrimSpace(fullName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, nil, ErrUserNotFound
		}
		return domain.User{}, nil, err
	}
	blogs, err := s.blogs.ListByUser(ctx, user.ID)
	if err != nil {
		return domain.User{}, nil, err
	}
	return user, blogs, nil
}

// ProfileData agrupa todo lo que ve el dueño de la cuenta.
type ProfileData struct {
	User       domain.User      `json:"user"`
	Blogs      []domain.Blog    `json:"blogs"`
	Comments   []domain.Comment `json:"comments"`
	LikedBlogs []domain.Blog    `json:"liked_blogs"`
	SavedBlogs []domain.Blog    `json:"saved_blogs"`
}

func (s *AccountService) Profile(ctx context.Context, userID string) (ProfileData, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileData{}, ErrUserNotFound
		}
		return ProfileData{}, err
	}

	blogs, err := s.blogs.ListByUser(ctx, userID)
	if err != nil {
		return ProfileData{}, err
	}
	comments, err := s.comments.ListByUser(ctx, userID)
	if err != nil {
		return ProfileData{}, err
	}
	liked, err := s.blogs.ListLikedBy(ctx, userID)
	if err != nil {
		return ProfileData{}, err
	}
	savedIDs, err := s.users.SavedBlogIDs(ctx, userID)
	if err != nil {
		return ProfileData{}, err
	}
	saved, err := s.blogs.ListByIDs(ctx, savedIDs)
	if err != nil {
		return ProfileData{}, err
	}

	return ProfileData{
		User:       user,
		Blogs:      blogs,
		Comments:   comments,
		LikedBlogs: liked,
		SavedBlogs: saved,
	}, nil
}

// UpdateProfileInput agrupa los cambios de perfil; campos vacíos no tocan nada.
type UpdateProfileInput struct {
	FullName    string
	Password    string
	RemoveImage bool
	Image       io.Reader
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if input.RemoveImage && user.ProfileImageURL != domain.DefaultProfileImage {
		s.destroyImage(ctx, user.ProfileImagePublicID)
		user.ProfileImageURL = domain.DefaultProfileImage
		user.ProfileImagePublicID = ""
	} else if input.Image != nil {
		upload, err := s.images.Upload(ctx, input.Image, profileImageFolder)
		if err != nil {
			return err
		}
		if user.ProfileImagePublicID != "" {
			s.destroyImage(ctx, user.ProfileImagePublicID)
		}
		user.ProfileImageURL = upload.URL
		user.ProfileImagePublicID = upload.PublicID
	}

	if fullName := strings.TrimSpace(input.FullName); fullName != "" && fullName != user.FullName {
		existing, err := s.users.GetByFullName(ctx, fullName)
		if err == nil && existing.ID != userID {
			return ErrNameTaken
		}
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		user.FullName = fullName
	}

	if password := strings.TrimSpace(input.Password); len(password) >= 6 {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hash)
	}

	return s.users.Update(ctx, user)
}

// DeleteAccount borra la cuenta y cascadea su contenido. Las imágenes
// remotas se destruyen best-effort: un fallo se loguea y no corta.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if user.ProfileImagePublicID != "" {
		s.destroyImage(ctx, user.ProfileImagePublicID)
	}

	blogs, err := s.blogs.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, blog := range blogs {
		if blog.CoverImagePublicID != "" {
			s.destroyImage(ctx, blog.CoverImagePublicID)
		}
		if err := s.comments.DeleteByBlog(ctx, blog.ID); err != nil {
			return err
		}
	}

	if err := s.comments.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.blogs.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.blogs.RemoveUserLikes(ctx, userID); err != nil {
		return err
	}
	if err := s.notifications.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}

// ToggleSaveBlog agrega o quita un blog de la lista de guardados.
func (s *AccountService) ToggleSaveBlog(ctx context.Context, userID, blogID string) (bool, error) {
	if _, err := s.blogs.GetByID(ctx, blogID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrBlogNotFound
		}
		return false, err
	}

	saved, err := s.users.IsBlogSaved(ctx, userID, blogID)
	if err != nil {
		return false, err
	}
	if saved {
		return false, s.users.UnsaveBlog(ctx, userID, blogID)
	}
	return true, s.users.SaveBlog(ctx, userID, blogID)
}

func (s *AccountService) destroyImage(ctx context.Context, publicID string) {
	if s.images == nil || publicID == "" {
		return
	}
	if err := s.images.Destroy(ctx, publicID); err != nil && s.logger != nil {
		s.logger.Warn("image destroy failed", zap.Error(err), zap.String("public_id", publicID))
	}
}

// generateOTPCode produce un código de 6 dígitos uniforme, con ceros a
// la izquierda preservados.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
