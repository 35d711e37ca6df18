package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"corpcab/internal/domain"
	redisstore "corpcab/internal/redis"
	"corpcab/internal/repository"
)

const (
	minPasswordLen = 8
	bcryptCost     = 10
)

// AuthService issues and validates session tokens. The ambient "current
// user" of the old client is replaced by an explicit session: initialized on
// sign-in, checked per request, torn down on sign-out via a revocation list.
type AuthService struct {
	userRepo repository.UserRepository
	sessions redisstore.SessionStoreInterface
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	sessions redisstore.SessionStoreInterface,
	secret string,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Session is an issued sign-in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	UserID string
	Role   domain.Role
}

// SignUpRequest contains the parameters for creating an account.
type SignUpRequest struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// SignUp creates a rider account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         domain.RoleRider,
		CreatedAt:    s.now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.issue(user)
}

// SignIn validates credentials and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// SignOut revokes the token for the remainder of its lifetime.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return ErrInvalidToken
	}

	jti, _ := claims["jti"].(string)
	exp, _ := claims["exp"].(float64)
	if jti == "" {
		return ErrInvalidToken
	}

	ttl := time.Unix(int64(exp), 0).Sub(s.now())
	if s.sessions != nil {
		return s.sessions.Revoke(ctx, jti, ttl)
	}
	return nil
}

// Authenticate resolves a bearer token to the caller's identity, rejecting
// expired, malformed and revoked tokens.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	jti, _ := claims["jti"].(string)
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	if s.sessions != nil && jti != "" {
		revoked, err := s.sessions.IsRevoked(ctx, jti)
		if err != nil {
			log.Printf("auth: revocation check failed for token %s: %v", jti, err)
			return nil, ErrInvalidToken
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	return &Identity{UserID: sub, Role: domain.Role(role)}, nil
}

// CurrentUser loads the full account for an authenticated caller.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	expiresAt := s.now().Add(s.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":  uuid.New().String(),
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  s.now().Unix(),
		"exp":  expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Session{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) parse(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	dot := strings.LastIndex(email, ".")
	return at > 0 && dot > at+1 && dot < len(email)-1
}
