package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/argon2"

	"github.com/inkwell/backend/internal/config"
	"github.com/inkwell/backend/internal/db"
	"github.com/inkwell/backend/internal/model"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 128

	// Argon2id cost parameters. Changing these invalidates no existing
	// verifier: the parameters are encoded per-hash in the PHC string.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

var (
	ErrInvalidName        = errors.New("invalid username")
	ErrWeakPassword       = errors.New("password too short")
	ErrMissingFields      = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSignupDisabled     = errors.New("registration disabled")
	ErrConflict           = errors.New("username already taken")
	ErrMisconfigured      = errors.New("auth config invalid")
)

// UserStore is the slice of the database the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
}

type AuthService struct {
	store       UserStore
	jwtSecret   []byte
	tokenTTL    time.Duration
	allowSignup bool
}

type authClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewAuthService validates the auth configuration up front so a missing
// signing secret kills the process at startup, not at the first request.
func NewAuthService(store UserStore, cfg config.AuthConfig) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	ttlSeconds, err := strconv.ParseInt(cfg.TokenTTLSeconds, 10, 64)
	if err != nil || ttlSeconds <= 0 {
		return nil, fmt.Errorf("%w: invalid TOKEN_TTL_SECONDS", ErrMisconfigured)
	}

	allowSignup, err := parseBool(cfg.AllowSignup, true)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ALLOW_SIGNUP", ErrMisconfigured)
	}

	return &AuthService{
		store:       store,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenTTL:    time.Duration(ttlSeconds) * time.Second,
		allowSignup: allowSignup,
	}, nil
}

func (s *AuthService) AllowSignup() bool {
	return s.allowSignup
}

// Register creates an account and logs it in. The signup flag is checked
// before any input validation so a disabled instance always answers 403.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.Account, string, int64, error) {
	if !s.allowSignup {
		return nil, "", 0, ErrSignupDisabled
	}

	if !usernamePattern.MatchString(username) {
		return nil, "", 0, ErrInvalidName
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, "", 0, ErrWeakPassword
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, "", 0, err
	}

	user, err := s.store.CreateUser(ctx, username, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, "", 0, ErrConflict
		}
		return nil, "", 0, err
	}

	return s.issueToken(user)
}

// Login verifies credentials. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.Account, string, int64, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, "", 0, ErrMissingFields
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, "", 0, ErrInvalidCredentials
		}
		return nil, "", 0, err
	}

	ok, err := verifyPassword(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, "", 0, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// GetAccount resolves a verified token subject against the store. A token
// whose account row no longer exists answers ErrInvalidCredentials, so
// stale tokens stop working once the account is gone.
func (s *AuthService) GetAccount(ctx context.Context, userID int64) (*model.Account, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &model.Account{ID: user.ID, Username: user.Username}, nil
}

// ParseAccessToken verifies the signature before trusting any claim and
// enforces expiry. All failures collapse into ErrInvalidCredentials.
func (s *AuthService) ParseAccessToken(tokenStr string) (*model.AuthUser, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredentials
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return &model.AuthUser{
		ID:       userID,
		Username: claims.Username,
	}, nil
}

func (s *AuthService) issueToken(user *model.User) (*model.Account, string, int64, error) {
	now := time.Now()
	claims := authClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", 0, err
	}

	account := &model.Account{ID: user.ID, Username: user.Username}
	return account, signed, int64(s.tokenTTL.Seconds()), nil
}

// hashPassword derives an Argon2id verifier and encodes it as a PHC string:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verifyPassword re-derives the key with the parameters stored in the
// verifier and compares in constant time.
func verifyPassword(encoded, password string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errors.New("malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, err
	}
	if version != argon2.Version {
		return false, errors.New("unsupported argon2 version")
	}

	var memory, timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return false, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, err
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
