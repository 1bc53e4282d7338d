package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCode        = errors.New("invalid or expired code")
)

// OTPTTL is how long a one-time passcode stays valid.
const OTPTTL = 10 * time.Minute

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	SetRole(ctx context.Context, id string, role model.Role) error
	SetPassword(ctx context.Context, id, hash string) error
	CreateSession(ctx context.Context, s *model.Session) error
	SessionActive(ctx context.Context, id string) (bool, error)
	RevokeSession(ctx context.Context, id string) error
	SaveOTP(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	TakeOTP(ctx context.Context, email string) (string, error)
}

// Notifier delivers one-time passcodes.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LogNotifier writes passcodes to the log. It is meant for local use.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) SendOTP(_ context.Context, email, code string) error {
	n.Logger.Info("one-time passcode issued", zap.String("email", email), zap.String("code", code))
	return nil
}

type AuthEventType string

const (
	EventSignedUp  AuthEventType = "SIGNED_UP"
	EventSignedIn  AuthEventType = "SIGNED_IN"
	EventSignedOut AuthEventType = "SIGNED_OUT"
)

// AuthEvent reports a session change to subscribers.
type AuthEvent struct {
	Type    AuthEventType
	Session *model.Session
	At      time.Time
}

// Credentials is the body of sign-up and password sign-in.
type Credentials struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
}

// SignInResult is a bearer token and the session it stands for.
type SignInResult struct {
	Token   string         `json:"token"`
	Session *model.Session `json:"session"`
}

type AuthService struct {
	users    UserStore
	notifier Notifier
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	nextSub   int
	listeners map[int]func(AuthEvent)
}

func NewAuthService(users UserStore, notifier Notifier, secret string, ttl time.Duration, logger *zap.Logger) *AuthService {
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &AuthService{
		users:     users,
		notifier:  notifier,
		secret:    []byte(secret),
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
		listeners: map[int]func(AuthEvent){},
	}
}

// Subscribe registers fn for session changes. The returned func removes it.
func (s *AuthService) Subscribe(fn func(AuthEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *AuthService) emit(t AuthEventType, sess *model.Session) {
	s.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	ev := AuthEvent{Type: t, Session: sess, At: s.now()}
	for _, fn := range fns {
		fn(ev)
	}
}

func (s *AuthService) ready() error {
	if len(s.secret) == 0 {
		return fmt.Errorf("auth: signing secret not configured: %w", ErrUnavailable)
	}
	return nil
}

// SignUp registers a customer account.
func (s *AuthService) SignUp(ctx context.Context, c Credentials) (*model.User, error) {
	c.Email = normalizeEmail(c.Email)
	if err := check(c).orNil(); err != nil {
		return nil, err
	}
	u, err := s.createUser(ctx, c.Email, c.Password, model.RoleCustomer)
	if err != nil {
		return nil, err
	}
	s.emit(EventSignedUp, &model.Session{UserID: u.ID, Email: u.Email, Role: u.Role})
	return u, nil
}

func (s *AuthService) createUser(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	u := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      role,
		CreatedAt: s.now(),
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("AuthService.createUser hash: %w", err)
		}
		h := string(hash)
		u.PasswordHash = &h
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%s already registered: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("AuthService.createUser: %w", err)
	}
	return u, nil
}

// SignIn checks a password and opens a session.
func (s *AuthService) SignIn(ctx context.Context, c Credentials) (*SignInResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, normalizeEmail(c.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("AuthService.SignIn: %w", err)
	}
	if u.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(c.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, u)
}

// RequestOTP sends a fresh six-digit code to email, replacing any pending
// one.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := check(struct {
		Email string `json:"email" validate:"required,email,max=255"`
	}{email}).orNil(); err != nil {
		return err
	}
	code, err := otpCode()
	if err != nil {
		return fmt.Errorf("AuthService.RequestOTP: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("AuthService.RequestOTP hash: %w", err)
	}
	if err := s.users.SaveOTP(ctx, email, string(hash), s.now().Add(OTPTTL)); err != nil {
		return fmt.Errorf("AuthService.RequestOTP: %w", err)
	}
	if err := s.notifier.SendOTP(ctx, email, code); err != nil {
		return fmt.Errorf("AuthService.RequestOTP notify: %w", err)
	}
	return nil
}

// VerifyOTP consumes the pending code for email and opens a session. An
// unknown email becomes a new customer account.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*SignInResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	hash, err := s.users.TakeOTP(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("AuthService.VerifyOTP: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(code))) != nil {
		return nil, ErrInvalidCode
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		if u, err = s.createUser(ctx, email, "", model.RoleCustomer); err != nil {
			return nil, err
		}
		s.emit(EventSignedUp, &model.Session{UserID: u.ID, Email: u.Email, Role: u.Role})
	} else if err != nil {
		return nil, fmt.Errorf("AuthService.VerifyOTP: %w", err)
	}
	return s.openSession(ctx, u)
}

func (s *AuthService) openSession(ctx context.Context, u *model.User) (*SignInResult, error) {
	sess := &model.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		ExpiresAt: s.now().Add(s.ttl).Truncate(time.Second),
	}
	if err := s.users.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("AuthService.openSession: %w", err)
	}
	token, err := s.sign(sess)
	if err != nil {
		return nil, err
	}
	s.logger.Info("signed in", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	s.emit(EventSignedIn, sess)
	return &SignInResult{Token: token, Session: sess}, nil
}

// SignOut revokes the session so its token stops working.
func (s *AuthService) SignOut(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return ErrSessionRequired
	}
	if err := s.users.RevokeSession(ctx, sess.ID); err != nil {
		return fmt.Errorf("AuthService.SignOut: %w", err)
	}
	s.emit(EventSignedOut, sess)
	return nil
}

// CurrentUser loads the account behind sess. A deleted account reads as a
// missing session.
func (s *AuthService) CurrentUser(ctx context.Context, sess *model.Session) (*model.User, error) {
	if sess == nil {
		return nil, ErrSessionRequired
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionRequired
	}
	if err != nil {
		return nil, fmt.Errorf("AuthService.CurrentUser: %w", err)
	}
	return u, nil
}

func roleClaim(r model.Role) string {
	return strings.ToUpper(string(r))
}

func (s *AuthService) sign(sess *model.Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":   sess.UserID,
		"email": sess.Email,
		"roles": []string{roleClaim(sess.Role)},
		"sid":   sess.ID,
		"exp":   sess.ExpiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("AuthService.sign: %w", err)
	}
	return token, nil
}

// Verify parses a bearer token and checks that its session is still open.
func (s *AuthService) Verify(ctx context.Context, tokenStr string) (*model.Session, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sess := &model.Session{Role: model.RoleCustomer}
	sess.ID, _ = claims["sid"].(string)
	sess.UserID, _ = claims["sub"].(string)
	sess.Email, _ = claims["email"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	if hasRole(claims["roles"], roleClaim(model.RoleAdmin)) {
		sess.Role = model.RoleAdmin
	}
	if sess.ID == "" || sess.UserID == "" {
		return nil, ErrInvalidToken
	}

	active, err := s.users.SessionActive(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("AuthService.Verify: %w", err)
	}
	if !active {
		return nil, ErrInvalidToken
	}
	return sess, nil
}

func hasRole(raw interface{}, want string) bool {
	switch roles := raw.(type) {
	case []interface{}:
		for _, r := range roles {
			if s, ok := r.(string); ok && s == want {
				return true
			}
		}
	case []string:
		for _, s := range roles {
			if s == want {
				return true
			}
		}
	case string:
		return roles == want
	}
	return false
}

// EnsureAdmin creates an admin account, or promotes and re-keys an existing
// one.
func (s *AuthService) EnsureAdmin(ctx context.Context, c Credentials) (*model.User, error) {
	c.Email = normalizeEmail(c.Email)
	if err := check(c).orNil(); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, c.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return s.createUser(ctx, c.Email, c.Password, model.RoleAdmin)
	}
	if err != nil {
		return nil, fmt.Errorf("AuthService.EnsureAdmin: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("AuthService.EnsureAdmin hash: %w", err)
	}
	if err := s.users.SetPassword(ctx, u.ID, string(hash)); err != nil {
		return nil, fmt.Errorf("AuthService.EnsureAdmin: %w", err)
	}
	if err := s.users.SetRole(ctx, u.ID, model.RoleAdmin); err != nil {
		return nil, fmt.Errorf("AuthService.EnsureAdmin: %w", err)
	}
	u.Role = model.RoleAdmin
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func otpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
