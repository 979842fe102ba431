package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/suraksha/efir-anchor"
	"github.com/suraksha/efir-anchor/internal/config"
	"github.com/suraksha/efir-anchor/internal/domain"
)

var tracer = otel.Tracer("auth")

// OTPStore holds pending one-time codes with an explicit expiry.
type OTPStore interface {
	Set(ctx context.Context, badgeID, otpHash string, ttl time.Duration) error
	Get(ctx context.Context, badgeID string) (string, error)
	Delete(ctx context.Context, badgeID string) error
}

// Notifier delivers a one-time code over the email side channel.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
}

type AuthService struct {
	config config.Auth
	otps   OTPStore
	notify Notifier
}

func NewAuthService(config config.Auth, otps OTPStore, notify Notifier) *AuthService {
	return &AuthService{
		config: config,
		otps:   otps,
		notify: notify,
	}
}

type sessionClaims struct {
	BadgeID string `json:"badgeId"`
	Level   string `json:"level"`
	jwt.RegisteredClaims
}

type Session struct {
	Token   string
	Level   efir.AccessLevel
	BadgeID string
}

// Login verifies the low-privilege credential pair and issues a LOW session.
func (s *AuthService) Login(ctx context.Context, badgeID, password string) (*Session, error) {
	_, span := tracer.Start(ctx, "Auth.Service.Login")
	defer span.End()

	if badgeID != s.config.LowBadgeID || !checkPassword(s.config.LowPasswordHash, password) {
		span.RecordError(domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueSession(badgeID, efir.AccessLow)
}

// RequestOTP verifies the high-privilege credential pair, stores a fresh
// one-time code under a TTL and sends it over the side channel. Returns the
// masked destination address for display.
func (s *AuthService) RequestOTP(ctx context.Context, badgeID, password string) (string, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.RequestOTP")
	defer span.End()

	if badgeID != s.config.HighBadgeID || !checkPassword(s.config.HighPasswordHash, password) {
		span.RecordError(domain.ErrInvalidCredentials)
		return "", domain.ErrInvalidCredentials
	}

	code, err := generateOTP()
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "generate otp")
	}

	ttl := time.Duration(s.config.OTPTTLSeconds) * time.Second
	if err := s.otps.Set(ctx, badgeID, hashOTP(code), ttl); err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "store otp")
	}

	if err := s.notify.SendOTP(ctx, s.config.AdminEmail, code); err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "send otp")
	}

	return maskEmail(s.config.AdminEmail), nil
}

// VerifyOTP checks a submitted code against the stored one. A correct code is
// consumed immediately (single use); a wrong code leaves the stored one valid
// until its TTL runs out.
func (s *AuthService) VerifyOTP(ctx context.Context, badgeID, otp string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.VerifyOTP")
	defer span.End()

	stored, err := s.otps.Get(ctx, badgeID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "load otp")
	}
	if stored == "" {
		span.RecordError(domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	submitted := hashOTP(otp)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		span.RecordError(domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.otps.Delete(ctx, badgeID); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "consume otp")
	}

	return s.issueSession(badgeID, efir.AccessHigh)
}

// ParseToken validates a session token and returns the badge id and access
// level it carries. Invalid or expired tokens degrade to unauthenticated.
func (s *AuthService) ParseToken(token string) (string, efir.AccessLevel, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", efir.AccessUnauthenticated, domain.ErrInvalidCredentials
	}
	return claims.BadgeID, efir.ParseAccessLevel(claims.Level), nil
}

func (s *AuthService) issueSession(badgeID string, level efir.AccessLevel) (*Session, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		BadgeID: badgeID,
		Level:   level.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   badgeID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.TokenTTLMinutes) * time.Minute)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, errors.Wrap(err, "sign session token")
	}

	return &Session{Token: token, Level: level, BadgeID: badgeID}, nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 2 {
		return email
	}
	return email[:2] + strings.Repeat("*", at-2) + email[at:]
}
