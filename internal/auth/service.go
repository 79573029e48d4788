package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserService is the remote authentication backend. A failure carrying a payload for
// the user should be returned as *Errors.
type UserService interface {
	Login(ctx context.Context, credentials LoginCredentials) (User, error)
	Register(ctx context.Context, credentials RegisterCredentials) (User, error)
}

type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

type User struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Token    string  `json:"token"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

// TokenExpiry reads the exp claim of the user's token. The signature is not checked;
// the token is only held for the remote service.
func (u User) TokenExpiry() (time.Time, bool) {
	if u.Token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(u.Token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
