package valueobject

import (
	"errors"
	"regexp"

	"github.com/fixora/taskhub/domain/entity"
)

var (
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrMissingPassword = errors.New("password is required")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Credentials is a login attempt. The email is normalized the same way
// employee records store it, so lookups and throttle keys agree.
type Credentials struct {
	email    string
	password string
}

func NewCredentials(email, password string) (*Credentials, error) {
	c := &Credentials{email: entity.NormalizeEmail(email), password: password}
	switch {
	case !emailPattern.MatchString(c.email):
		return nil, ErrInvalidEmail
	case c.password == "":
		return nil, ErrMissingPassword
	}
	return c, nil
}

func (c *Credentials) Email() string    { return c.email }
func (c *Credentials) Password() string { return c.password }

// ThrottleKey names the failed-login counter for this account.
func (c *Credentials) ThrottleKey() string {
	return "login:user:" + c.email
}

// ClientThrottleKey names the failed-login counter for a client address.
func ClientThrottleKey(ip string) string {
	return "login:ip:" + ip
}
