package auth

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password the login form accepts.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrUserExists         = errors.New("auth: user already exists")
)

// FieldError reports one invalid login field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateCredentials checks the shape of a login attempt. It returns nil when
// both fields are acceptable.
func ValidateCredentials(email, password string) []FieldError {
	var errs []FieldError
	switch {
	case email == "":
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	case !emailPattern.MatchString(email):
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email format"})
	}
	switch {
	case password == "":
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	case len(password) < MinPasswordLength:
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	return errs
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type account struct {
	user User
	hash []byte
}

// Directory is an in-memory user list keyed by lower-cased email.
type Directory struct {
	mu    sync.RWMutex
	users map[string]account
	cost  int
}

func NewDirectory() *Directory {
	return &Directory{users: map[string]account{}, cost: bcrypt.DefaultCost}
}

func (d *Directory) Add(u User, password string) (User, error) {
	if fe := ValidateCredentials(u.Email, password); len(fe) > 0 {
		return User{}, errors.New("auth: " + fe[0].Message)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return User{}, err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	key := strings.ToLower(u.Email)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[key]; ok {
		return User{}, ErrUserExists
	}
	d.users[key] = account{user: u, hash: hash}
	return u, nil
}

// Authenticate returns the user whose email and password match. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (d *Directory) Authenticate(email, password string) (User, error) {
	d.mu.RLock()
	acct, ok := d.users[strings.ToLower(strings.TrimSpace(email))]
	d.mu.RUnlock()
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return acct.user, nil
}

// Lookup finds a user by id, used when exchanging a refresh token.
func (d *Directory) Lookup(id string) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.users {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return User{}, false
}
