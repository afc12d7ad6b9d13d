package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/biamino/biamino-backend/internal/domain"
)

// Credential is one entry of the sign-in table. Passwords are compared as
// plaintext; Role is only used when seeding the matching user record.
type Credential struct {
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Role     domain.Role `yaml:"role"`
}

// Credentials maps login emails to their entry.
type Credentials struct {
	entries []Credential
	byEmail map[string]Credential
}

type credentialsFile struct {
	Credentials []Credential `yaml:"credentials"`
}

// DefaultCredentials returns the built-in accounts.
func DefaultCredentials() *Credentials {
	c, _ := NewCredentials([]Credential{
		{Email: "admin@biamino.com", Password: "admin123", Role: domain.RoleAdmin},
		{Email: "user@biamino.com", Password: "user123", Role: domain.RoleUser},
		{Email: "team@biamino.com", Password: "team123", Role: domain.RoleTeam},
	})
	return c
}

func NewCredentials(entries []Credential) (*Credentials, error) {
	c := &Credentials{byEmail: make(map[string]Credential, len(entries))}
	for _, e := range entries {
		if e.Email == "" {
			return nil, fmt.Errorf("credential without email")
		}
		if !e.Role.Valid() {
			return nil, fmt.Errorf("credential %s: invalid role %q", e.Email, e.Role)
		}
		if _, dup := c.byEmail[e.Email]; dup {
			return nil, fmt.Errorf("credential %s: duplicate email", e.Email)
		}
		c.byEmail[e.Email] = e
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// LoadCredentials reads a YAML table of the form
//
//	credentials:
//	  - email: admin@biamino.com
//	    password: admin123
//	    role: admin
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var f credentialsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return NewCredentials(f.Credentials)
}

// Match reports whether password is the plaintext password for email.
func (c *Credentials) Match(email, password string) bool {
	e, ok := c.byEmail[email]
	return ok && e.Password == password
}

// All returns the entries in file order.
func (c *Credentials) All() []Credential {
	return append([]Credential(nil), c.entries...)
}
