package repository

import (
	"github.com/linguaflow/auth-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Session SessionRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Session: NewSessionRepository(db),
	}
}
