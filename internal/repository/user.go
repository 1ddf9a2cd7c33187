package repository

import (
	"database/sql"
	"errors"

	"taskman/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns the generated id. The caller
// is responsible for hashing the password beforehand.
func (r *UserRepository) Create(email, passwordHash string) (int, error) {
	var id int
	err := r.db.QueryRow(
		"INSERT INTO users (email, password) VALUES ($1, $2) RETURNING id",
		email, passwordHash,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByEmail resolves a user from the email embedded in a verified
// token. Returns ErrUserNotFound when no such user exists.
func (r *UserRepository) GetByEmail(email string) (models.User, error) {
	var user models.User
	err := r.db.QueryRow(
		"SELECT id, email, created_at FROM users WHERE email = $1",
		email,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// GetCredentials returns the user and their stored password hash for
// login checks.
func (r *UserRepository) GetCredentials(email string) (models.User, string, error) {
	var user models.User
	var hash string
	err := r.db.QueryRow(
		"SELECT id, email, password, created_at FROM users WHERE email = $1",
		email,
	).Scan(&user.ID, &user.Email, &hash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", ErrUserNotFound
	}
	if err != nil {
		return models.User{}, "", err
	}
	return user, hash, nil
}
