package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `user_id, email, full_name, role, is_active, team_id, created_at, updated_at`

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (s *Store) CreateUser(ctx context.Context, input store.CreateUserInput) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return models.User{}, err
	}
	now := s.clock()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (user_id, email, full_name, password_hash, role, is_active, team_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+userColumns,
		uuid.NewString(), email, input.FullName, string(hash), input.Role, input.IsActive, nullIfEmpty(input.TeamID), now)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, store.ErrEmailTaken
		}
		if isForeignKeyViolation(err) {
			return models.User{}, store.ErrTeamNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var passwordHash string
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`, password_hash
		FROM users
		WHERE lower(email) = lower($1)
	`, strings.TrimSpace(email))
	var user models.User
	var teamIDNull sql.NullString
	if err := row.Scan(&user.UserID, &user.Email, &user.FullName, &user.Role, &user.IsActive, &teamIDNull,
		&user.CreatedAt, &user.UpdatedAt, &passwordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrInvalidCredentials
		}
		return models.User{}, err
	}
	user.TeamID = nullStringPtr(teamIDNull)

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return models.User{}, store.ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.User{}, store.ErrInactiveUser
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (models.User, error) {
	return getUser(ctx, s.pool, userID)
}

func (s *Store) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	skip, limit = normalizePage(skip, limit)
	return s.queryUsers(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at ASC
		OFFSET $1 LIMIT $2
	`, skip, limit)
}

func (s *Store) ListTeamMembers(ctx context.Context, teamID string) ([]models.User, error) {
	if err := ensureTeam(ctx, s.pool, teamID); err != nil {
		return nil, err
	}
	return s.queryUsers(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE team_id = $1 AND is_active
		ORDER BY full_name ASC
	`, teamID)
}

func (s *Store) UpdateUser(ctx context.Context, input store.UpdateUserInput) (models.User, error) {
	current, err := getUser(ctx, s.pool, input.UserID)
	if err != nil {
		return models.User{}, err
	}
	if input.FullName != nil {
		current.FullName = *input.FullName
	}
	if input.Role != nil {
		current.Role = *input.Role
	}
	if input.IsActive != nil {
		current.IsActive = *input.IsActive
	}
	if input.TeamID != nil {
		teamID := strings.TrimSpace(*input.TeamID)
		if teamID == "" {
			current.TeamID = nil
		} else {
			current.TeamID = &teamID
		}
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET full_name = $2, role = $3, is_active = $4, team_id = $5, updated_at = $6
		WHERE user_id = $1
		RETURNING `+userColumns,
		current.UserID, current.FullName, current.Role, current.IsActive, current.TeamID, s.clock())
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		if isForeignKeyViolation(err) {
			return models.User{}, store.ErrTeamNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrInvalidState
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func (s *Store) queryUsers(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func getUser(ctx context.Context, q queryRower, userID string) (models.User, error) {
	row := q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	var teamIDNull sql.NullString
	if err := row.Scan(&user.UserID, &user.Email, &user.FullName, &user.Role, &user.IsActive, &teamIDNull,
		&user.CreatedAt, &user.UpdatedAt); err != nil {
		return models.User{}, err
	}
	user.TeamID = nullStringPtr(teamIDNull)
	return user, nil
}
