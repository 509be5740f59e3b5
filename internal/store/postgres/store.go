package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/access"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
	defaultSweepSize = 100
)

type Store struct {
	pool       *pgxpool.Pool
	bcryptCost int
	now        func() time.Time
}

type Options struct {
	BcryptCost int
	Clock      func() time.Time
}

func NewStore(pool *pgxpool.Pool, options Options) *Store {
	cost := options.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{pool: pool, bcryptCost: cost, now: clock}
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

const complaintColumns = `
	complaint_id, complaint_number, product, subproduct, issue, subissue, description,
	severity, status, customer_id, assigned_team_id, assigned_to_id, sla_hours, sla_breach,
	resolution_time, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scopeConditions renders scope as SQL predicates numbered after the
// existing args.
func scopeConditions(scope access.Scope, args []interface{}) ([]string, []interface{}) {
	if scope.None {
		return []string{"FALSE"}, args
	}
	var conditions []string
	if scope.CustomerID != "" {
		args = append(args, scope.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if scope.TeamOrAssignee {
		args = append(args, scope.AssignedToID)
		assignee := fmt.Sprintf("assigned_to_id = $%d", len(args))
		if len(scope.TeamIDs) == 0 {
			return append(conditions, assignee), args
		}
		args = append(args, scope.TeamIDs)
		conditions = append(conditions, fmt.Sprintf("(assigned_team_id = ANY($%d::uuid[]) OR %s)", len(args), assignee))
		return conditions, args
	}
	if scope.AssignedToID != "" {
		args = append(args, scope.AssignedToID)
		conditions = append(conditions, fmt.Sprintf("assigned_to_id = $%d", len(args)))
	}
	if len(scope.TeamIDs) > 0 {
		args = append(args, scope.TeamIDs)
		conditions = append(conditions, fmt.Sprintf("assigned_team_id = ANY($%d::uuid[])", len(args)))
	}
	return conditions, args
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return skip, limit
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func nullIfEmpty(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}
