package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	"github.com/oksasatya/go-ddd-auth/internal/domain/repository"
)

// DBTX is the subset of pgxpool.Pool (and pgx.Tx) the store needs.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Unique index names from db/migrations.
const (
	accountIDUniqueIndex = "users_account_id_lower_key"
	emailUniqueIndex     = "users_email_lower_key"
)

const pgUniqueViolation = "23505"

const userColumns = `id, account_id, email, name, password_hash, created_at, updated_at`

type UserStore struct {
	db DBTX
}

func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

// Save upserts u by id. A concurrent insert that wins the race on account id
// or email surfaces as the matching conflict error.
func (s *UserStore) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			updated_at = EXCLUDED.updated_at
		RETURNING `+userColumns,
		u.ID(), u.AccountID().String(), u.Email().String(), u.Name(), u.PasswordHash(), u.CreatedAt(), u.UpdatedAt(),
	)

	saved, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			switch pgErr.ConstraintName {
			case accountIDUniqueIndex:
				return nil, errs.ErrAccountIDAlreadyExists
			case emailUniqueIndex:
				return nil, errs.ErrEmailAlreadyExists
			}
		}
		return nil, oops.Code("PG_SAVE_USER").With("user_id", u.ID()).Wrap(err)
	}
	return saved, nil
}

func (s *UserStore) FindByAccountID(ctx context.Context, accountID string) (*entity.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(account_id) = LOWER($1)`, accountID)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *UserStore) findOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		if _, ok := errs.CodeOf(err); ok {
			// A stored row that no longer validates.
			return nil, oops.Code("PG_CORRUPT_USER").With("lookup", arg).Wrap(err)
		}
		return nil, oops.Code("PG_FIND_USER").With("lookup", arg).Wrap(err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		p         entity.ReconstituteUserParams
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&p.ID, &p.AccountID, &p.Email, &p.Name, &p.PasswordHash, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return entity.ReconstituteUser(p)
}

var _ repository.UserStore = (*UserStore)(nil)
