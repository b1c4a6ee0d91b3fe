package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
	"github.com/ardiansyahnr/event-ticketing/internal/utils"
)

// UserRepo provides data access to the users table, including the point
// balance used by the transaction flow and the referral linkage.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,points,referral_code,referred_by,is_active,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var referredBy sql.NullInt64
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Points, &u.ReferralCode, &referredBy, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if referredBy.Valid {
		rb := uint64(referredBy.Int64)
		u.ReferredBy = &rb
	}
	return u, nil
}

// Create inserts a user with a bcrypt-hashed password and a freshly
// generated referral code, returning the new ID. Duplicate emails map
// to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	code := utils.NewShortCode()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, referral_code) VALUES (?,?,?,?,?)",
		name, email, hash, role, code)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// FindByReferralCode resolves the owner of a referral code. Returns
// ErrNotFound when no user carries the code.
func (r *UserRepo) FindByReferralCode(ctx context.Context, code string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE referral_code=? LIMIT 1",
		strings.ToUpper(strings.TrimSpace(code))))
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// SetReferrer records who referred the given user. It only takes effect
// once; a user who already has a referrer keeps the original one.
func (r *UserRepo) SetReferrer(ctx context.Context, userID, referrerID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET referred_by=? WHERE id=? AND referred_by IS NULL",
		referrerID, userID)
	return err
}

// AddPoints credits points to a user's balance.
func (r *UserRepo) AddPoints(ctx context.Context, userID uint64, points int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET points = points + ? WHERE id=?", points, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeductPoints debits points conditionally; the balance can never go
// negative. Returns ErrInsufficientPoints when the balance is too low.
func (r *UserRepo) DeductPoints(ctx context.Context, userID uint64, points int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET points = points - ? WHERE id=? AND points >= ?",
		points, userID, points)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientPoints
	}
	return nil
}
