package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BradenHooton/realty/internal/database"
	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
)

const userColumns = `id, email, name, role, subscription_type, agency_id, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

var _ store.Users = (*UserRepository)(nil)

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Email, &user.Name, &user.Role,
		&user.SubscriptionType, &user.AgencyID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = models.RoleClient
	}
	if user.SubscriptionType == "" {
		user.SubscriptionType = models.DefaultTierName
	}

	query := `
		INSERT INTO users (id, email, name, role, subscription_type, agency_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	createdUser, err := scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.Role,
		user.SubscriptionType, user.AgencyID, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	return createdUser, nil
}

func (r *UserRepository) UpdateSubscription(ctx context.Context, id, subscriptionType string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}

	query := `
		UPDATE users SET subscription_type = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query, subscriptionType, id))
}

func (r *UserRepository) CountBySubscription(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT subscription_type, COUNT(*) FROM users GROUP BY subscription_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by subscription: %w", err)
	}

	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var tier string
		var count int64
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("failed to scan subscription count: %w", err)
		}
		out[tier] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription counts: %w", err)
	}

	return out, nil
}
