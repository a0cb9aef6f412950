package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portsrepo "github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	"github.com/fintrove/family_finance_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const goalColumns = `goal_id, owner_user_id, family_id, name, target_amount, current_amount, priority, status, target_date, created_at, created_by, last_updated_at, last_updated_by`

const contributionColumns = `contribution_id, goal_id, user_id, transaction_id, amount, notes, contributed_at`

type PgxGoalRepository struct {
	BaseRepository
}

// newPgxGoalRepository creates a new repository for goal data.
func newPgxGoalRepository(pool *pgxpool.Pool) portsrepo.GoalRepository {
	return &PgxGoalRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.GoalRepository = (*PgxGoalRepository)(nil)

func toDomainGoal(m models.Goal) domain.Goal {
	return domain.Goal{
		GoalID:        m.GoalID,
		OwnerUserID:   m.OwnerUserID,
		FamilyID:      m.FamilyID,
		Name:          m.Name,
		TargetAmount:  m.TargetAmount,
		CurrentAmount: m.CurrentAmount,
		Priority:      domain.GoalPriority(m.Priority),
		Status:        domain.GoalStatus(m.Status),
		TargetDate:    m.TargetDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanGoal(row pgx.Row) (models.Goal, error) {
	var m models.Goal
	err := row.Scan(
		&m.GoalID,
		&m.OwnerUserID,
		&m.FamilyID,
		&m.Name,
		&m.TargetAmount,
		&m.CurrentAmount,
		&m.Priority,
		&m.Status,
		&m.TargetDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanContribution(row pgx.Row) (models.GoalContribution, error) {
	var m models.GoalContribution
	err := row.Scan(
		&m.ContributionID,
		&m.GoalID,
		&m.UserID,
		&m.TransactionID,
		&m.Amount,
		&m.Notes,
		&m.ContributedAt,
	)
	return m, err
}

func toDomainContribution(m models.GoalContribution) domain.GoalContribution {
	return domain.GoalContribution{
		ContributionID: m.ContributionID,
		GoalID:         m.GoalID,
		UserID:         m.UserID,
		TransactionID:  m.TransactionID,
		Amount:         m.Amount,
		Notes:          m.Notes,
		ContributedAt:  m.ContributedAt,
	}
}

// SaveGoal inserts a new goal.
func (r *PgxGoalRepository) SaveGoal(ctx context.Context, goal domain.Goal) error {
	query := `
		INSERT INTO goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		goal.GoalID, goal.OwnerUserID, goal.FamilyID, goal.Name,
		goal.TargetAmount, goal.CurrentAmount, goal.Priority, goal.Status, goal.TargetDate,
		goal.CreatedAt, goal.CreatedBy, goal.LastUpdatedAt, goal.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: goal with ID %s already exists", apperrors.ErrDuplicate, goal.GoalID)
		}
		return fmt.Errorf("failed to save goal %s: %w", goal.GoalID, err)
	}
	return nil
}

// FindGoalByID retrieves a goal by its ID.
func (r *PgxGoalRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE goal_id = $1;`
	m, err := scanGoal(r.Pool.QueryRow(ctx, query, goalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find goal by ID %s: %w", goalID, err)
	}
	d := toDomainGoal(m)
	return &d, nil
}

// ListGoalsByOwner lists a user's personal goals by priority then name.
func (r *PgxGoalRepository) ListGoalsByOwner(ctx context.Context, ownerUserID string) ([]domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE owner_user_id = $1 AND family_id IS NULL
		ORDER BY priority, name;
	`
	return r.queryGoals(ctx, query, ownerUserID)
}

// ListGoalsByFamily lists a family's shared goals by priority then name.
func (r *PgxGoalRepository) ListGoalsByFamily(ctx context.Context, familyID string) ([]domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE family_id = $1
		ORDER BY priority, name;
	`
	return r.queryGoals(ctx, query, familyID)
}

func (r *PgxGoalRepository) queryGoals(ctx context.Context, query string, args ...any) ([]domain.Goal, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	goals := []domain.Goal{}
	for rows.Next() {
		m, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal row: %w", err)
		}
		goals = append(goals, toDomainGoal(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goal rows: %w", err)
	}
	return goals, nil
}

// UpdateGoal persists target, priority, status and audit changes. Progress is
// never written here.
func (r *PgxGoalRepository) UpdateGoal(ctx context.Context, goal domain.Goal) error {
	query := `
		UPDATE goals
		SET name = $2, target_amount = $3, priority = $4, status = $5, target_date = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE goal_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		goal.GoalID, goal.Name, goal.TargetAmount, goal.Priority, goal.Status, goal.TargetDate,
		goal.LastUpdatedAt, goal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal %s: %w", goal.GoalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListContributions returns all contributions to a goal, newest first.
func (r *PgxGoalRepository) ListContributions(ctx context.Context, goalID string) ([]domain.GoalContribution, error) {
	query := `
		SELECT ` + contributionColumns + `
		FROM goal_contributions
		WHERE goal_id = $1
		ORDER BY contributed_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions for goal %s: %w", goalID, err)
	}
	defer rows.Close()

	contributions := []domain.GoalContribution{}
	for rows.Next() {
		m, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution row: %w", err)
		}
		contributions = append(contributions, toDomainContribution(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contribution rows: %w", err)
	}
	return contributions, nil
}

// SumContributions recomputes goal progress from its contribution rows.
func (r *PgxGoalRepository) SumContributions(ctx context.Context, goalID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM goal_contributions WHERE goal_id = $1;`
	if err := r.Pool.QueryRow(ctx, query, goalID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum contributions for goal %s: %w", goalID, err)
	}
	return sum, nil
}

// SetProgress overwrites current_amount and status. Reconciliation only.
func (r *PgxGoalRepository) SetProgress(ctx context.Context, goalID string, current decimal.Decimal, status domain.GoalStatus, userID string, now time.Time) error {
	query := `
		UPDATE goals
		SET current_amount = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE goal_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, goalID, current, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set progress for goal %s: %w", goalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ApplyProgressDeltaInTx locks the goal row, applies the delta and returns
// the updated goal so the caller can re-derive its status.
func (r *PgxGoalRepository) ApplyProgressDeltaInTx(ctx context.Context, tx pgx.Tx, goalID string, delta decimal.Decimal, userID string, now time.Time) (*domain.Goal, error) {
	query := `
		UPDATE goals
		SET current_amount = current_amount + $2, last_updated_at = $3, last_updated_by = $4
		WHERE goal_id = $1
		RETURNING ` + goalColumns + `;
	`
	m, err := scanGoal(tx.QueryRow(ctx, query, goalID, delta, now, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to apply progress delta to goal %s: %w", goalID, err)
	}
	d := toDomainGoal(m)
	return &d, nil
}

// InsertContributionInTx records one contribution inside an existing
// transaction.
func (r *PgxGoalRepository) InsertContributionInTx(ctx context.Context, tx pgx.Tx, contribution domain.GoalContribution) error {
	query := `
		INSERT INTO goal_contributions (` + contributionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query,
		contribution.ContributionID, contribution.GoalID, contribution.UserID,
		contribution.TransactionID, contribution.Amount, contribution.Notes, contribution.ContributedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contribution %s: %w", contribution.ContributionID, err)
	}
	return nil
}

// AdjustContributionByTxnInTx moves the contribution linked to an edited
// transaction by the given delta.
func (r *PgxGoalRepository) AdjustContributionByTxnInTx(ctx context.Context, tx pgx.Tx, transactionID string, delta decimal.Decimal) error {
	query := `UPDATE goal_contributions SET amount = amount + $2 WHERE transaction_id = $1;`
	tag, err := tx.Exec(ctx, query, transactionID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust contribution for transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RemoveContributionByTxnInTx deletes the contribution linked to a deleted
// transaction.
func (r *PgxGoalRepository) RemoveContributionByTxnInTx(ctx context.Context, tx pgx.Tx, transactionID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM goal_contributions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to remove contribution for transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateGoalStatusInTx rewrites the goal's lifecycle state inside an existing
// transaction.
func (r *PgxGoalRepository) UpdateGoalStatusInTx(ctx context.Context, tx pgx.Tx, goalID string, status domain.GoalStatus, userID string, now time.Time) error {
	query := `
		UPDATE goals
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE goal_id = $1;
	`
	tag, err := tx.Exec(ctx, query, goalID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status for goal %s: %w", goalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
