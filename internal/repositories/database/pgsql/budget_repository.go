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

const budgetColumns = `budget_id, owner_user_id, family_id, category_id, amount, spent, period, start_date, end_date, rollover_enabled, status, created_at, created_by, last_updated_at, last_updated_by`

const alertColumns = `alert_id, budget_id, threshold, period_start, triggered_at, acknowledged_at`

type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for budget data.
func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepository {
	return &PgxBudgetRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepository = (*PgxBudgetRepository)(nil)

func toDomainBudget(m models.Budget) domain.Budget {
	return domain.Budget{
		BudgetID:        m.BudgetID,
		OwnerUserID:     m.OwnerUserID,
		FamilyID:        m.FamilyID,
		CategoryID:      m.CategoryID,
		Amount:          m.Amount,
		Spent:           m.Spent,
		Period:          domain.BudgetPeriod(m.Period),
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		RolloverEnabled: m.RolloverEnabled,
		Status:          domain.BudgetStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanBudget(row pgx.Row) (models.Budget, error) {
	var m models.Budget
	err := row.Scan(
		&m.BudgetID,
		&m.OwnerUserID,
		&m.FamilyID,
		&m.CategoryID,
		&m.Amount,
		&m.Spent,
		&m.Period,
		&m.StartDate,
		&m.EndDate,
		&m.RolloverEnabled,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanAlert(row pgx.Row) (models.BudgetAlert, error) {
	var m models.BudgetAlert
	err := row.Scan(
		&m.AlertID,
		&m.BudgetID,
		&m.Threshold,
		&m.PeriodStart,
		&m.TriggeredAt,
		&m.AcknowledgedAt,
	)
	return m, err
}

func toDomainAlert(m models.BudgetAlert) domain.BudgetAlert {
	return domain.BudgetAlert{
		AlertID:        m.AlertID,
		BudgetID:       m.BudgetID,
		Threshold:      m.Threshold,
		PeriodStart:    m.PeriodStart,
		TriggeredAt:    m.TriggeredAt,
		AcknowledgedAt: m.AcknowledgedAt,
	}
}

// SaveBudget inserts a new budget.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		budget.BudgetID, budget.OwnerUserID, budget.FamilyID, budget.CategoryID,
		budget.Amount, budget.Spent, budget.Period, budget.StartDate, budget.EndDate,
		budget.RolloverEnabled, budget.Status,
		budget.CreatedAt, budget.CreatedBy, budget.LastUpdatedAt, budget.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: an active budget already covers category %s", apperrors.ErrDuplicate, budget.CategoryID)
		}
		return fmt.Errorf("failed to save budget %s: %w", budget.BudgetID, err)
	}
	return nil
}

// FindBudgetByID retrieves a budget by its ID.
func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE budget_id = $1;`
	m, err := scanBudget(r.Pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget by ID %s: %w", budgetID, err)
	}
	d := toDomainBudget(m)
	return &d, nil
}

// FindActiveBudgetForCategory locates the live budget covering the category
// and date. Family scope and personal scope are disjoint: a family-scoped
// expense never lands on a personal budget and vice versa.
func (r *PgxBudgetRepository) FindActiveBudgetForCategory(ctx context.Context, categoryID string, familyID *string, ownerUserID string, date time.Time) (*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE category_id = $1
		  AND status = 'ACTIVE'
		  AND start_date <= $4 AND end_date > $4
		  AND (($2::text IS NULL AND family_id IS NULL AND owner_user_id = $3)
		   OR ($2::text IS NOT NULL AND family_id = $2))
		LIMIT 1;
	`
	m, err := scanBudget(r.Pool.QueryRow(ctx, query, categoryID, familyID, ownerUserID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget for category %s: %w", categoryID, err)
	}
	d := toDomainBudget(m)
	return &d, nil
}

// FindCurrentBudgetForCategory locates the category's ACTIVE budget with no
// window filter. At most one active budget exists per category and scope.
func (r *PgxBudgetRepository) FindCurrentBudgetForCategory(ctx context.Context, categoryID string, familyID *string, ownerUserID string) (*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE category_id = $1
		  AND status = 'ACTIVE'
		  AND (($2::text IS NULL AND family_id IS NULL AND owner_user_id = $3)
		   OR ($2::text IS NOT NULL AND family_id = $2))
		LIMIT 1;
	`
	m, err := scanBudget(r.Pool.QueryRow(ctx, query, categoryID, familyID, ownerUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find current budget for category %s: %w", categoryID, err)
	}
	d := toDomainBudget(m)
	return &d, nil
}

// ListBudgetsByOwner lists a user's personal budgets, newest period first.
func (r *PgxBudgetRepository) ListBudgetsByOwner(ctx context.Context, ownerUserID string) ([]domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE owner_user_id = $1 AND family_id IS NULL
		ORDER BY start_date DESC, category_id;
	`
	return r.queryBudgets(ctx, query, ownerUserID)
}

// ListBudgetsByFamily lists a family's shared budgets, newest period first.
func (r *PgxBudgetRepository) ListBudgetsByFamily(ctx context.Context, familyID string) ([]domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE family_id = $1
		ORDER BY start_date DESC, category_id;
	`
	return r.queryBudgets(ctx, query, familyID)
}

func (r *PgxBudgetRepository) queryBudgets(ctx context.Context, query string, args ...any) ([]domain.Budget, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		m, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, toDomainBudget(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", err)
	}
	return budgets, nil
}

// UpdateBudget persists amount, rollover flag and audit changes.
func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		UPDATE budgets
		SET amount = $2, rollover_enabled = $3, last_updated_at = $4, last_updated_by = $5
		WHERE budget_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		budget.BudgetID, budget.Amount, budget.RolloverEnabled, budget.LastUpdatedAt, budget.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget %s: %w", budget.BudgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetSpent overwrites the derived spent column. Reconciliation only.
func (r *PgxBudgetRepository) SetSpent(ctx context.Context, budgetID string, spent decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE budgets
		SET spent = $2, last_updated_at = $3, last_updated_by = $4
		WHERE budget_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, budgetID, spent, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set spent for budget %s: %w", budgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RolloverBudget archives the old period and creates its successor in one
// transaction, so the category never has zero or two active budgets.
func (r *PgxBudgetRepository) RolloverBudget(ctx context.Context, old domain.Budget, next domain.Budget) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	archive := `
		UPDATE budgets
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE budget_id = $1 AND status = 'ACTIVE';
	`
	tag, err := tx.Exec(ctx, archive, old.BudgetID, old.Status, old.LastUpdatedAt, old.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to archive budget %s: %w", old.BudgetID, err)
	}
	if tag.RowsAffected() == 0 {
		// Someone else already rolled it over.
		return fmt.Errorf("%w: budget %s is no longer active", apperrors.ErrConflict, old.BudgetID)
	}

	insert := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, insert,
		next.BudgetID, next.OwnerUserID, next.FamilyID, next.CategoryID,
		next.Amount, next.Spent, next.Period, next.StartDate, next.EndDate,
		next.RolloverEnabled, next.Status,
		next.CreatedAt, next.CreatedBy, next.LastUpdatedAt, next.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert successor budget %s: %w", next.BudgetID, err)
	}

	return r.Commit(ctx, tx)
}

// ListAlerts returns all alerts for a budget across periods, newest first.
func (r *PgxBudgetRepository) ListAlerts(ctx context.Context, budgetID string) ([]domain.BudgetAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM budget_alerts
		WHERE budget_id = $1
		ORDER BY triggered_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts for budget %s: %w", budgetID, err)
	}
	defer rows.Close()

	alerts := []domain.BudgetAlert{}
	for rows.Next() {
		m, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, toDomainAlert(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}
	return alerts, nil
}

// AcknowledgeAlert marks an alert dismissed.
func (r *PgxBudgetRepository) AcknowledgeAlert(ctx context.Context, alertID string, now time.Time) error {
	query := `
		UPDATE budget_alerts
		SET acknowledged_at = $2
		WHERE alert_id = $1 AND acknowledged_at IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query, alertID, now)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert %s: %w", alertID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ApplySpendDeltaInTx locks the budget row, applies the spend delta and
// returns the updated budget.
func (r *PgxBudgetRepository) ApplySpendDeltaInTx(ctx context.Context, tx pgx.Tx, budgetID string, delta decimal.Decimal, userID string, now time.Time) (*domain.Budget, error) {
	query := `
		UPDATE budgets
		SET spent = spent + $2, last_updated_at = $3, last_updated_by = $4
		WHERE budget_id = $1
		RETURNING ` + budgetColumns + `;
	`
	m, err := scanBudget(tx.QueryRow(ctx, query, budgetID, delta, now, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to apply spend delta to budget %s: %w", budgetID, err)
	}
	d := toDomainBudget(m)
	return &d, nil
}

// InsertAlertsInTx inserts threshold alerts, returning only the rows actually
// created. The partial unique index on (budget_id, period_start, threshold)
// WHERE acknowledged_at IS NULL swallows duplicates within a period.
func (r *PgxBudgetRepository) InsertAlertsInTx(ctx context.Context, tx pgx.Tx, alerts []domain.BudgetAlert) ([]domain.BudgetAlert, error) {
	query := `
		INSERT INTO budget_alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, NULL)
		ON CONFLICT (budget_id, period_start, threshold) WHERE acknowledged_at IS NULL DO NOTHING
		RETURNING ` + alertColumns + `;
	`
	created := []domain.BudgetAlert{}
	for _, a := range alerts {
		m, err := scanAlert(tx.QueryRow(ctx, query, a.AlertID, a.BudgetID, a.Threshold, a.PeriodStart, a.TriggeredAt))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue // threshold already alerted this period
			}
			return nil, fmt.Errorf("failed to insert alert for budget %s: %w", a.BudgetID, err)
		}
		created = append(created, toDomainAlert(m))
	}
	return created, nil
}
