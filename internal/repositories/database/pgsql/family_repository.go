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
)

const familyColumns = `family_id, name, created_by_user_id, max_members, status, share_budgets, share_goals, created_at, created_by, last_updated_at, last_updated_by`

const memberColumns = `family_id, user_id, role, status, can_create_goals, can_view_budgets, can_contribute_goals, can_invite_members, can_manage_budgets, version, joined_at, created_at, created_by, last_updated_at, last_updated_by`

const invitationColumns = `invitation_id, family_id, invited_by_user_id, email, token, role, status, expires_at, created_at, created_by, last_updated_at, last_updated_by`

const joinRequestColumns = `request_id, family_id, user_id, message, status, reviewed_by_user_id, review_note, created_at, created_by, last_updated_at, last_updated_by`

type PgxFamilyRepository struct {
	BaseRepository
}

// newPgxFamilyRepository creates a new repository for family data.
func newPgxFamilyRepository(pool *pgxpool.Pool) portsrepo.FamilyRepository {
	return &PgxFamilyRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.FamilyRepository = (*PgxFamilyRepository)(nil)

func toDomainFamily(m models.Family) domain.Family {
	return domain.Family{
		FamilyID:        m.FamilyID,
		Name:            m.Name,
		CreatedByUserID: m.CreatedByUserID,
		MaxMembers:      m.MaxMembers,
		Status:          domain.FamilyStatus(m.Status),
		ShareBudgets:    m.ShareBudgets,
		ShareGoals:      m.ShareGoals,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanFamily(row pgx.Row) (models.Family, error) {
	var m models.Family
	err := row.Scan(
		&m.FamilyID,
		&m.Name,
		&m.CreatedByUserID,
		&m.MaxMembers,
		&m.Status,
		&m.ShareBudgets,
		&m.ShareGoals,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func toDomainMember(m models.FamilyMember) domain.FamilyMember {
	return domain.FamilyMember{
		FamilyID: m.FamilyID,
		UserID:   m.UserID,
		Role:     domain.FamilyRole(m.Role),
		Status:   domain.MemberStatus(m.Status),
		Capabilities: domain.Capabilities{
			CanCreateGoals:     m.CanCreateGoals,
			CanViewBudgets:     m.CanViewBudgets,
			CanContributeGoals: m.CanContributeGoals,
			CanInviteMembers:   m.CanInviteMembers,
			CanManageBudgets:   m.CanManageBudgets,
		},
		Version:  m.Version,
		JoinedAt: m.JoinedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanMember(row pgx.Row) (models.FamilyMember, error) {
	var m models.FamilyMember
	err := row.Scan(
		&m.FamilyID,
		&m.UserID,
		&m.Role,
		&m.Status,
		&m.CanCreateGoals,
		&m.CanViewBudgets,
		&m.CanContributeGoals,
		&m.CanInviteMembers,
		&m.CanManageBudgets,
		&m.Version,
		&m.JoinedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func toDomainInvitation(m models.FamilyInvitation) domain.FamilyInvitation {
	return domain.FamilyInvitation{
		InvitationID:    m.InvitationID,
		FamilyID:        m.FamilyID,
		InvitedByUserID: m.InvitedByUserID,
		Email:           m.Email,
		Token:           m.Token,
		Role:            domain.FamilyRole(m.Role),
		Status:          domain.InvitationStatus(m.Status),
		ExpiresAt:       m.ExpiresAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanInvitation(row pgx.Row) (models.FamilyInvitation, error) {
	var m models.FamilyInvitation
	err := row.Scan(
		&m.InvitationID,
		&m.FamilyID,
		&m.InvitedByUserID,
		&m.Email,
		&m.Token,
		&m.Role,
		&m.Status,
		&m.ExpiresAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func toDomainJoinRequest(m models.FamilyJoinRequest) domain.FamilyJoinRequest {
	return domain.FamilyJoinRequest{
		RequestID:        m.RequestID,
		FamilyID:         m.FamilyID,
		UserID:           m.UserID,
		Message:          m.Message,
		Status:           domain.JoinRequestStatus(m.Status),
		ReviewedByUserID: m.ReviewedByUserID,
		ReviewNote:       m.ReviewNote,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanJoinRequest(row pgx.Row) (models.FamilyJoinRequest, error) {
	var m models.FamilyJoinRequest
	err := row.Scan(
		&m.RequestID,
		&m.FamilyID,
		&m.UserID,
		&m.Message,
		&m.Status,
		&m.ReviewedByUserID,
		&m.ReviewNote,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveFamily inserts a new family.
func (r *PgxFamilyRepository) SaveFamily(ctx context.Context, family domain.Family) error {
	query := `
		INSERT INTO families (` + familyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		family.FamilyID, family.Name, family.CreatedByUserID, family.MaxMembers, family.Status,
		family.ShareBudgets, family.ShareGoals,
		family.CreatedAt, family.CreatedBy, family.LastUpdatedAt, family.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: family with ID %s already exists", apperrors.ErrDuplicate, family.FamilyID)
		}
		return fmt.Errorf("failed to save family %s: %w", family.FamilyID, err)
	}
	return nil
}

// FindFamilyByID retrieves a family by its ID.
func (r *PgxFamilyRepository) FindFamilyByID(ctx context.Context, familyID string) (*domain.Family, error) {
	query := `SELECT ` + familyColumns + ` FROM families WHERE family_id = $1;`
	m, err := scanFamily(r.Pool.QueryRow(ctx, query, familyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find family by ID %s: %w", familyID, err)
	}
	d := toDomainFamily(m)
	return &d, nil
}

// UpdateFamily persists name, limits, sharing flags and audit changes.
func (r *PgxFamilyRepository) UpdateFamily(ctx context.Context, family domain.Family) error {
	query := `
		UPDATE families
		SET name = $2, max_members = $3, status = $4, share_budgets = $5, share_goals = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE family_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		family.FamilyID, family.Name, family.MaxMembers, family.Status,
		family.ShareBudgets, family.ShareGoals, family.LastUpdatedAt, family.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update family %s: %w", family.FamilyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteFamily removes the family. Member, invitation and join-request rows
// cascade away; family references on transactions, budgets and goals null out.
func (r *PgxFamilyRepository) DeleteFamily(ctx context.Context, familyID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM families WHERE family_id = $1;`, familyID)
	if err != nil {
		return fmt.Errorf("failed to delete family %s: %w", familyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListFamiliesByUser returns families the user owns or actively belongs to.
func (r *PgxFamilyRepository) ListFamiliesByUser(ctx context.Context, userID string) ([]domain.Family, error) {
	query := `
		SELECT DISTINCT f.family_id, f.name, f.created_by_user_id, f.max_members, f.status,
		       f.share_budgets, f.share_goals,
		       f.created_at, f.created_by, f.last_updated_at, f.last_updated_by
		FROM families f
		LEFT JOIN family_members m ON m.family_id = f.family_id AND m.user_id = $1 AND m.status = 'ACTIVE'
		WHERE f.created_by_user_id = $1 OR m.user_id IS NOT NULL
		ORDER BY f.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query families for user %s: %w", userID, err)
	}
	defer rows.Close()

	families := []domain.Family{}
	for rows.Next() {
		m, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family row: %w", err)
		}
		families = append(families, toDomainFamily(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating family rows: %w", err)
	}
	return families, nil
}

// SaveMember inserts a membership row.
func (r *PgxFamilyRepository) SaveMember(ctx context.Context, member domain.FamilyMember) error {
	query := `
		INSERT INTO family_members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query, memberArgs(member)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s already belongs to family %s", apperrors.ErrDuplicate, member.UserID, member.FamilyID)
		}
		return fmt.Errorf("failed to save member %s/%s: %w", member.FamilyID, member.UserID, err)
	}
	return nil
}

func memberArgs(member domain.FamilyMember) []any {
	return []any{
		member.FamilyID, member.UserID, member.Role, member.Status,
		member.Capabilities.CanCreateGoals, member.Capabilities.CanViewBudgets,
		member.Capabilities.CanContributeGoals, member.Capabilities.CanInviteMembers,
		member.Capabilities.CanManageBudgets,
		member.Version, member.JoinedAt,
		member.CreatedAt, member.CreatedBy, member.LastUpdatedAt, member.LastUpdatedBy,
	}
}

// FindMember retrieves one membership row.
func (r *PgxFamilyRepository) FindMember(ctx context.Context, familyID, userID string) (*domain.FamilyMember, error) {
	query := `SELECT ` + memberColumns + ` FROM family_members WHERE family_id = $1 AND user_id = $2;`
	m, err := scanMember(r.Pool.QueryRow(ctx, query, familyID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member %s/%s: %w", familyID, userID, err)
	}
	d := toDomainMember(m)
	return &d, nil
}

// ListMembers returns every membership row of a family, removed ones included.
func (r *PgxFamilyRepository) ListMembers(ctx context.Context, familyID string) ([]domain.FamilyMember, error) {
	query := `SELECT ` + memberColumns + ` FROM family_members WHERE family_id = $1 ORDER BY joined_at;`
	rows, err := r.Pool.Query(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members for family %s: %w", familyID, err)
	}
	defer rows.Close()

	members := []domain.FamilyMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, toDomainMember(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}

// CountActiveMembers counts active memberships of a family.
func (r *PgxFamilyRepository) CountActiveMembers(ctx context.Context, familyID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM family_members WHERE family_id = $1 AND status = 'ACTIVE';`
	if err := r.Pool.QueryRow(ctx, query, familyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members for family %s: %w", familyID, err)
	}
	return count, nil
}

// UpdateMember persists role/capability/status changes and bumps the version
// column so cache refreshes stay ordered.
func (r *PgxFamilyRepository) UpdateMember(ctx context.Context, member domain.FamilyMember) (*domain.FamilyMember, error) {
	query := `
		UPDATE family_members
		SET role = $3, status = $4,
		    can_create_goals = $5, can_view_budgets = $6, can_contribute_goals = $7,
		    can_invite_members = $8, can_manage_budgets = $9,
		    version = version + 1, last_updated_at = $10, last_updated_by = $11
		WHERE family_id = $1 AND user_id = $2
		RETURNING ` + memberColumns + `;
	`
	m, err := scanMember(r.Pool.QueryRow(ctx, query,
		member.FamilyID, member.UserID, member.Role, member.Status,
		member.Capabilities.CanCreateGoals, member.Capabilities.CanViewBudgets,
		member.Capabilities.CanContributeGoals, member.Capabilities.CanInviteMembers,
		member.Capabilities.CanManageBudgets,
		member.LastUpdatedAt, member.LastUpdatedBy,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update member %s/%s: %w", member.FamilyID, member.UserID, err)
	}
	d := toDomainMember(m)
	return &d, nil
}

// FindMembership resolves the permission engine's view of a user in a family,
// including the derived owner bit. The owner resolves even without an active
// member row.
func (r *PgxFamilyRepository) FindMembership(ctx context.Context, familyID, userID string) (*domain.Membership, error) {
	query := `
		SELECT f.created_by_user_id = $2,
		       m.role, m.status,
		       m.can_create_goals, m.can_view_budgets, m.can_contribute_goals,
		       m.can_invite_members, m.can_manage_budgets,
		       m.version
		FROM families f
		LEFT JOIN family_members m ON m.family_id = f.family_id AND m.user_id = $2
		WHERE f.family_id = $1;
	`
	var (
		isOwner              bool
		role, status         *string
		canCreate, canView   *bool
		canContribute        *bool
		canInvite, canManage *bool
		version              *int64
	)
	err := r.Pool.QueryRow(ctx, query, familyID, userID).Scan(
		&isOwner, &role, &status,
		&canCreate, &canView, &canContribute, &canInvite, &canManage,
		&version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve membership %s/%s: %w", familyID, userID, err)
	}
	if role == nil && !isOwner {
		return nil, apperrors.ErrNotFound
	}

	membership := domain.Membership{
		UserID:   userID,
		FamilyID: familyID,
		IsOwner:  isOwner,
	}
	if role != nil {
		membership.Role = domain.FamilyRole(*role)
		membership.Status = domain.MemberStatus(*status)
		membership.Capabilities = domain.Capabilities{
			CanCreateGoals:     *canCreate,
			CanViewBudgets:     *canView,
			CanContributeGoals: *canContribute,
			CanInviteMembers:   *canInvite,
			CanManageBudgets:   *canManage,
		}
		membership.Version = *version
	} else {
		// Owner without a member row.
		membership.Role = domain.RoleAdmin
		membership.Status = domain.MemberActive
		membership.Capabilities = domain.FullCapabilities()
	}
	return &membership, nil
}

// ListMemberships resolves every membership of a family for a full cache
// rebuild.
func (r *PgxFamilyRepository) ListMemberships(ctx context.Context, familyID string) ([]domain.Membership, error) {
	query := `
		SELECT m.user_id, f.created_by_user_id = m.user_id,
		       m.role, m.status,
		       m.can_create_goals, m.can_view_budgets, m.can_contribute_goals,
		       m.can_invite_members, m.can_manage_budgets,
		       m.version
		FROM family_members m
		JOIN families f ON f.family_id = m.family_id
		WHERE m.family_id = $1;
	`
	rows, err := r.Pool.Query(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships for family %s: %w", familyID, err)
	}
	defer rows.Close()

	memberships := []domain.Membership{}
	for rows.Next() {
		m := domain.Membership{FamilyID: familyID}
		err := rows.Scan(
			&m.UserID, &m.IsOwner, &m.Role, &m.Status,
			&m.Capabilities.CanCreateGoals, &m.Capabilities.CanViewBudgets,
			&m.Capabilities.CanContributeGoals, &m.Capabilities.CanInviteMembers,
			&m.Capabilities.CanManageBudgets,
			&m.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return memberships, nil
}

// SaveInvitation inserts a new invitation.
func (r *PgxFamilyRepository) SaveInvitation(ctx context.Context, invitation domain.FamilyInvitation) error {
	query := `
		INSERT INTO family_invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		invitation.InvitationID, invitation.FamilyID, invitation.InvitedByUserID,
		invitation.Email, invitation.Token, invitation.Role, invitation.Status, invitation.ExpiresAt,
		invitation.CreatedAt, invitation.CreatedBy, invitation.LastUpdatedAt, invitation.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a pending invitation for %s already exists", apperrors.ErrDuplicate, invitation.Email)
		}
		return fmt.Errorf("failed to save invitation %s: %w", invitation.InvitationID, err)
	}
	return nil
}

// FindInvitationByToken retrieves an invitation by its secret token.
func (r *PgxFamilyRepository) FindInvitationByToken(ctx context.Context, token string) (*domain.FamilyInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM family_invitations WHERE token = $1;`
	m, err := scanInvitation(r.Pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invitation by token: %w", err)
	}
	d := toDomainInvitation(m)
	return &d, nil
}

// ListInvitations returns all invitations of a family, newest first.
func (r *PgxFamilyRepository) ListInvitations(ctx context.Context, familyID string) ([]domain.FamilyInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM family_invitations WHERE family_id = $1 ORDER BY created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations for family %s: %w", familyID, err)
	}
	defer rows.Close()

	invitations := []domain.FamilyInvitation{}
	for rows.Next() {
		m, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation row: %w", err)
		}
		invitations = append(invitations, toDomainInvitation(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitation rows: %w", err)
	}
	return invitations, nil
}

// UpdateInvitationStatus moves an invitation through its state machine.
func (r *PgxFamilyRepository) UpdateInvitationStatus(ctx context.Context, invitationID string, status domain.InvitationStatus, userID string, now time.Time) error {
	query := `
		UPDATE family_invitations
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE invitation_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, invitationID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update invitation %s: %w", invitationID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AcceptInvitation marks the invitation accepted and activates the
// membership in one transaction. The family row is locked first so the
// capacity check cannot race a concurrent acceptance or approval.
func (r *PgxFamilyRepository) AcceptInvitation(ctx context.Context, invitationID string, member domain.FamilyMember) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.checkCapacityLocked(ctx, tx, member.FamilyID); err != nil {
		return err
	}

	accept := `
		UPDATE family_invitations
		SET status = 'ACCEPTED', last_updated_at = $2, last_updated_by = $3
		WHERE invitation_id = $1 AND status = 'PENDING';
	`
	tag, err := tx.Exec(ctx, accept, invitationID, member.LastUpdatedAt, member.UserID)
	if err != nil {
		return fmt.Errorf("failed to accept invitation %s: %w", invitationID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invitation %s is no longer pending", apperrors.ErrConflict, invitationID)
	}

	if err := r.upsertActiveMemberInTx(ctx, tx, member); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveJoinRequest inserts a new join request.
func (r *PgxFamilyRepository) SaveJoinRequest(ctx context.Context, request domain.FamilyJoinRequest) error {
	query := `
		INSERT INTO family_join_requests (` + joinRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		request.RequestID, request.FamilyID, request.UserID, request.Message, request.Status,
		request.ReviewedByUserID, request.ReviewNote,
		request.CreatedAt, request.CreatedBy, request.LastUpdatedAt, request.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a pending join request already exists", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save join request %s: %w", request.RequestID, err)
	}
	return nil
}

// FindJoinRequestByID retrieves a join request by its ID.
func (r *PgxFamilyRepository) FindJoinRequestByID(ctx context.Context, requestID string) (*domain.FamilyJoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM family_join_requests WHERE request_id = $1;`
	m, err := scanJoinRequest(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find join request by ID %s: %w", requestID, err)
	}
	d := toDomainJoinRequest(m)
	return &d, nil
}

// ListJoinRequests returns a family's join requests, optionally filtered by
// status, newest first.
func (r *PgxFamilyRepository) ListJoinRequests(ctx context.Context, familyID string, status *domain.JoinRequestStatus) ([]domain.FamilyJoinRequest, error) {
	query := `
		SELECT ` + joinRequestColumns + `
		FROM family_join_requests
		WHERE family_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, familyID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query join requests for family %s: %w", familyID, err)
	}
	defer rows.Close()

	requests := []domain.FamilyJoinRequest{}
	for rows.Next() {
		m, err := scanJoinRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan join request row: %w", err)
		}
		requests = append(requests, toDomainJoinRequest(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating join request rows: %w", err)
	}
	return requests, nil
}

// UpdateJoinRequest persists review outcome and audit changes.
func (r *PgxFamilyRepository) UpdateJoinRequest(ctx context.Context, request domain.FamilyJoinRequest) error {
	query := `
		UPDATE family_join_requests
		SET status = $2, reviewed_by_user_id = $3, review_note = $4,
		    last_updated_at = $5, last_updated_by = $6
		WHERE request_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		request.RequestID, request.Status, request.ReviewedByUserID, request.ReviewNote,
		request.LastUpdatedAt, request.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update join request %s: %w", request.RequestID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ApproveJoinRequest marks the request approved and activates the membership
// in one transaction, with the same locked capacity check as invitation
// acceptance.
func (r *PgxFamilyRepository) ApproveJoinRequest(ctx context.Context, request domain.FamilyJoinRequest, member domain.FamilyMember) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.checkCapacityLocked(ctx, tx, member.FamilyID); err != nil {
		return err
	}

	approve := `
		UPDATE family_join_requests
		SET status = 'APPROVED', reviewed_by_user_id = $2, review_note = $3,
		    last_updated_at = $4, last_updated_by = $5
		WHERE request_id = $1 AND status = 'PENDING';
	`
	tag, err := tx.Exec(ctx, approve,
		request.RequestID, request.ReviewedByUserID, request.ReviewNote,
		request.LastUpdatedAt, request.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to approve join request %s: %w", request.RequestID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: join request %s is no longer pending", apperrors.ErrConflict, request.RequestID)
	}

	if err := r.upsertActiveMemberInTx(ctx, tx, member); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// checkCapacityLocked locks the family row and verifies the active member
// count is below the limit.
func (r *PgxFamilyRepository) checkCapacityLocked(ctx context.Context, tx pgx.Tx, familyID string) error {
	var maxMembers int
	err := tx.QueryRow(ctx, `SELECT max_members FROM families WHERE family_id = $1 FOR UPDATE;`, familyID).Scan(&maxMembers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock family %s: %w", familyID, err)
	}

	var active int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM family_members WHERE family_id = $1 AND status = 'ACTIVE';`, familyID).Scan(&active)
	if err != nil {
		return fmt.Errorf("failed to count members for family %s: %w", familyID, err)
	}
	if active >= maxMembers {
		return fmt.Errorf("%w: family %s is full (%d/%d)", apperrors.ErrCapacityExceeded, familyID, active, maxMembers)
	}
	return nil
}

// upsertActiveMemberInTx inserts the membership or reactivates a previously
// removed row, bumping its version.
func (r *PgxFamilyRepository) upsertActiveMemberInTx(ctx context.Context, tx pgx.Tx, member domain.FamilyMember) error {
	query := `
		INSERT INTO family_members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (family_id, user_id) DO UPDATE
		SET role = EXCLUDED.role, status = EXCLUDED.status,
		    can_create_goals = EXCLUDED.can_create_goals,
		    can_view_budgets = EXCLUDED.can_view_budgets,
		    can_contribute_goals = EXCLUDED.can_contribute_goals,
		    can_invite_members = EXCLUDED.can_invite_members,
		    can_manage_budgets = EXCLUDED.can_manage_budgets,
		    version = family_members.version + 1,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	if _, err := tx.Exec(ctx, query, memberArgs(member)...); err != nil {
		return fmt.Errorf("failed to upsert member %s/%s: %w", member.FamilyID, member.UserID, err)
	}
	return nil
}
