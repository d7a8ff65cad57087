package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mira/volunteer-hub/internal/impact"
	"github.com/mira/volunteer-hub/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	Query          string
	QueryEmbedding []float32
	Category       string
	Organization   string
	Featured       *bool
	UpcomingOnly   bool // date >= today
	Limit          int
	Offset         int
}

type ListResult struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

// selectCols is the column list shared by all opportunity queries. The date
// column is rendered as text so calendar dates never pick up a timezone on
// the way out.
const selectCols = `id, title, organization, category, description_html,
	to_char(date, 'YYYY-MM-DD'), hours, featured, slots, latitude, longitude,
	created_by, created_at, updated_at`

func scanOpportunity(scan func(dest ...interface{}) error) (models.Opportunity, error) {
	var o models.Opportunity
	var category, description *string
	var createdBy *uuid.UUID

	err := scan(
		&o.ID, &o.Title, &o.Organization, &category, &description,
		&o.Date, &o.Hours, &o.Featured, &o.Slots, &o.Latitude, &o.Longitude,
		&createdBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	if category != nil {
		o.Category = *category
	}
	if description != nil {
		o.Description = *description
	}
	if createdBy != nil {
		o.CreatedBy = *createdBy
	}
	return o, nil
}

// buildListFilter renders the WHERE conditions for ListOpportunities. The
// keyword fallback only applies when no query embedding could be generated;
// with an embedding, ordering by vector distance does the matching.
func buildListFilter(params ListParams) ([]string, []interface{}) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Category != "" {
		conds = append(conds, fmt.Sprintf("category ILIKE %s", arg(params.Category)))
	}
	if params.Organization != "" {
		conds = append(conds, fmt.Sprintf("organization = %s", arg(params.Organization)))
	}
	if params.Featured != nil {
		conds = append(conds, fmt.Sprintf("featured = %s", arg(*params.Featured)))
	}
	if params.UpcomingOnly {
		conds = append(conds, "date >= CURRENT_DATE")
	}
	if params.Query != "" && params.QueryEmbedding == nil {
		pattern := "%" + params.Query + "%"
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR organization ILIKE %s OR category ILIKE %s)",
			arg(pattern), arg(pattern), arg(pattern)))
	}
	return conds, args
}

func (s *Store) ListOpportunities(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}

	conds, args := buildListFilter(params)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM opportunities"+where, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count opportunities: %w", err)
	}

	order := " ORDER BY featured DESC, date ASC"
	if params.QueryEmbedding != nil {
		order = fmt.Sprintf(" ORDER BY embedding <=> %s", arg(pgvector.NewVector(params.QueryEmbedding)))
	}

	query := "SELECT " + selectCols + " FROM opportunities" + where + order +
		fmt.Sprintf(" LIMIT %s OFFSET %s", arg(params.Limit), arg(params.Offset))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	opps := []models.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return ListResult{}, err
		}
		opps = append(opps, o)
	}

	return ListResult{Opportunities: opps, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}

func (s *Store) GetOpportunity(ctx context.Context, id uuid.UUID) (models.Opportunity, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+selectCols+" FROM opportunities WHERE id = $1", id)
	return scanOpportunity(row.Scan)
}

func (s *Store) CreateOpportunity(ctx context.Context, o models.Opportunity, embedding []float32) (models.Opportunity, error) {
	var vec interface{}
	if embedding != nil {
		vec = pgvector.NewVector(embedding)
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO opportunities (
			title, organization, category, description_html, date, hours,
			featured, slots, latitude, longitude, embedding, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, o.Title, o.Organization, o.Category, o.Description, o.Date, o.Hours,
		o.Featured, o.Slots, o.Latitude, o.Longitude, vec, o.CreatedBy,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, fmt.Errorf("insert opportunity: %w", err)
	}
	return o, nil
}

// Apply inserts a user's application. At most one application exists per
// (user, opportunity) pair; re-applying is a no-op and reports false.
func (s *Store) Apply(ctx context.Context, userID, opportunityID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO user_applications (user_id, opportunity_id, status)
		VALUES ($1, $2, 'Pending')
		ON CONFLICT (user_id, opportunity_id) DO NOTHING
	`, userID, opportunityID)
	if err != nil {
		return false, fmt.Errorf("insert application: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListUserApplications joins a user's applications with their opportunities
// and proofs. DerivedStatus is left for the engine to fill.
func (s *Store) ListUserApplications(ctx context.Context, userID uuid.UUID) ([]models.DerivedApplication, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.user_id, a.opportunity_id, a.status, a.applied_at,
		       o.title, o.organization, o.category, to_char(o.date, 'YYYY-MM-DD'), o.hours, o.featured
		FROM user_applications a
		JOIN opportunities o ON o.id = a.opportunity_id
		WHERE a.user_id = $1
		ORDER BY a.applied_at DESC NULLS LAST
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := []models.DerivedApplication{}
	for rows.Next() {
		var a models.DerivedApplication
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.OpportunityID, &a.Status, &a.AppliedAt,
			&a.Title, &a.Organization, &a.Category, &a.Date, &a.Hours, &a.Featured,
		); err != nil {
			return nil, err
		}
		a.Proofs = []models.Proof{}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	proofs, err := s.ListProofsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byOpportunity := make(map[uuid.UUID][]models.Proof)
	for _, p := range proofs {
		byOpportunity[p.OpportunityID] = append(byOpportunity[p.OpportunityID], p)
	}
	for i := range apps {
		if ps, ok := byOpportunity[apps[i].OpportunityID]; ok {
			apps[i].Proofs = ps
		}
	}
	return apps, nil
}

func (s *Store) CreateProof(ctx context.Context, p models.Proof) (models.Proof, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO proofs (user_id, opportunity_id, image_url, note, verification_code, verified)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, created_at
	`, p.UserID, p.OpportunityID, p.ImageURL, p.Note, p.VerificationCode).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return p, fmt.Errorf("insert proof: %w", err)
	}
	return p, nil
}

func (s *Store) ListProofsForUser(ctx context.Context, userID uuid.UUID) ([]models.Proof, error) {
	return s.listProofs(ctx, "p.user_id = $1 ORDER BY p.created_at DESC", userID)
}

// ListPendingProofsForOrganization returns unverified proofs submitted
// against the organization's opportunities.
func (s *Store) ListPendingProofsForOrganization(ctx context.Context, organization string) ([]models.Proof, error) {
	return s.listProofs(ctx, `p.verified = FALSE
		AND p.opportunity_id IN (SELECT id FROM opportunities WHERE organization = $1)
		ORDER BY p.created_at ASC`, organization)
}

func (s *Store) listProofs(ctx context.Context, tail string, args ...interface{}) ([]models.Proof, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.user_id, p.opportunity_id, p.image_url, p.note,
		       p.verification_code, p.verified, p.created_at
		FROM proofs p
		WHERE `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("list proofs: %w", err)
	}
	defer rows.Close()

	proofs := []models.Proof{}
	for rows.Next() {
		var p models.Proof
		if err := rows.Scan(&p.ID, &p.UserID, &p.OpportunityID, &p.ImageURL, &p.Note,
			&p.VerificationCode, &p.Verified, &p.CreatedAt); err != nil {
			return nil, err
		}
		proofs = append(proofs, p)
	}
	return proofs, rows.Err()
}

// VerifyProof flips a proof to verified and stamps the matching application
// Completed, in one transaction. The flag is never unset afterwards. This is
// the only write that changes the engine's output for a given record set.
func (s *Store) VerifyProof(ctx context.Context, proofID uuid.UUID) (models.Proof, error) {
	var p models.Proof

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return p, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE proofs SET verified = TRUE
		WHERE id = $1
		RETURNING id, user_id, opportunity_id, image_url, note, verification_code, verified, created_at
	`, proofID).Scan(&p.ID, &p.UserID, &p.OpportunityID, &p.ImageURL, &p.Note,
		&p.VerificationCode, &p.Verified, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("verify proof: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE user_applications SET status = 'Completed'
		WHERE user_id = $1 AND opportunity_id = $2
	`, p.UserID, p.OpportunityID); err != nil {
		return p, fmt.Errorf("mark application completed: %w", err)
	}

	return p, tx.Commit(ctx)
}

// ProofOrganization reports which organization owns the opportunity a proof
// was submitted against.
func (s *Store) ProofOrganization(ctx context.Context, proofID uuid.UUID) (string, error) {
	var org string
	err := s.pool.QueryRow(ctx, `
		SELECT o.organization FROM proofs p
		JOIN opportunities o ON o.id = p.opportunity_id
		WHERE p.id = $1
	`, proofID).Scan(&org)
	if err == pgx.ErrNoRows {
		return "", ErrNotFound
	}
	return org, err
}

// VerifiedContributions returns the (hours, featured) pairs behind a user's
// verified proofs, the impact scorer's exact input shape.
func (s *Store) VerifiedContributions(ctx context.Context, userID uuid.UUID) ([]impact.Contribution, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.hours, o.featured
		FROM proofs p
		JOIN opportunities o ON o.id = p.opportunity_id
		WHERE p.user_id = $1 AND p.verified = TRUE
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	items := []impact.Contribution{}
	for rows.Next() {
		var c impact.Contribution
		if err := rows.Scan(&c.Hours, &c.Featured); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// CompletedRows returns every completed application across all users for the
// leaderboard aggregator. A row counts as completed when its stored status
// says so or when a verified proof exists for the pair.
func (s *Store) CompletedRows(ctx context.Context) ([]impact.CompletedRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.user_id, u.name, o.hours, o.featured, to_char(o.date, 'YYYY-MM-DD'), a.applied_at
		FROM user_applications a
		JOIN users u ON u.id = a.user_id
		JOIN opportunities o ON o.id = a.opportunity_id
		WHERE lower(a.status) = 'completed'
		   OR EXISTS (
				SELECT 1 FROM proofs p
				WHERE p.user_id = a.user_id AND p.opportunity_id = a.opportunity_id AND p.verified = TRUE
		   )
		ORDER BY a.applied_at ASC NULLS LAST
	`)
	if err != nil {
		return nil, fmt.Errorf("list completed applications: %w", err)
	}
	defer rows.Close()

	out := []impact.CompletedRow{}
	for rows.Next() {
		var r impact.CompletedRow
		if err := rows.Scan(&r.UserID, &r.Name, &r.Hours, &r.Featured, &r.OpportunityDate, &r.AppliedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ApplicantRow is one application received by an organization.
type ApplicantRow struct {
	Opportunity string `json:"opportunity"`
	Date        string `json:"date"`
	Applicant   string `json:"applicant"`
	Status      string `json:"status"`
}

func (s *Store) ListApplicantsForOrganization(ctx context.Context, organization string) ([]ApplicantRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.title, to_char(o.date, 'YYYY-MM-DD'), u.name, a.status
		FROM user_applications a
		JOIN opportunities o ON o.id = a.opportunity_id
		JOIN users u ON u.id = a.user_id
		WHERE o.organization = $1
		ORDER BY a.applied_at DESC NULLS LAST
	`, organization)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	out := []ApplicantRow{}
	for rows.Next() {
		var r ApplicantRow
		if err := rows.Scan(&r.Opportunity, &r.Date, &r.Applicant, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type Stats struct {
	Opportunities      int     `json:"opportunities"`
	Applications       int     `json:"applications"`
	VerifiedProofs     int     `json:"verified_proofs"`
	TotalVerifiedHours float64 `json:"total_verified_hours"`
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM opportunities),
			(SELECT count(*) FROM user_applications),
			(SELECT count(*) FROM proofs WHERE verified = TRUE),
			(SELECT COALESCE(SUM(o.hours), 0)
			 FROM proofs p JOIN opportunities o ON o.id = p.opportunity_id
			 WHERE p.verified = TRUE)
	`).Scan(&st.Opportunities, &st.Applications, &st.VerifiedProofs, &st.TotalVerifiedHours)
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// OpportunitiesMissingEmbedding feeds the background backfill job.
func (s *Store) OpportunitiesMissingEmbedding(ctx context.Context, limit int) ([]models.Opportunity, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+selectCols+" FROM opportunities WHERE embedding IS NULL ORDER BY created_at ASC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("list missing embeddings: %w", err)
	}
	defer rows.Close()

	opps := []models.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, err
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

func (s *Store) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	_, err := s.pool.Exec(ctx,
		"UPDATE opportunities SET embedding = $1, updated_at = NOW() WHERE id = $2",
		pgvector.NewVector(embedding), id)
	return err
}
