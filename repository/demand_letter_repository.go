package repository

import (
	"context"
	"fmt"

	"demanddraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DemandLetterRepository handles database operations for demand letters
// and their version history
type DemandLetterRepository struct {
	db *pgxpool.Pool
}

// NewDemandLetterRepository creates a new demand letter repository
func NewDemandLetterRepository(db *pgxpool.Pool) *DemandLetterRepository {
	return &DemandLetterRepository{db: db}
}

// Create creates a new demand letter
func (r *DemandLetterRepository) Create(ctx context.Context, letter *models.DemandLetter) error {
	query := `
		INSERT INTO demand_letters (
			firm_id, created_by, case_id, title, status,
			current_content, current_version, extracted_data, generation_metadata
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		letter.FirmID,
		letter.CreatedBy,
		letter.CaseID,
		letter.Title,
		letter.Status,
		letter.CurrentContent,
		letter.CurrentVersion,
		letter.ExtractedData,
		letter.GenerationMetadata,
	).Scan(&letter.ID, &letter.CreatedAt, &letter.UpdatedAt)

	return err
}

// GetByID retrieves a demand letter by ID, scoped to a firm
func (r *DemandLetterRepository) GetByID(ctx context.Context, id, firmID uuid.UUID) (*models.DemandLetter, error) {
	letter := &models.DemandLetter{}
	query := `
		SELECT id, firm_id, created_by, case_id, title, status,
			current_content, current_version, extracted_data, generation_metadata,
			created_at, updated_at, completed_at
		FROM demand_letters
		WHERE id = $1 AND firm_id = $2`

	err := r.db.QueryRow(ctx, query, id, firmID).Scan(
		&letter.ID,
		&letter.FirmID,
		&letter.CreatedBy,
		&letter.CaseID,
		&letter.Title,
		&letter.Status,
		&letter.CurrentContent,
		&letter.CurrentVersion,
		&letter.ExtractedData,
		&letter.GenerationMetadata,
		&letter.CreatedAt,
		&letter.UpdatedAt,
		&letter.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	return letter, nil
}

// Update updates a demand letter
func (r *DemandLetterRepository) Update(ctx context.Context, letter *models.DemandLetter) error {
	query := `
		UPDATE demand_letters SET
			case_id = $2,
			title = $3,
			status = $4,
			current_content = $5,
			current_version = $6,
			extracted_data = $7,
			generation_metadata = $8,
			completed_at = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		letter.ID,
		letter.CaseID,
		letter.Title,
		letter.Status,
		letter.CurrentContent,
		letter.CurrentVersion,
		letter.ExtractedData,
		letter.GenerationMetadata,
		letter.CompletedAt,
	).Scan(&letter.UpdatedAt)

	return err
}

// UpdateStatus updates only the letter status
func (r *DemandLetterRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.LetterStatus) error {
	query := `
		UPDATE demand_letters SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// UpdateContent stores new letter content and bumps the current version
func (r *DemandLetterRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, version int) error {
	query := `
		UPDATE demand_letters SET
			current_content = $2,
			current_version = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, content, version)
	return err
}

// ListByFirmID retrieves demand letters for a firm, newest first
func (r *DemandLetterRepository) ListByFirmID(ctx context.Context, firmID uuid.UUID, status *models.LetterStatus, limit, offset int) ([]*models.DemandLetter, error) {
	query := `
		SELECT id, firm_id, created_by, case_id, title, status,
			current_content, current_version, extracted_data, generation_metadata,
			created_at, updated_at, completed_at
		FROM demand_letters
		WHERE firm_id = $1`

	args := []interface{}{firmID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var letters []*models.DemandLetter
	for rows.Next() {
		letter := &models.DemandLetter{}
		err := rows.Scan(
			&letter.ID,
			&letter.FirmID,
			&letter.CreatedBy,
			&letter.CaseID,
			&letter.Title,
			&letter.Status,
			&letter.CurrentContent,
			&letter.CurrentVersion,
			&letter.ExtractedData,
			&letter.GenerationMetadata,
			&letter.CreatedAt,
			&letter.UpdatedAt,
			&letter.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		letters = append(letters, letter)
	}

	return letters, rows.Err()
}

// AddVersion appends a version snapshot for a letter
func (r *DemandLetterRepository) AddVersion(ctx context.Context, version *models.LetterVersion) error {
	query := `
		INSERT INTO letter_versions (
			letter_id, version, content, changes_summary, created_by
		) VALUES (
			$1, $2, $3, $4, $5
		) RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		version.LetterID,
		version.Version,
		version.Content,
		version.ChangesSummary,
		version.CreatedBy,
	).Scan(&version.ID, &version.CreatedAt)

	return err
}

// ListVersions retrieves all version snapshots for a letter, oldest first
func (r *DemandLetterRepository) ListVersions(ctx context.Context, letterID uuid.UUID) ([]*models.LetterVersion, error) {
	query := `
		SELECT id, letter_id, version, content, changes_summary, created_by, created_at
		FROM letter_versions
		WHERE letter_id = $1
		ORDER BY version ASC`

	rows, err := r.db.Query(ctx, query, letterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*models.LetterVersion
	for rows.Next() {
		v := &models.LetterVersion{}
		err := rows.Scan(
			&v.ID,
			&v.LetterID,
			&v.Version,
			&v.Content,
			&v.ChangesSummary,
			&v.CreatedBy,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

// GetVersion retrieves a single version snapshot for a letter
func (r *DemandLetterRepository) GetVersion(ctx context.Context, letterID uuid.UUID, version int) (*models.LetterVersion, error) {
	v := &models.LetterVersion{}
	query := `
		SELECT id, letter_id, version, content, changes_summary, created_by, created_at
		FROM letter_versions
		WHERE letter_id = $1 AND version = $2`

	err := r.db.QueryRow(ctx, query, letterID, version).Scan(
		&v.ID,
		&v.LetterID,
		&v.Version,
		&v.Content,
		&v.ChangesSummary,
		&v.CreatedBy,
		&v.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return v, nil
}

// Delete deletes a demand letter and its versions (cascade)
func (r *DemandLetterRepository) Delete(ctx context.Context, id, firmID uuid.UUID) error {
	query := `DELETE FROM demand_letters WHERE id = $1 AND firm_id = $2`
	_, err := r.db.Exec(ctx, query, id, firmID)
	return err
}
