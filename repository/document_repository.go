package repository

import (
	"context"
	"fmt"

	"demanddraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for uploaded documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document record
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			firm_id, uploaded_by, filename, file_type, file_size,
			storage_path, virus_scan_status, document_type, metadata
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.FirmID,
		doc.UploadedBy,
		doc.Filename,
		doc.FileType,
		doc.FileSize,
		doc.StoragePath,
		doc.VirusScanStatus,
		doc.DocumentType,
		doc.Metadata,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	return err
}

// GetByID retrieves a document by ID, scoped to a firm
func (r *DocumentRepository) GetByID(ctx context.Context, id, firmID uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, firm_id, uploaded_by, filename, file_type, file_size,
			storage_path, virus_scan_status, document_type, metadata,
			created_at, updated_at
		FROM documents
		WHERE id = $1 AND firm_id = $2`

	err := r.db.QueryRow(ctx, query, id, firmID).Scan(
		&doc.ID,
		&doc.FirmID,
		&doc.UploadedBy,
		&doc.Filename,
		&doc.FileType,
		&doc.FileSize,
		&doc.StoragePath,
		&doc.VirusScanStatus,
		&doc.DocumentType,
		&doc.Metadata,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// ListByFirmID retrieves documents for a firm, newest first
func (r *DocumentRepository) ListByFirmID(ctx context.Context, firmID uuid.UUID, documentType *string, limit, offset int) ([]*models.Document, error) {
	query := `
		SELECT id, firm_id, uploaded_by, filename, file_type, file_size,
			storage_path, virus_scan_status, document_type, metadata,
			created_at, updated_at
		FROM documents
		WHERE firm_id = $1`

	args := []interface{}{firmID}
	argIndex := 2

	if documentType != nil {
		query += fmt.Sprintf(" AND document_type = $%d", argIndex)
		args = append(args, *documentType)
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

	var documents []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.FirmID,
			&doc.UploadedBy,
			&doc.Filename,
			&doc.FileType,
			&doc.FileSize,
			&doc.StoragePath,
			&doc.VirusScanStatus,
			&doc.DocumentType,
			&doc.Metadata,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}

	return documents, rows.Err()
}

// UpdateVirusScanStatus updates the scan status after the scanner reports
func (r *DocumentRepository) UpdateVirusScanStatus(ctx context.Context, id uuid.UUID, status models.VirusScanStatus) error {
	query := `
		UPDATE documents SET
			virus_scan_status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// UpdateMetadata replaces the document's metadata
func (r *DocumentRepository) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata models.DocumentMeta) error {
	query := `
		UPDATE documents SET
			metadata = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, metadata)
	return err
}

// Delete deletes a document record
func (r *DocumentRepository) Delete(ctx context.Context, id, firmID uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1 AND firm_id = $2`
	_, err := r.db.Exec(ctx, query, id, firmID)
	return err
}
