package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const projectColumns = `id, deal_id, contract_id, project_name, client_name, client_email,
	organization, event_title, event_date, event_location, speaker_name, speaker_fee,
	budget, status, stage_completion, notes, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, p *Project) error {
	checklist, err := encodeChecklist(p.StageCompletion)
	if err != nil {
		return err
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		p.ID, p.DealID, p.ContractID, p.ProjectName, p.ClientName, p.ClientEmail,
		p.Organization, p.EventTitle, p.EventDate, p.EventLocation, p.SpeakerName, p.SpeakerFee,
		p.Budget, p.Status, checklist, p.Notes, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *postgresRepo) List(ctx context.Context, status string) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []interface{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY event_date ASC NULLS LAST, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, p *Project) error {
	checklist, err := encodeChecklist(p.StageCompletion)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET project_name=$1, client_name=$2, client_email=$3, organization=$4,
		       event_title=$5, event_date=$6, event_location=$7, speaker_name=$8, speaker_fee=$9,
		       budget=$10, status=$11, stage_completion=$12, notes=$13, updated_at=$14
		WHERE id=$15`,
		p.ProjectName, p.ClientName, p.ClientEmail, p.Organization,
		p.EventTitle, p.EventDate, p.EventLocation, p.SpeakerName, p.SpeakerFee,
		p.Budget, p.Status, checklist, p.Notes, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return expectOne(res)
}

func (r *postgresRepo) UpdateChecklist(ctx context.Context, id uuid.UUID, checklist Checklist) error {
	encoded, err := encodeChecklist(checklist)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET stage_completion=$1, updated_at=$2 WHERE id=$3`,
		encoded, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update checklist: %w", err)
	}
	return expectOne(res)
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ── Scanners ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanProject(row rowScanner) (*Project, error) {
	p := &Project{}
	var dealID, contractID uuid.NullUUID
	var checklist []byte
	err := row.Scan(&p.ID, &dealID, &contractID, &p.ProjectName, &p.ClientName, &p.ClientEmail,
		&p.Organization, &p.EventTitle, &p.EventDate, &p.EventLocation, &p.SpeakerName, &p.SpeakerFee,
		&p.Budget, &p.Status, &checklist, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dealID.Valid {
		p.DealID = &dealID.UUID
	}
	if contractID.Valid {
		p.ContractID = &contractID.UUID
	}
	p.StageCompletion = Checklist{}
	if len(checklist) > 0 {
		if err := json.Unmarshal(checklist, &p.StageCompletion); err != nil {
			return nil, fmt.Errorf("decode stage_completion of project %s: %w", p.ID, err)
		}
	}
	p.Status = MigrateLegacyStatus(p.Status)
	return p, nil
}

func encodeChecklist(c Checklist) (string, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode stage_completion: %w", err)
	}
	return string(b), nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
