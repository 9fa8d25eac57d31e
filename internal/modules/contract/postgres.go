package contract

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

const contractColumns = `id, deal_id, contract_number, status, amount, body, terms,
	contract_url, recipient_email, generated_at, sent_at, completed_at, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, c *Contract) error {
	terms, err := json.Marshal(c.Terms)
	if err != nil {
		return fmt.Errorf("marshal terms: %w", err)
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO contracts (`+contractColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		c.ID, c.DealID, c.ContractNumber, c.Status, c.Amount, c.Body, string(terms),
		c.ContractURL, c.RecipientEmail, c.GeneratedAt, c.SentAt, c.CompletedAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Contract, error) {
	c, err := scanContract(r.db.QueryRowContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`
	var args []interface{}
	if f.DealID != nil {
		args = append(args, *f.DealID)
		query += fmt.Sprintf(` AND deal_id=$%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	query += ` ORDER BY generated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := []*Contract{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, c *Contract) error {
	terms, err := json.Marshal(c.Terms)
	if err != nil {
		return fmt.Errorf("marshal terms: %w", err)
	}
	c.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE contracts SET status=$1, amount=$2, body=$3, terms=$4, contract_url=$5,
		       recipient_email=$6, sent_at=$7, completed_at=$8, updated_at=$9
		WHERE id=$10`,
		c.Status, c.Amount, c.Body, string(terms), c.ContractURL,
		c.RecipientEmail, c.SentAt, c.CompletedAt, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update contract: %w", err)
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

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanContract(row rowScanner) (*Contract, error) {
	c := &Contract{}
	var terms []byte
	var sentAt, completedAt sql.NullTime
	err := row.Scan(&c.ID, &c.DealID, &c.ContractNumber, &c.Status, &c.Amount, &c.Body, &terms,
		&c.ContractURL, &c.RecipientEmail, &c.GeneratedAt, &sentAt, &completedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(terms) > 0 {
		if err := json.Unmarshal(terms, &c.Terms); err != nil {
			return nil, fmt.Errorf("decode terms of contract %s: %w", c.ID, err)
		}
	}
	if sentAt.Valid {
		c.SentAt = &sentAt.Time
	}
	if completedAt.Valid {
		c.CompletedAt = &completedAt.Time
	}
	return c, nil
}
