package invoice

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

const invoiceColumns = `id, project_id, invoice_number, amount, status, issue_date, due_date,
	payment_date, payment_reference, line_items, notes, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, inv *Invoice) error {
	items, err := encodeLineItems(inv.LineItems)
	if err != nil {
		return err
	}
	now := time.Now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		inv.ID, inv.ProjectID, inv.InvoiceNumber, inv.Amount, inv.Status, inv.IssueDate, inv.DueDate,
		inv.PaymentDate, inv.PaymentReference, items, inv.Notes, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number=$1`, number)
}

func (r *postgresRepo) getOne(ctx context.Context, query string, arg interface{}) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inv, err
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	var args []interface{}
	if f.ProjectID != nil {
		args = append(args, *f.ProjectID)
		query += fmt.Sprintf(` AND project_id=$%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	query += ` ORDER BY issue_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := []*Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, inv *Invoice) error {
	items, err := encodeLineItems(inv.LineItems)
	if err != nil {
		return err
	}
	inv.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE invoices SET amount=$1, status=$2, due_date=$3, payment_date=$4,
		       payment_reference=$5, line_items=$6, notes=$7, updated_at=$8
		WHERE id=$9`,
		inv.Amount, inv.Status, inv.DueDate, inv.PaymentDate,
		inv.PaymentReference, items, inv.Notes, inv.UpdatedAt, inv.ID)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
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

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id=$1`, id)
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

func (r *postgresRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invoices SET status=$1, updated_at=NOW()
		WHERE status=$2 AND due_date < $3`,
		StatusOverdue, StatusSent, today)
	if err != nil {
		return 0, fmt.Errorf("mark overdue invoices: %w", err)
	}
	return res.RowsAffected()
}

// ── Scanners ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanInvoice(row rowScanner) (*Invoice, error) {
	inv := &Invoice{}
	var items []byte
	err := row.Scan(&inv.ID, &inv.ProjectID, &inv.InvoiceNumber, &inv.Amount, &inv.Status,
		&inv.IssueDate, &inv.DueDate, &inv.PaymentDate, &inv.PaymentReference, &items,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.LineItems = []LineItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &inv.LineItems); err != nil {
			return nil, fmt.Errorf("decode line items of invoice %s: %w", inv.InvoiceNumber, err)
		}
	}
	return inv, nil
}

func encodeLineItems(items []LineItem) (string, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode line items: %w", err)
	}
	return string(b), nil
}
