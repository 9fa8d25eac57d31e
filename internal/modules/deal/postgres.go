package deal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const dealColumns = `id, client_name, client_email, client_phone, organization,
	event_title, event_date, event_location, event_type, attendee_count,
	speaker_name, speaker_fee, deal_value, status, priority, source, notes,
	lost_reason, lost_details, lost_follow_up, lost_follow_up_date,
	commission_percentage, commission_amount,
	payment_status, partial_payment_amount, payment_date, won_date,
	contract_url, contract_sent_date, invoice_url, invoice_sent_date,
	created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, d *Deal) error {
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deals (`+dealColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
		        $18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33)`,
		d.ID, d.ClientName, d.ClientEmail, d.ClientPhone, d.Organization,
		d.EventTitle, d.EventDate, d.EventLocation, d.EventType, d.AttendeeCount,
		d.SpeakerName, d.SpeakerFee, d.DealValue, d.Status, d.Priority, d.Source, d.Notes,
		d.LostReason, d.LostDetails, d.LostFollowUp, d.LostFollowUpDate,
		d.CommissionPercentage, d.CommissionAmount,
		d.PaymentStatus, d.PartialPaymentAmount, d.PaymentDate, d.WonDate,
		d.ContractURL, d.ContractSentDate, d.InvoiceURL, d.InvoiceSentDate,
		d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert deal: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Deal, error) {
	d, err := scanDeal(r.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE 1=1`
	var args []interface{}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (client_name ILIKE $%d OR client_email ILIKE $%d
			OR organization ILIKE $%d OR event_title ILIKE $%d)`, n, n, n, n)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := []*Deal{}
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, d *Deal) error {
	d.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE deals SET
		  client_name=$1, client_email=$2, client_phone=$3, organization=$4,
		  event_title=$5, event_date=$6, event_location=$7, event_type=$8, attendee_count=$9,
		  speaker_name=$10, speaker_fee=$11, deal_value=$12, status=$13, priority=$14,
		  source=$15, notes=$16, lost_reason=$17, lost_details=$18, lost_follow_up=$19,
		  lost_follow_up_date=$20, commission_percentage=$21, commission_amount=$22,
		  payment_status=$23, partial_payment_amount=$24, payment_date=$25, won_date=$26,
		  contract_url=$27, contract_sent_date=$28, invoice_url=$29, invoice_sent_date=$30,
		  updated_at=$31
		WHERE id=$32`,
		d.ClientName, d.ClientEmail, d.ClientPhone, d.Organization,
		d.EventTitle, d.EventDate, d.EventLocation, d.EventType, d.AttendeeCount,
		d.SpeakerName, d.SpeakerFee, d.DealValue, d.Status, d.Priority,
		d.Source, d.Notes, d.LostReason, d.LostDetails, d.LostFollowUp,
		d.LostFollowUpDate, d.CommissionPercentage, d.CommissionAmount,
		d.PaymentStatus, d.PartialPaymentAmount, d.PaymentDate, d.WonDate,
		d.ContractURL, d.ContractSentDate, d.InvoiceURL, d.InvoiceSentDate,
		d.UpdatedAt, d.ID)
	if err != nil {
		return fmt.Errorf("update deal: %w", err)
	}
	return expectOne(res)
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deals WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ── Scanners ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanDeal(row rowScanner) (*Deal, error) {
	d := &Deal{}
	var pct, amount sql.NullFloat64
	var contractSent, invoiceSent sql.NullTime
	err := row.Scan(&d.ID, &d.ClientName, &d.ClientEmail, &d.ClientPhone, &d.Organization,
		&d.EventTitle, &d.EventDate, &d.EventLocation, &d.EventType, &d.AttendeeCount,
		&d.SpeakerName, &d.SpeakerFee, &d.DealValue, &d.Status, &d.Priority, &d.Source, &d.Notes,
		&d.LostReason, &d.LostDetails, &d.LostFollowUp, &d.LostFollowUpDate,
		&pct, &amount,
		&d.PaymentStatus, &d.PartialPaymentAmount, &d.PaymentDate, &d.WonDate,
		&d.ContractURL, &contractSent, &d.InvoiceURL, &invoiceSent,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if pct.Valid {
		d.CommissionPercentage = &pct.Float64
	}
	if amount.Valid {
		d.CommissionAmount = &amount.Float64
	}
	if contractSent.Valid {
		d.ContractSentDate = &contractSent.Time
	}
	if invoiceSent.Valid {
		d.InvoiceSentDate = &invoiceSent.Time
	}
	return withCommission(d), nil
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
