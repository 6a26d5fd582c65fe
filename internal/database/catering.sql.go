package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const cateringColumns = `id, inquiry_number, customer_name, customer_phone, customer_email,
	event_type, event_date, guest_count, venue, budget, requirements, status, created_at`

func scanCateringInquiry(row pgx.Row) (CateringInquiry, error) {
	var i CateringInquiry
	err := row.Scan(
		&i.ID,
		&i.InquiryNumber,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.CustomerEmail,
		&i.EventType,
		&i.EventDate,
		&i.GuestCount,
		&i.Venue,
		&i.Budget,
		&i.Requirements,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

const createCateringInquiry = `INSERT INTO catering_inquiries (
	inquiry_number, customer_name, customer_phone, customer_email, event_type,
	event_date, guest_count, venue, budget, requirements, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + cateringColumns

type CreateCateringInquiryParams struct {
	InquiryNumber string
	CustomerName  string
	CustomerPhone string
	CustomerEmail pgtype.Text
	EventType     string
	EventDate     pgtype.Date
	GuestCount    pgtype.Int4
	Venue         pgtype.Text
	Budget        pgtype.Text
	Requirements  pgtype.Text
	Status        string
}

func (q *Queries) CreateCateringInquiry(ctx context.Context, arg CreateCateringInquiryParams) (CateringInquiry, error) {
	return scanCateringInquiry(q.db.QueryRow(ctx, createCateringInquiry,
		arg.InquiryNumber,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.CustomerEmail,
		arg.EventType,
		arg.EventDate,
		arg.GuestCount,
		arg.Venue,
		arg.Budget,
		arg.Requirements,
		arg.Status,
	))
}

const listCateringInquiries = `SELECT ` + cateringColumns + `
FROM catering_inquiries
ORDER BY created_at DESC
LIMIT $1`

func (q *Queries) ListCateringInquiries(ctx context.Context, limit int32) ([]CateringInquiry, error) {
	rows, err := q.db.Query(ctx, listCateringInquiries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CateringInquiry
	for rows.Next() {
		i, err := scanCateringInquiry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
