package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, phone, name, email, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Phone,
		&i.Name,
		&i.Email,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserByPhone = `SELECT ` + userColumns + ` FROM users WHERE phone = $1`

func (q *Queries) GetUserByPhone(ctx context.Context, phone string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByPhone, phone))
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const createUser = `INSERT INTO users (phone, name, email)
VALUES ($1, $2, $3)
RETURNING ` + userColumns

type CreateUserParams struct {
	Phone string
	Name  pgtype.Text
	Email pgtype.Text
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, createUser, arg.Phone, arg.Name, arg.Email))
}

const updateUser = `UPDATE users SET
	name = COALESCE($2::text, name),
	email = COALESCE($3::text, email),
	updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

type UpdateUserParams struct {
	ID    uuid.UUID
	Name  pgtype.Text
	Email pgtype.Text
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, updateUser, arg.ID, arg.Name, arg.Email))
}

const addressColumns = `id, user_id, label, address_line1, address_line2, city, state, pincode,
	landmark, is_default, created_at`

func scanAddress(row pgx.Row) (Address, error) {
	var i Address
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Label,
		&i.AddressLine1,
		&i.AddressLine2,
		&i.City,
		&i.State,
		&i.Pincode,
		&i.Landmark,
		&i.IsDefault,
		&i.CreatedAt,
	)
	return i, err
}

const listAddressesByUser = `SELECT ` + addressColumns + `
FROM addresses
WHERE user_id = $1
ORDER BY is_default DESC, created_at DESC`

func (q *Queries) ListAddressesByUser(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	rows, err := q.db.Query(ctx, listAddressesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Address
	for rows.Next() {
		i, err := scanAddress(rows)
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

const createAddress = `INSERT INTO addresses (
	user_id, label, address_line1, address_line2, city, state, pincode, landmark, is_default
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + addressColumns

type CreateAddressParams struct {
	UserID       uuid.UUID
	Label        string
	AddressLine1 string
	AddressLine2 pgtype.Text
	City         string
	State        string
	Pincode      string
	Landmark     pgtype.Text
	IsDefault    bool
}

func (q *Queries) CreateAddress(ctx context.Context, arg CreateAddressParams) (Address, error) {
	return scanAddress(q.db.QueryRow(ctx, createAddress,
		arg.UserID,
		arg.Label,
		arg.AddressLine1,
		arg.AddressLine2,
		arg.City,
		arg.State,
		arg.Pincode,
		arg.Landmark,
		arg.IsDefault,
	))
}

const clearDefaultAddress = `UPDATE addresses SET is_default = false WHERE user_id = $1 AND is_default`

func (q *Queries) ClearDefaultAddress(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.Exec(ctx, clearDefaultAddress, userID)
	return err
}

const deleteAddress = `DELETE FROM addresses WHERE id = $1 AND user_id = $2 RETURNING id`

type DeleteAddressParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) DeleteAddress(ctx context.Context, arg DeleteAddressParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteAddress, arg.ID, arg.UserID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const updateAddress = `UPDATE addresses SET
	label = COALESCE($3::text, label),
	address_line1 = COALESCE($4::text, address_line1),
	address_line2 = COALESCE($5::text, address_line2),
	city = COALESCE($6::text, city),
	state = COALESCE($7::text, state),
	pincode = COALESCE($8::text, pincode),
	landmark = COALESCE($9::text, landmark),
	is_default = COALESCE($10::boolean, is_default)
WHERE id = $1 AND user_id = $2
RETURNING ` + addressColumns

// UpdateAddressParams leaves a column untouched when its field is not Valid.
type UpdateAddressParams struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Label        pgtype.Text
	AddressLine1 pgtype.Text
	AddressLine2 pgtype.Text
	City         pgtype.Text
	State        pgtype.Text
	Pincode      pgtype.Text
	Landmark     pgtype.Text
	IsDefault    pgtype.Bool
}

func (q *Queries) UpdateAddress(ctx context.Context, arg UpdateAddressParams) (Address, error) {
	return scanAddress(q.db.QueryRow(ctx, updateAddress,
		arg.ID,
		arg.UserID,
		arg.Label,
		arg.AddressLine1,
		arg.AddressLine2,
		arg.City,
		arg.State,
		arg.Pincode,
		arg.Landmark,
		arg.IsDefault,
	))
}
