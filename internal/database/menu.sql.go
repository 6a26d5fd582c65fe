package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const categoryColumns = `id, name, icon, display_order, created_at`

func scanCategory(row pgx.Row) (Category, error) {
	var i Category
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Icon,
		&i.DisplayOrder,
		&i.CreatedAt,
	)
	return i, err
}

const listCategories = `SELECT ` + categoryColumns + ` FROM categories ORDER BY display_order, id`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		i, err := scanCategory(rows)
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

const createCategory = `INSERT INTO categories (name, icon, display_order)
VALUES ($1, $2, $3)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	Name         string
	Icon         pgtype.Text
	DisplayOrder int32
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	return scanCategory(q.db.QueryRow(ctx, createCategory, arg.Name, arg.Icon, arg.DisplayOrder))
}

const updateCategory = `UPDATE categories SET
	name = COALESCE($2::text, name),
	icon = COALESCE($3::text, icon),
	display_order = COALESCE($4::integer, display_order)
WHERE id = $1
RETURNING ` + categoryColumns

type UpdateCategoryParams struct {
	ID           int64
	Name         pgtype.Text
	Icon         pgtype.Text
	DisplayOrder pgtype.Int4
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	return scanCategory(q.db.QueryRow(ctx, updateCategory, arg.ID, arg.Name, arg.Icon, arg.DisplayOrder))
}

const deleteCategory = `DELETE FROM categories WHERE id = $1 RETURNING id`

// DeleteCategory fails with a foreign key violation while menu items still
// reference the category.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteCategory, id)
	var deleted int64
	err := row.Scan(&deleted)
	return deleted, err
}

const menuItemColumns = `id, name, description, price, category_id, is_veg, is_available, created_at, updated_at`

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.CategoryID,
		&i.IsVeg,
		&i.IsAvailable,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectMenuItems(rows pgx.Rows) ([]MenuItem, error) {
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		i, err := scanMenuItem(rows)
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

const listMenuItems = `SELECT ` + menuItemColumns + ` FROM menu_items ORDER BY name, id`

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems)
	if err != nil {
		return nil, err
	}
	return collectMenuItems(rows)
}

const listMenuItemsByCategory = `SELECT ` + menuItemColumns + `
FROM menu_items
WHERE category_id = $1
ORDER BY name, id`

func (q *Queries) ListMenuItemsByCategory(ctx context.Context, categoryID int64) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByCategory, categoryID)
	if err != nil {
		return nil, err
	}
	return collectMenuItems(rows)
}

const getMenuItem = `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`

func (q *Queries) GetMenuItem(ctx context.Context, id int64) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, id))
}

const createMenuItem = `INSERT INTO menu_items (name, description, price, category_id, is_veg, is_available)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	Name        string
	Description string
	Price       pgtype.Numeric
	CategoryID  int64
	IsVeg       bool
	IsAvailable bool
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, createMenuItem,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.CategoryID,
		arg.IsVeg,
		arg.IsAvailable,
	))
}

const updateMenuItem = `UPDATE menu_items SET
	name = COALESCE($2::text, name),
	description = COALESCE($3::text, description),
	price = COALESCE($4::numeric, price),
	category_id = COALESCE($5::bigint, category_id),
	is_veg = COALESCE($6::boolean, is_veg),
	is_available = COALESCE($7::boolean, is_available),
	updated_at = now()
WHERE id = $1
RETURNING ` + menuItemColumns

// UpdateMenuItemParams leaves a column untouched when its field is not Valid.
type UpdateMenuItemParams struct {
	ID          int64
	Name        pgtype.Text
	Description pgtype.Text
	Price       pgtype.Numeric
	CategoryID  pgtype.Int8
	IsVeg       pgtype.Bool
	IsAvailable pgtype.Bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, updateMenuItem,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.CategoryID,
		arg.IsVeg,
		arg.IsAvailable,
	))
}

const deleteMenuItem = `DELETE FROM menu_items WHERE id = $1 RETURNING id`

func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteMenuItem, id)
	var deleted int64
	err := row.Scan(&deleted)
	return deleted, err
}
