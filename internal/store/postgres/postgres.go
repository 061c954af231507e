// Package postgres implements the store contracts on a pgx connection pool.
//
// The stock decrement is a single conditional UPDATE guarded by the observed
// stock value, so two concurrent reservers can never both pass the check
// against stale data. No row locks are taken and no transaction spans the
// read and the write.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
)

// Store is the Postgres-backed implementation of store.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			category    TEXT NOT NULL DEFAULT '',
			price       NUMERIC NOT NULL CHECK (price >= 0),
			stock       INTEGER NOT NULL CHECK (stock >= 0),
			description TEXT NOT NULL DEFAULT '',
			images      TEXT[] NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS cart_lines (
			cart_id    TEXT NOT NULL,
			product_id TEXT NOT NULL,
			name       TEXT NOT NULL,
			price      NUMERIC NOT NULL,
			quantity   INTEGER NOT NULL CHECK (quantity > 0),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (cart_id, product_id)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id         TEXT PRIMARY KEY,
			total      NUMERIC NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_lines (
			order_id   TEXT NOT NULL REFERENCES orders(id),
			product_id TEXT NOT NULL,
			name       TEXT NOT NULL,
			unit_price NUMERIC NOT NULL,
			quantity   INTEGER NOT NULL,
			line_no    INTEGER NOT NULL,
			PRIMARY KEY (order_id, line_no)
		);
	`)
	if err != nil {
		return storeErr("ensure schema", err)
	}
	return nil
}

const productColumns = `id, name, category, price::text, stock, description, images, created_at, updated_at`

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (id, name, category, price, stock, description, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9)
	`, p.ID, p.Name, p.Category, p.Price.String(), p.Stock, p.Description, p.Images, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return storeErr("create product", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, storeErr("get product", err)
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + productColumns + ` FROM products`)

	var conds []string
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Search != "" {
		add(`name ILIKE $%d`, "%"+f.Search+"%")
	}
	if len(f.Categories) > 0 {
		add(`category = ANY($%d)`, f.Categories)
	}
	if f.MinPrice != nil {
		add(`price >= $%d::numeric`, f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		add(`price <= $%d::numeric`, f.MaxPrice.String())
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	switch f.Sort {
	case domain.SortPriceAsc:
		sb.WriteString(" ORDER BY price ASC, created_at ASC")
	case domain.SortPriceDesc:
		sb.WriteString(" ORDER BY price DESC, created_at ASC")
	default:
		sb.WriteString(" ORDER BY created_at ASC")
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	defer rows.Close()

	out := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storeErr("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list products", err)
	}
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Price != nil {
		args = append(args, patch.Price.String())
		sets = append(sets, fmt.Sprintf("price = $%d::numeric", len(args)))
	}
	if patch.Stock != nil {
		set("stock", *patch.Stock)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Images != nil {
		set("images", *patch.Images)
	}
	if len(sets) == 0 {
		return s.GetProduct(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), productColumns)
	row := s.pool.QueryRow(ctx, query, args...)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, storeErr("update product", err)
	}
	return p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (domain.Product, error) {
	row := s.pool.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, storeErr("delete product", err)
	}
	return p, nil
}

func (s *Store) CompareAndDecrementStock(ctx context.Context, id string, observed, qty int) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2,
		    updated_at = NOW()
		WHERE id = $1 AND stock = $3 AND stock >= $2
	`, id, qty, observed)
	if err != nil {
		return false, storeErr("decrement stock", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) GetCart(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, name, price::text, quantity, updated_at
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY product_id
	`, cartID)
	if err != nil {
		return nil, storeErr("get cart", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var (
			line     domain.CartLine
			priceTxt string
		)
		if err := rows.Scan(&line.ProductID, &line.Name, &priceTxt, &line.Quantity, &line.UpdatedAt); err != nil {
			return nil, storeErr("scan cart line", err)
		}
		price, err := decimal.NewFromString(priceTxt)
		if err != nil {
			return nil, storeErr("parse cart price", err)
		}
		line.Price = price
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get cart", err)
	}
	return lines, nil
}

func (s *Store) UpsertCartLine(ctx context.Context, cartID string, line domain.CartLine) (domain.CartLine, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO cart_lines (cart_id, product_id, name, price, quantity, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, NOW())
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity   = cart_lines.quantity + EXCLUDED.quantity,
		    name       = EXCLUDED.name,
		    price      = EXCLUDED.price,
		    updated_at = NOW()
		RETURNING product_id, name, price::text, quantity, updated_at
	`, cartID, line.ProductID, line.Name, line.Price.String(), line.Quantity)

	var (
		merged   domain.CartLine
		priceTxt string
	)
	if err := row.Scan(&merged.ProductID, &merged.Name, &priceTxt, &merged.Quantity, &merged.UpdatedAt); err != nil {
		return domain.CartLine{}, storeErr("upsert cart line", err)
	}
	price, err := decimal.NewFromString(priceTxt)
	if err != nil {
		return domain.CartLine{}, storeErr("parse cart price", err)
	}
	merged.Price = price
	return merged, nil
}

func (s *Store) CreateOrder(ctx context.Context, o domain.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin order tx", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, total, created_at) VALUES ($1, $2::numeric, $3)
	`, o.ID, o.Total.String(), o.CreatedAt)
	if err != nil {
		return storeErr("insert order", err)
	}
	for i, ln := range o.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines (order_id, product_id, name, unit_price, quantity, line_no)
			VALUES ($1, $2, $3, $4::numeric, $5, $6)
		`, o.ID, ln.ProductID, ln.Name, ln.UnitPrice.String(), ln.Quantity, i)
		if err != nil {
			return storeErr("insert order line", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit order", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var (
		o        domain.Order
		totalTxt string
	)
	err := s.pool.QueryRow(ctx, `SELECT id, total::text, created_at FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &totalTxt, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, storeErr("get order", err)
	}
	total, err := decimal.NewFromString(totalTxt)
	if err != nil {
		return domain.Order{}, storeErr("parse order total", err)
	}
	o.Total = total

	rows, err := s.pool.Query(ctx, `
		SELECT product_id, name, unit_price::text, quantity
		FROM order_lines
		WHERE order_id = $1
		ORDER BY line_no
	`, id)
	if err != nil {
		return domain.Order{}, storeErr("get order lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ln       domain.OrderLine
			priceTxt string
		)
		if err := rows.Scan(&ln.ProductID, &ln.Name, &priceTxt, &ln.Quantity); err != nil {
			return domain.Order{}, storeErr("scan order line", err)
		}
		price, err := decimal.NewFromString(priceTxt)
		if err != nil {
			return domain.Order{}, storeErr("parse line price", err)
		}
		ln.UnitPrice = price
		o.Lines = append(o.Lines, ln)
	}
	if err := rows.Err(); err != nil {
		return domain.Order{}, storeErr("get order lines", err)
	}
	return o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p        domain.Product
		priceTxt string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Category, &priceTxt, &p.Stock,
		&p.Description, &p.Images, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	price, err := decimal.NewFromString(priceTxt)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price: %w", err)
	}
	p.Price = price
	return p, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
