package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-product-search/internal/search"
)

type Repo struct{ DB *pgxpool.Pool }

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxResults {
		return MaxResults
	}
	return limit
}

const productColumns = `id, name, price, description, image, stock`

func (r *Repo) ListProducts(ctx context.Context, limit int) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

const searchProductsSQL = `
	SELECT ` + productColumns + `
	FROM products
	WHERE name ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'
	ORDER BY id
	LIMIT $2`

// SearchProducts matches q case-insensitively as a literal substring of the
// product name or description. LIKE wildcards in q are escaped.
func (r *Repo) SearchProducts(ctx context.Context, q search.Query, limit int) ([]Product, error) {
	rows, err := r.DB.Query(ctx, searchProductsSQL, ContainsPattern(q.String()), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

type scanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanProducts(rows scanner) ([]Product, error) {
	out := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Image, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const (
	ordersSQL = `
	SELECT id, created_at, payment_data
	FROM orders
	WHERE user_id = $1
	ORDER BY id
	LIMIT $2`

	orderItemsSQL = `
	SELECT order_id, id, name, quantity, price
	FROM items
	WHERE order_id = ANY($1)
	ORDER BY order_id, id`
)

// PurchaseHistory returns the user's orders ordered by id, each with its
// items. Items are fetched in one round trip for the whole page.
func (r *Repo) PurchaseHistory(ctx context.Context, userID int64, limit int) ([]Order, error) {
	rows, err := r.DB.Query(ctx, ordersSQL, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders, err := scanOrders(rows)
	rows.Close()
	if err != nil || len(orders) == 0 {
		return orders, err
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	itemRows, err := r.DB.Query(ctx, orderItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer itemRows.Close()
	if err := attachItems(orders, itemRows); err != nil {
		return nil, err
	}
	return orders, nil
}

// scanOrders reads order rows. Every order starts with an empty, non-nil
// item list so it encodes as [].
func scanOrders(rows scanner) ([]Order, error) {
	orders := make([]Order, 0)
	for rows.Next() {
		o := Order{Items: []Item{}}
		if err := rows.Scan(&o.ID, &o.Date, &o.Payment); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// attachItems appends each (order_id, item) row to its order. Rows for
// orders outside the page are dropped.
func attachItems(orders []Order, rows scanner) error {
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		index[o.ID] = i
	}
	for rows.Next() {
		var (
			orderID int64
			it      Item
		)
		if err := rows.Scan(&orderID, &it.ID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns a literal term into a LIKE pattern matching any
// value that contains it. Use with ESCAPE '\'.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
