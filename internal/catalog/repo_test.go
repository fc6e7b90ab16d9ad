package catalog

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsPattern(t *testing.T) {
	cases := map[string]string{
		"phone":       "%phone%",
		"100%":        `%100\%%`,
		"a_b":         `%a\_b%`,
		`c:\path`:     `%c:\\path%`,
		`%_\`:         `%\%\_\\%`,
		"o'brien; --": "%o'brien; --%",
		"Ünïcödé":     "%Ünïcödé%",
	}
	for in, want := range cases {
		assert.Equal(t, want, ContainsPattern(in), in)
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, MaxResults, clampLimit(0))
	assert.Equal(t, MaxResults, clampLimit(-3))
	assert.Equal(t, MaxResults, clampLimit(5000))
	assert.Equal(t, 10, clampLimit(10))
}

type fakeRows struct {
	rows    [][]any
	i       int
	err     error
	scanErr error
}

func (f *fakeRows) Next() bool {
	if f.i >= len(f.rows) {
		return false
	}
	f.i++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	row := f.rows[f.i-1]
	if len(row) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = row[i].(int64)
		case *int:
			*p = row[i].(int)
		case *float64:
			*p = row[i].(float64)
		case *string:
			*p = row[i].(string)
		case *time.Time:
			*p = row[i].(time.Time)
		}
	}
	return nil
}

func (f *fakeRows) Err() error { return f.err }

func TestScanProducts(t *testing.T) {
	rows := &fakeRows{rows: [][]any{
		{int64(1), "Phone", 199.5, "A phone", "/img/1.png", 3},
		{int64(2), "Case", 9.0, "Phone case", "/img/2.png", 0},
	}}
	got, err := scanProducts(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Product{ID: 1, Name: "Phone", Price: 199.5, Description: "A phone", Image: "/img/1.png", Stock: 3}, got[0])

	empty, err := scanProducts(&fakeRows{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = scanProducts(&fakeRows{rows: [][]any{{int64(1)}}})
	assert.Error(t, err)
}

func TestSearchProductsSQL(t *testing.T) {
	assert.Contains(t, searchProductsSQL, `name ILIKE $1 ESCAPE '\'`)
	assert.Contains(t, searchProductsSQL, `description ILIKE $1 ESCAPE '\'`)
	assert.Contains(t, searchProductsSQL, "ORDER BY id")
	assert.Contains(t, searchProductsSQL, "LIMIT $2")
	assert.Equal(t, 2, strings.Count(searchProductsSQL, "$1"))
	assert.Contains(t, ordersSQL, "WHERE user_id = $1")
	assert.Contains(t, ordersSQL, "ORDER BY id")
	assert.Contains(t, orderItemsSQL, "ORDER BY order_id, id")
}

func TestScanOrdersAndAttachItems(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	orders, err := scanOrders(&fakeRows{rows: [][]any{
		{int64(10), d1, "visa-4242"},
		{int64(11), d2, "cash"},
	}})
	require.NoError(t, err)
	require.Len(t, orders, 2)

	err = attachItems(orders, &fakeRows{rows: [][]any{
		{int64(10), int64(100), "Phone", 1, 199.5},
		{int64(10), int64(101), "Case", 2, 9.0},
		{int64(99), int64(900), "Not on this page", 1, 1.0},
	}})
	require.NoError(t, err)

	assert.Equal(t, Order{
		ID:      10,
		Date:    d1,
		Payment: "visa-4242",
		Items: []Item{
			{ID: 100, Name: "Phone", Quantity: 1, Price: 199.5},
			{ID: 101, Name: "Case", Quantity: 2, Price: 9.0},
		},
	}, orders[0])
	assert.Equal(t, int64(11), orders[1].ID)
	assert.NotNil(t, orders[1].Items)
	assert.Empty(t, orders[1].Items)

	b, err := json.Marshal(orders[1])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"items":[]`)
}

func TestScanOrdersEmpty(t *testing.T) {
	orders, err := scanOrders(&fakeRows{})
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)

	b, err := json.Marshal(orders)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestScanOrdersErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := scanOrders(&fakeRows{rows: [][]any{{int64(1), time.Now(), "x"}}, scanErr: boom})
	assert.ErrorIs(t, err, boom)

	_, err = scanOrders(&fakeRows{err: boom})
	assert.ErrorIs(t, err, boom)

	orders := []Order{{ID: 1, Items: []Item{}}}
	err = attachItems(orders, &fakeRows{rows: [][]any{{int64(1), int64(2), "x", 1, 1.0}}, scanErr: boom})
	assert.ErrorIs(t, err, boom)

	err = attachItems(orders, &fakeRows{err: boom})
	assert.ErrorIs(t, err, boom)
}
