package catalog

import "time"

// MaxResults bounds every list the API returns.
const MaxResults = 100

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock"`
}

type Order struct {
	Items   []Item    `json:"items"`
	ID      int64     `json:"id"`
	Date    time.Time `json:"date"`
	Payment string    `json:"payment"`
}

type Item struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}
