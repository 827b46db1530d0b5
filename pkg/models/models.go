// Package models defines the persisted entities of the storefront service.
package models

import "time"

// User represents a customer account.
type User struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// Product represents a purchasable item.
type Product struct {
	ID          int     `json:"id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
}

// Order represents a purchase owned by a user. Products are attached
// through the order_products join and populated only when the caller
// requests an expanded representation.
type Order struct {
	ID        int       `json:"id"`
	OrderDate time.Time `json:"order_date"`
	UserID    int       `json:"user_id"`
	Products  []Product `json:"products,omitempty"`
}
