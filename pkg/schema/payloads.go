package schema

import (
	"fmt"
	"time"

	"github.com/marshallshelly/storefront/pkg/models"
)

// Column widths shared with the migrations.
const (
	maxNameLen        = 50
	maxAddressLen     = 200
	maxEmailLen       = 200
	maxProductNameLen = 200
)

// UserPayload is the inbound representation of a user. Pointer fields
// distinguish an absent field from a present zero value.
type UserPayload struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Email   *string `json:"email"`
}

// Validate checks required fields and bounds. It never touches storage.
func (p *UserPayload) Validate() Errors {
	errs := Errors{}
	requireBoundedString(errs, "name", p.Name, maxNameLen)
	requireBoundedString(errs, "address", p.Address, maxAddressLen)
	requireBoundedString(errs, "email", p.Email, maxEmailLen)
	return errs
}

// Model converts a validated payload into a User. Call only after
// Validate reported no errors.
func (p *UserPayload) Model() models.User {
	return models.User{Name: *p.Name, Address: *p.Address, Email: *p.Email}
}

// ProductPayload is the inbound representation of a product.
type ProductPayload struct {
	ProductName *string  `json:"product_name"`
	Price       *float64 `json:"price"`
}

// Validate checks required fields and bounds.
func (p *ProductPayload) Validate() Errors {
	errs := Errors{}
	requireBoundedString(errs, "product_name", p.ProductName, maxProductNameLen)
	if p.Price == nil {
		errs.Add("price", MsgRequired)
	} else if *p.Price < 0 {
		errs.Add("price", MsgNegative)
	}
	return errs
}

// Model converts a validated payload into a Product.
func (p *ProductPayload) Model() models.Product {
	return models.Product{ProductName: *p.ProductName, Price: *p.Price}
}

// OrderPayload is the inbound representation of an order. The owning user
// comes from the URL, not the body; order_date is optional and defaults
// to the time of creation.
type OrderPayload struct {
	OrderDate *time.Time `json:"order_date"`
}

// Validate is trivially satisfied today; a malformed order_date is caught
// at decode time as a datetime type error.
func (p *OrderPayload) Validate() Errors {
	return Errors{}
}

// Model converts the payload into an Order owned by the given user.
func (p *OrderPayload) Model(userID int) models.Order {
	o := models.Order{UserID: userID}
	if p.OrderDate != nil {
		o.OrderDate = *p.OrderDate
	}
	return o
}

// requireBoundedString records a missing field or an over-length value.
func requireBoundedString(errs Errors, field string, value *string, max int) {
	if value == nil {
		errs.Add(field, MsgRequired)
		return
	}
	if len(*value) > max {
		errs.Add(field, fmt.Sprintf(maxLengthFormat, max))
	}
}
