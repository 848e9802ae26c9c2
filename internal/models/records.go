// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package models

// Credentials are shared by User and Admin. Password is accepted on input
// only; the store keeps the bcrypt hash.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Name     string `json:"name,omitempty"`
	Hash     string `json:"password_hash,omitempty"`
	Password string `json:"password,omitempty"`
}

// Login returns the username.
func (c *Credentials) Login() string { return c.Username }

// PlainPassword returns the write-time password input.
func (c *Credentials) PlainPassword() string { return c.Password }

// PasswordHash returns the stored bcrypt hash.
func (c *Credentials) PasswordHash() string { return c.Hash }

// SetPasswordHash stores hash and drops the plain password.
func (c *Credentials) SetPasswordHash(hash string) {
	c.Hash = hash
	c.Password = ""
}

// Sanitize clears both password fields.
func (c *Credentials) Sanitize() {
	c.Hash = ""
	c.Password = ""
}

// User is a staff login.
type User struct {
	Base
	Credentials
	Role string `json:"role,omitempty" validate:"omitempty,oneof=staff manager"`
}

// Collection implements Record.
func (*User) Collection() Collection { return CollectionUser }

// Admin is an administrator login; admins can use the API.
type Admin struct {
	Base
	Credentials
}

// Collection implements Record.
func (*Admin) Collection() Collection { return CollectionAdmin }

// Room is a rentable guest-house room.
type Room struct {
	Base
	RoomNumber int     `json:"room_number" validate:"required,gte=1"`
	Type       string  `json:"type" validate:"required"`
	Rate       float64 `json:"rate" validate:"gte=0"`
	Status     string  `json:"status,omitempty" validate:"omitempty,oneof=available occupied maintenance"`
}

// Collection implements Record.
func (*Room) Collection() Collection { return CollectionRoom }

// GuestEntry is one guest-house stay.
type GuestEntry struct {
	Base
	DateStamp
	GuestName     string  `json:"guest_name" validate:"required"`
	Phone         string  `json:"phone,omitempty"`
	RoomNumber    int     `json:"room_number" validate:"gte=0"`
	CheckIn       string  `json:"check_in,omitempty" validate:"omitempty,day"`
	CheckOut      string  `json:"check_out,omitempty" validate:"omitempty,day"`
	Guests        int     `json:"guests,omitempty" validate:"gte=0"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	PaymentMethod string  `json:"payment_method,omitempty" validate:"omitempty,oneof=cash upi card bank other"`
}

// Collection implements Record.
func (*GuestEntry) Collection() Collection { return CollectionGuestEntry }

// RestEntry is one restaurant cash day.
type RestEntry struct {
	Base
	DateStamp
	CashSales   float64    `json:"cash_sales" validate:"gte=0"`
	OnlineSales float64    `json:"online_sales" validate:"gte=0"`
	Expenses    []LineItem `json:"expenses" validate:"dive"`
	Notes       string     `json:"notes,omitempty"`
}

// Collection implements Record.
func (*RestEntry) Collection() Collection { return CollectionRestEntry }

// Items implements Itemized.
func (e *RestEntry) Items(field string) ([]LineItem, bool) {
	if field == "expenses" {
		return e.Expenses, true
	}
	return nil, false
}

// RestStaff is a restaurant employee.
type RestStaff struct {
	Base
	Name     string  `json:"name" validate:"required"`
	Role     string  `json:"role,omitempty"`
	Phone    string  `json:"phone,omitempty"`
	Salary   float64 `json:"salary" validate:"gte=0"`
	JoinedOn string  `json:"joined_on,omitempty" validate:"omitempty,day"`
}

// Collection implements Record.
func (*RestStaff) Collection() Collection { return CollectionRestStaff }

// RestPending is an outstanding restaurant due.
type RestPending struct {
	Base
	DateStamp
	Name    string  `json:"name" validate:"required"`
	Amount  float64 `json:"amount" validate:"gte=0"`
	Reason  string  `json:"reason,omitempty"`
	Settled bool    `json:"settled"`
}

// Collection implements Record.
func (*RestPending) Collection() Collection { return CollectionRestPending }

// OfficeEntry is one day of office expenses.
type OfficeEntry struct {
	Base
	DateStamp
	Expenses []LineItem `json:"expenses" validate:"dive"`
	Notes    string     `json:"notes,omitempty"`
}

// Collection implements Record.
func (*OfficeEntry) Collection() Collection { return CollectionOfficeEntry }

// Items implements Itemized.
func (e *OfficeEntry) Items(field string) ([]LineItem, bool) {
	if field == "expenses" {
		return e.Expenses, true
	}
	return nil, false
}

// OfficeCategory is an expense category offered to office staff.
type OfficeCategory struct {
	Base
	Name string `json:"name" validate:"required"`
}

// Collection implements Record.
func (*OfficeCategory) Collection() Collection { return CollectionOfficeCategory }
