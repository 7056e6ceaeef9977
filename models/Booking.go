package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Billing is the payment block captured at creation time. All fields are
// required and normalized before persisting (trimmed, email lowercased,
// card number stripped of whitespace).
type Billing struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
	CardNumber string `json:"cardNumber"`
}

// MaskedCardNumber keeps only the last four digits for API responses.
func (b Billing) MaskedCardNumber() string {
	if len(b.CardNumber) <= 4 {
		return b.CardNumber
	}
	return "**** **** **** " + b.CardNumber[len(b.CardNumber)-4:]
}

type Booking struct {
	gorm.Model
	UserID           uint      `json:"userID" gorm:"index"`
	RoomID           uint      `json:"roomID" gorm:"index"`
	CategoryID       uint      `json:"categoryID"`
	CheckInDate      time.Time `json:"checkInDate"`
	CheckOutDate     time.Time `json:"checkOutDate"`
	NumberOfAdults   int       `json:"numberOfAdults"`
	NumberOfChildren int       `json:"numberOfChildren"`
	TotalPrice       float64   `json:"totalPrice"`
	Status           string    `json:"status" gorm:"type:varchar(20);default:pending;index"`
	Billing          Billing   `json:"billing" gorm:"embedded;embeddedPrefix:billing_"`

	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Room     *Room     `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// Custom JSON marshaling so the stored card number never leaves the server
// in full.
func (b *Booking) MarshalJSON() ([]byte, error) {
	type Alias Booking
	aux := &struct {
		*Alias
		Billing Billing `json:"billing"`
	}{
		Alias:   (*Alias)(b),
		Billing: b.Billing,
	}
	aux.Billing.CardNumber = b.Billing.MaskedCardNumber()

	return json.Marshal(aux)
}
