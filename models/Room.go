package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room statuses. A room that is occupied or under maintenance is never
// offerable, independent of any date range.
const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

type RoomImage struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type Room struct {
	gorm.Model
	CategoryID uint           `json:"categoryID"`
	RoomNumber string         `json:"roomNumber" gorm:"uniqueIndex"`
	Images     datatypes.JSON `json:"images"`
	Status     string         `json:"status" gorm:"type:varchar(20);default:available;index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// Custom JSON marshaling to expose Images as a proper array
func (r *Room) MarshalJSON() ([]byte, error) {
	type Alias Room
	aux := &struct {
		Images []RoomImage `json:"images"`
		*Alias
	}{
		Images: []RoomImage{},
		Alias:  (*Alias)(r),
	}

	if r.Images != nil {
		var images []RoomImage
		if err := json.Unmarshal(r.Images, &images); err == nil {
			aux.Images = images
		}
	}

	return json.Marshal(aux)
}
