package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Feature is a single selling point of a category, e.g. {"Sea View", "waves"}.
type Feature struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

type Category struct {
	gorm.Model
	Name        string         `json:"name" gorm:"uniqueIndex"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Currency    string         `json:"currency" gorm:"type:varchar(8);default:LKR"`
	Features    datatypes.JSON `json:"features"`
	Popular     bool           `json:"popular" gorm:"default:false"`
}

// Custom JSON marshaling to expose Features as a proper array
func (c *Category) MarshalJSON() ([]byte, error) {
	type Alias Category
	aux := &struct {
		Features []Feature `json:"features"`
		*Alias
	}{
		Features: []Feature{},
		Alias:    (*Alias)(c),
	}

	if c.Features != nil {
		var features []Feature
		if err := json.Unmarshal(c.Features, &features); err == nil {
			aux.Features = features
		}
	}

	return json.Marshal(aux)
}
