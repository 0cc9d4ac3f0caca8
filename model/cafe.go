package model

// Cafe is a directory entry. Amenity columns are free text on purpose:
// listings show values like "Yes" or "2 plugs near window".
type Cafe struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"size:250;uniqueIndex;not null"`
	MapURL       string `json:"map_url" gorm:"size:500;not null"`
	ImgURL       string `json:"img_url" gorm:"size:500;not null"`
	Description  string `json:"description" gorm:"not null"`
	Location     string `json:"location" gorm:"size:250;index;not null"`
	Seats        string `json:"seats" gorm:"size:250;not null"`
	HasToilet    string `json:"has_toilet" gorm:"size:250;not null"`
	HasWifi      string `json:"has_wifi" gorm:"size:250;not null"`
	HasSockets   string `json:"has_sockets" gorm:"size:250;not null"`
	CanTakeCalls string `json:"can_take_calls" gorm:"size:250;not null"`
	CoffeePrice  string `json:"coffee_price" gorm:"size:250"`
}

func (Cafe) TableName() string {
	return "cafes"
}

// Overwrite copies every mutable field from src, leaving ID untouched.
func (c *Cafe) Overwrite(src Cafe) {
	id := c.ID
	*c = src
	c.ID = id
}
