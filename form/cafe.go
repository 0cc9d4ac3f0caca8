package form

import (
	"strings"

	"cafedir/model"
)

type CafeForm struct {
	Name         string `form:"name" binding:"required,max=250"`
	MapURL       string `form:"map_url" binding:"required,http_url,max=500"`
	ImgURL       string `form:"img_url" binding:"required,http_url,max=500"`
	Description  string `form:"description" binding:"required"`
	Location     string `form:"location" binding:"required,max=250"`
	Seats        string `form:"seats" binding:"required,max=250"`
	HasToilet    string `form:"has_toilet" binding:"required,max=250"`
	HasWifi      string `form:"has_wifi" binding:"required,max=250"`
	HasSockets   string `form:"has_sockets" binding:"required,max=250"`
	CanTakeCalls string `form:"can_take_calls" binding:"required,max=250"`
	CoffeePrice  string `form:"coffee_price" binding:"max=250"`
}

// CafeFields lists the submitted field names in form order.
var CafeFields = []string{
	"name", "map_url", "img_url", "description", "location", "seats",
	"has_toilet", "has_wifi", "has_sockets", "can_take_calls", "coffee_price",
}

func (f *CafeForm) Normalize() {
	for _, s := range []*string{
		&f.Name, &f.MapURL, &f.ImgURL, &f.Description, &f.Location, &f.Seats,
		&f.HasToilet, &f.HasWifi, &f.HasSockets, &f.CanTakeCalls, &f.CoffeePrice,
	} {
		*s = strings.TrimSpace(*s)
	}
}

func (f CafeForm) Cafe() model.Cafe {
	return model.Cafe{
		Name:         f.Name,
		MapURL:       f.MapURL,
		ImgURL:       f.ImgURL,
		Description:  f.Description,
		Location:     f.Location,
		Seats:        f.Seats,
		HasToilet:    f.HasToilet,
		HasWifi:      f.HasWifi,
		HasSockets:   f.HasSockets,
		CanTakeCalls: f.CanTakeCalls,
		CoffeePrice:  f.CoffeePrice,
	}
}

// FromCafe pre-fills the edit form.
func FromCafe(c model.Cafe) CafeForm {
	return CafeForm{
		Name:         c.Name,
		MapURL:       c.MapURL,
		ImgURL:       c.ImgURL,
		Description:  c.Description,
		Location:     c.Location,
		Seats:        c.Seats,
		HasToilet:    c.HasToilet,
		HasWifi:      c.HasWifi,
		HasSockets:   c.HasSockets,
		CanTakeCalls: c.CanTakeCalls,
		CoffeePrice:  c.CoffeePrice,
	}
}

// Row returns the values in CafeFields order.
func (f CafeForm) Row() []string {
	return []string{
		f.Name, f.MapURL, f.ImgURL, f.Description, f.Location, f.Seats,
		f.HasToilet, f.HasWifi, f.HasSockets, f.CanTakeCalls, f.CoffeePrice,
	}
}
