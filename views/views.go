package views

import (
	"embed"
	"html/template"

	"cafedir/form"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded page templates. Each page is addressed by its
// file name, e.g. "index.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"cafeFields": CafeFields,
	}).ParseFS(files, "templates/*.html")
}

type Field struct {
	Name     string
	Label    string
	Value    string
	Error    string
	Required bool
}

var cafeLabels = map[string]string{
	"name":           "Cafe Name",
	"map_url":        "Maps Location",
	"img_url":        "Image URL",
	"description":    "Cafe Description",
	"location":       "Location of Cafe",
	"seats":          "Amount of Seats",
	"has_toilet":     "Toilets",
	"has_wifi":       "Wifi",
	"has_sockets":    "Sockets",
	"can_take_calls": "Take Calls",
	"coffee_price":   "Coffee Price",
}

// CafeFields lays out the add/edit form in field order.
func CafeFields(f form.CafeForm, errs form.Errors) []Field {
	values := f.Row()
	out := make([]Field, len(form.CafeFields))
	for i, name := range form.CafeFields {
		out[i] = Field{
			Name:     name,
			Label:    cafeLabels[name],
			Value:    values[i],
			Error:    errs.For(name),
			Required: name != "coffee_price",
		}
	}
	return out
}
