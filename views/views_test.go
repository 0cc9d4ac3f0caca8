package views

import (
	"bytes"
	"testing"

	"cafedir/form"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{
		"index.html", "register.html", "login.html", "add.html",
		"search.html", "about.html", "import.html", "error.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestCafeFields(t *testing.T) {
	fields := CafeFields(form.CafeForm{Name: "Joe's"}, form.Errors{{Field: "map_url", Message: "Invalid URL."}})

	require.Len(t, fields, len(form.CafeFields))
	assert.Equal(t, Field{Name: "name", Label: "Cafe Name", Value: "Joe's", Required: true}, fields[0])
	assert.Equal(t, "Invalid URL.", fields[1].Error)
	assert.False(t, fields[len(fields)-1].Required)
}

func TestIndexEscapesCafeText(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "index.html", map[string]any{
		"Title": "Cafes",
		"Cafes": []map[string]any{{
			"ID": 1, "Name": "<b>Joe's</b>", "ImgURL": "https://img.example.com/j.jpg",
			"MapURL": "https://maps.example.com", "Location": "London",
		}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "&lt;b&gt;Joe&#39;s&lt;/b&gt;")
}
