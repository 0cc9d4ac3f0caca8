package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cafedir/database"
	"cafedir/form"
	"cafedir/model"

	"github.com/gin-gonic/gin"
)

func (ctl *Controller) Home(c *gin.Context) {
	cafes, err := ctl.cafes.List(c.Request.Context())
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.render(c, http.StatusOK, "index.html", gin.H{"Title": "All Cafes", "Cafes": cafes})
}

func (ctl *Controller) About(c *gin.Context) {
	ctl.render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

func (ctl *Controller) AddCafeForm(c *gin.Context) {
	ctl.renderCafeForm(c, http.StatusOK, form.CafeForm{}, nil, 0)
}

func (ctl *Controller) AddCafe(c *gin.Context) {
	var f form.CafeForm
	if !ctl.bindCafe(c, &f, 0) {
		return
	}

	cafe := f.Cafe()
	err := ctl.cafes.Create(c.Request.Context(), &cafe)
	switch {
	case errors.Is(err, database.ErrDuplicate):
		ctl.flash(c, duplicateCafe(f.Name))
		ctl.renderCafeForm(c, http.StatusConflict, f, nil, 0)
		return
	case err != nil:
		ctl.fail(c, err)
		return
	}

	ctl.log.Info().Uint("cafe_id", cafe.ID).Str("name", cafe.Name).Msg("cafe added")
	ctl.redirect(c, "/")
}

func (ctl *Controller) SearchForm(c *gin.Context) {
	ctl.render(c, http.StatusOK, "search.html", gin.H{"Title": "Search"})
}

// Search looks cafes up by city. The term is title-cased before matching, so
// "new york" finds cafes stored under "New York". A submission without the
// search field is rejected; an empty one is searched as is.
func (ctl *Controller) Search(c *gin.Context) {
	if _, ok := c.GetPostForm("search"); !ok {
		ctl.Abort(c, http.StatusBadRequest)
		return
	}

	var f form.SearchForm
	if err := form.Bind(c.Request, &f); err != nil {
		ctl.Abort(c, http.StatusBadRequest)
		return
	}

	city := f.City()
	cafes, err := ctl.cafes.FindByLocation(c.Request.Context(), city)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	if len(cafes) == 0 {
		ctl.flash(c, "No cafes in "+city)
	}

	ctl.render(c, http.StatusOK, "search.html", gin.H{
		"Title":    "Search",
		"Term":     f.Term,
		"City":     city,
		"Cafes":    cafes,
		"Searched": true,
	})
}

func (ctl *Controller) UpdateCafeForm(c *gin.Context) {
	cafe, ok := ctl.cafeOr404(c)
	if !ok {
		return
	}
	ctl.renderCafeForm(c, http.StatusOK, form.FromCafe(*cafe), nil, cafe.ID)
}

func (ctl *Controller) UpdateCafe(c *gin.Context) {
	cafe, ok := ctl.cafeOr404(c)
	if !ok {
		return
	}

	var f form.CafeForm
	if !ctl.bindCafe(c, &f, cafe.ID) {
		return
	}

	_, err := ctl.cafes.Update(c.Request.Context(), cafe.ID, f.Cafe())
	switch {
	case errors.Is(err, database.ErrNotFound):
		ctl.Abort(c, http.StatusNotFound)
		return
	case errors.Is(err, database.ErrDuplicate):
		ctl.flash(c, duplicateCafe(f.Name))
		ctl.renderCafeForm(c, http.StatusConflict, f, nil, cafe.ID)
		return
	case err != nil:
		ctl.fail(c, err)
		return
	}

	ctl.redirect(c, "/")
}

// DeleteCafe looks the cafe up first so a missing id answers 404 instead of
// silently succeeding.
func (ctl *Controller) DeleteCafe(c *gin.Context) {
	cafe, ok := ctl.cafeOr404(c)
	if !ok {
		return
	}

	err := ctl.cafes.Delete(c.Request.Context(), cafe.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		ctl.Abort(c, http.StatusNotFound)
		return
	case err != nil:
		ctl.fail(c, err)
		return
	}

	ctl.log.Info().Uint("cafe_id", cafe.ID).Str("name", cafe.Name).Msg("cafe deleted")
	ctl.redirect(c, "/")
}

func (ctl *Controller) cafeOr404(c *gin.Context) (*model.Cafe, bool) {
	id, ok := cafeID(c)
	if !ok {
		ctl.Abort(c, http.StatusNotFound)
		return nil, false
	}

	cafe, err := ctl.cafes.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		ctl.Abort(c, http.StatusNotFound)
		return nil, false
	case err != nil:
		ctl.fail(c, err)
		return nil, false
	}
	return cafe, true
}

// bindCafe validates the submitted cafe. On failure it has already answered
// the request.
func (ctl *Controller) bindCafe(c *gin.Context, f *form.CafeForm, id uint) bool {
	err := form.Bind(c.Request, f)
	if err == nil {
		return true
	}

	var errs form.Errors
	if errors.As(err, &errs) {
		ctl.renderCafeForm(c, http.StatusOK, *f, errs, id)
		return false
	}
	ctl.Abort(c, http.StatusBadRequest)
	return false
}

// renderCafeForm shows the add form, or the edit form when id is set.
func (ctl *Controller) renderCafeForm(c *gin.Context, status int, f form.CafeForm, errs form.Errors, id uint) {
	data := gin.H{"Form": f, "Errors": errs, "Title": "Add a Cafe", "Action": "/add"}
	if id != 0 {
		data["Title"] = "Edit Cafe"
		data["Edit"] = true
		data["Action"] = "/update/" + strconv.FormatUint(uint64(id), 10)
	}
	ctl.render(c, status, "add.html", data)
}

func duplicateCafe(name string) string {
	return fmt.Sprintf("A cafe called %q is already listed.", name)
}
