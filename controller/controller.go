package controller

import (
	"context"
	"net/http"
	"strconv"

	"cafedir/form"
	"cafedir/model"
	"cafedir/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type CafeStore interface {
	List(ctx context.Context) ([]model.Cafe, error)
	Get(ctx context.Context, id uint) (*model.Cafe, error)
	FindByLocation(ctx context.Context, city string) ([]model.Cafe, error)
	Create(ctx context.Context, cafe *model.Cafe) error
	Update(ctx context.Context, id uint, fields model.Cafe) (*model.Cafe, error)
	Delete(ctx context.Context, id uint) error
}

type Accounts interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
}

// Controller holds everything the route handlers need. It is built once in
// main and shared by all requests.
type Controller struct {
	cafes    CafeStore
	accounts Accounts
	sessions *utils.Manager
	ping     func(ctx context.Context) error
	log      zerolog.Logger
}

type Deps struct {
	Cafes    CafeStore
	Accounts Accounts
	Sessions *utils.Manager
	Ping     func(ctx context.Context) error
	Logger   zerolog.Logger
}

func New(d Deps) *Controller {
	ping := d.Ping
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	return &Controller{
		cafes:    d.Cafes,
		accounts: d.Accounts,
		sessions: d.Sessions,
		ping:     ping,
		log:      d.Logger,
	}
}

var abortMessages = map[int]string{
	http.StatusBadRequest:          "The form could not be accepted. Reload the page and try again.",
	http.StatusForbidden:           "You need to log in to do that.",
	http.StatusNotFound:            "That page does not exist.",
	http.StatusInternalServerError: "Something went wrong on our side.",
}

// render fills in the data every page uses, flushes the session cookie and
// executes the named template.
func (ctl *Controller) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = form.Errors(nil)
	}
	data["CurrentUser"] = utils.CurrentUser(c)
	if s := utils.CurrentSession(c); s != nil {
		data["Flashes"] = s.Flashes()
		data["CSRFToken"] = s.CSRFToken()
	}
	ctl.saveSession(c)
	c.HTML(status, page, data)
}

func (ctl *Controller) redirect(c *gin.Context, location string) {
	ctl.saveSession(c)
	c.Redirect(http.StatusFound, location)
}

func (ctl *Controller) flash(c *gin.Context, msg string) {
	if s := utils.CurrentSession(c); s != nil {
		s.AddFlash(msg)
	}
}

func (ctl *Controller) saveSession(c *gin.Context) {
	if err := ctl.sessions.Save(c); err != nil {
		_ = c.Error(err)
		ctl.log.Error().Err(err).Msg("save session")
	}
}

// Abort renders the error page with status and stops the handler chain.
func (ctl *Controller) Abort(c *gin.Context, status int) {
	text := http.StatusText(status)
	ctl.render(c, status, "error.html", gin.H{
		"Title":      text,
		"Status":     status,
		"StatusText": text,
		"Message":    abortMessages[status],
	})
	c.Abort()
}

// fail logs err and answers 500 without exposing it.
func (ctl *Controller) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	ctl.log.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")
	ctl.Abort(c, http.StatusInternalServerError)
}

// cafeID parses the :id parameter. Anything that is not a positive integer
// is reported as not found.
func cafeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
