package controller

import (
	"errors"
	"net/http"

	"cafedir/auth"
	"cafedir/form"

	"github.com/gin-gonic/gin"
)

func (ctl *Controller) RegisterForm(c *gin.Context) {
	ctl.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": form.RegisterForm{}})
}

// Register creates the account and sends the visitor to log in. A known email
// is not re-registered.
func (ctl *Controller) Register(c *gin.Context) {
	var f form.RegisterForm
	if err := form.Bind(c.Request, &f); err != nil {
		var errs form.Errors
		if !errors.As(err, &errs) {
			ctl.Abort(c, http.StatusBadRequest)
			return
		}
		f.Password = ""
		ctl.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": f, "Errors": errs})
		return
	}

	user, err := ctl.accounts.Register(c.Request.Context(), f.Name, f.Email, f.Password)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		ctl.flash(c, "You already have an account, Log in")
		ctl.redirect(c, "/login")
		return
	case err != nil:
		ctl.fail(c, err)
		return
	}

	ctl.log.Info().Uint("user_id", user.ID).Msg("user registered")
	ctl.redirect(c, "/login")
}

func (ctl *Controller) LoginForm(c *gin.Context) {
	ctl.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log In", "Form": form.LoginForm{}})
}

// Login answers every credential failure with the same message.
func (ctl *Controller) Login(c *gin.Context) {
	var f form.LoginForm
	if err := form.Bind(c.Request, &f); err != nil {
		var errs form.Errors
		if !errors.As(err, &errs) {
			ctl.Abort(c, http.StatusBadRequest)
			return
		}
		f.Password = ""
		ctl.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log In", "Form": f, "Errors": errs})
		return
	}

	user, err := ctl.accounts.Login(c.Request.Context(), f.Email, f.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		ctl.flash(c, "Email or password does not exist")
		ctl.redirect(c, "/login")
		return
	case err != nil:
		ctl.fail(c, err)
		return
	}

	ctl.sessions.Login(c, user)
	ctl.redirect(c, "/")
}

func (ctl *Controller) Logout(c *gin.Context) {
	if err := ctl.sessions.Logout(c); err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.redirect(c, "/")
}
