package route

import (
	"net/http"
	"time"

	"cafedir/controller"
	"cafedir/logger"
	"cafedir/utils"
	"cafedir/views"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Options struct {
	Controller     *controller.Controller
	Sessions       *utils.Manager
	Users          utils.UserFinder
	Logger         zerolog.Logger
	AllowedOrigins []string
}

// NewRouter builds the engine with logging, recovery, CORS and the page
// templates installed, then registers every route.
func NewRouter(o Options) (*gin.Engine, error) {
	tmpl, err := views.Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(logger.Middleware(o.Logger))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		o.Logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		o.Controller.Abort(c, http.StatusInternalServerError)
	}))

	corsConfig := cors.Config{
		AllowOrigins:     o.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", utils.CSRFHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))
	router.SetHTMLTemplate(tmpl)

	router.GET("/healthz", o.Controller.Health)
	CafeRoutes(router, o.Controller, utils.Sessions(o.Sessions, o.Users, o.Controller.Abort))
	return router, nil
}

// CafeRoutes registers the site pages. Mutating routes check the login
// before the CSRF token, so anonymous writes are always 403. The GET links
// that change state carry the token in their query string.
func CafeRoutes(router *gin.Engine, ctl *controller.Controller, sessions gin.HandlerFunc) {
	csrf := utils.CSRF(ctl.Abort)
	csrfLink := utils.CSRFLink(ctl.Abort)

	site := router.Group("/", sessions)
	{
		site.GET("/", ctl.Home)
		site.GET("/about", ctl.About)
		site.GET("/search", ctl.SearchForm)
		site.POST("/search", ctl.Search)
		site.GET("/export", ctl.ExportCafes)
		site.GET("/register", ctl.RegisterForm)
		site.POST("/register", csrf, ctl.Register)
		site.GET("/login", ctl.LoginForm)
		site.POST("/login", csrf, ctl.Login)
	}

	member := site.Group("/", utils.RequireLogin(ctl.Abort))
	{
		member.GET("/logout", csrfLink, ctl.Logout)
		member.GET("/add", ctl.AddCafeForm)
		member.POST("/add", csrf, ctl.AddCafe)
		member.GET("/update/:id", ctl.UpdateCafeForm)
		member.POST("/update/:id", csrf, ctl.UpdateCafe)
		member.GET("/delete/:id", csrfLink, ctl.DeleteCafe)
		member.GET("/import", ctl.ImportForm)
		member.POST("/import", csrf, ctl.ImportCafes)
	}

	router.NoRoute(sessions, func(c *gin.Context) {
		ctl.Abort(c, http.StatusNotFound)
	})
}
