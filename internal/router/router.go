package router

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"communication/internal/config"
	"communication/internal/handler"
	"communication/internal/logging"
	"communication/internal/metrics"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health *handler.HealthHandler
	User   *handler.UserHandler
	Auth   *handler.AuthHandler
	File   *handler.FileHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, m *metrics.Metrics, h Handlers) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logging.RequestLogger(logrus.WithField("logger", "http")))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(CORS(cfg.CORS)))
	if cfg.MaxUploadBytes > 0 {
		e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
			Limit: humanBytes(cfg.MaxUploadBytes),
		}))
	}
	if m != nil {
		e.Use(m.Middleware())
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	e.Validator = NewValidator()

	e.GET("/healthz", h.Health.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.GET("/", h.Health.Home)

	e.POST("/user", h.User.CreateUser)
	e.GET("/users", h.User.ListUsers)
	e.GET("/user/:id", h.User.GetUser)
	e.PUT("/user/:id", h.User.UpdateUser)
	e.DELETE("/user/:id", h.User.DeleteUser)

	e.POST("/login", h.Auth.Login)

	e.POST("/upload", h.File.Upload)
	e.GET("/files", h.File.ListFiles)
	e.GET("/file/:id", h.File.GetFile)
	e.DELETE("/delete/:id", h.File.DeleteFile)
}

// CORS turns the configured policy into echo's CORS settings. A wildcard
// origin combined with credentials echoes the caller's origin back.
func CORS(c config.CORSConfig) middleware.CORSConfig {
	wildcard := false
	for _, o := range c.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
	}
	return middleware.CORSConfig{
		AllowOrigins: c.AllowOrigins,
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		AllowCredentials:                         c.AllowCredentials,
		UnsafeWildcardOriginWithAllowCredentials: wildcard && c.AllowCredentials,
	}
}

// humanBytes renders n in the "<n>B" form BodyLimit parses.
func humanBytes(n int64) string {
	return strconv.FormatInt(n, 10) + "B"
}

// NewValidator reports field errors under their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
