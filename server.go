// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"net/http"
	"os"
	"slices"

	"laundrolink-server/commons"
	"laundrolink-server/crypto"
	"laundrolink-server/db"
	"laundrolink-server/handlers"
	"laundrolink-server/middlewares"
	"laundrolink-server/notifications"
	"laundrolink-server/rabbitmq"
	"laundrolink-server/routes"
	"laundrolink-server/store"
	"laundrolink-server/tokens"
	"laundrolink-server/views"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	commons.LoadEnvFile()

	e := echo.New()
	e.HideBanner = true

	e.Logger.SetLevel(commons.Logger.Level())
	e.Logger.SetHeader("${time_rfc3339} ${level} ${short_file}:${line} -")

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logMsg := func(format string, args ...any) {
				switch {
				case v.Status >= 500:
					e.Logger.Errorf(format, args...)
				case v.Status >= 400:
					e.Logger.Warnf(format, args...)
				default:
					e.Logger.Infof(format, args...)
				}
			}
			logMsg("%s %s - %d - %.2fms - %s",
				v.Method,
				v.URI,
				v.Status,
				float64(v.Latency.Microseconds())/1000.0,
				v.RemoteIP,
			)
			return nil
		},
	}))
	debugMode := slices.Contains(os.Args[1:], "--debug")
	if debugMode {
		e.Logger.Warn("Debug mode is enabled.")
		e.Debug = true
		e.Logger.SetLevel(log.DEBUG)
		commons.Logger.SetLevel(log.DEBUG)
	}

	e.Use(middleware.Recover())
	e.Use(middlewares.Metrics)
	e.Use(middleware.BodyLimit(commons.GetEnv("MAX_UPLOAD_SIZE", "5M")))
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token",
		CookieName:     "laundrolink_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/healthz"
		},
	}))

	if err := db.InitDB(); err != nil {
		commons.Logger.Fatal("Failed to connect to database: ", err)
	}
	if slices.Contains(os.Args[1:], "--migrate-db") {
		commons.Logger.Debug("--migrate-db flag detected, running migrations")
		if err := db.MigrateDB(db.Conn); err != nil {
			commons.Logger.Fatal("Failed to migrate database: ", err)
		}
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		commons.Logger.Fatal("Failed to load templates: ", err)
	}
	e.Renderer = renderer

	publisher, err := rabbitmq.NewPublisher(rabbitmq.ConfigFromEnv())
	if err != nil {
		commons.Logger.Error("Failed to connect to RabbitMQ, domain events are disabled: ", err)
		publisher = rabbitmq.NoopPublisher{}
	}
	defer publisher.Close()

	gateway := db.NewGateway(db.Conn)
	cryptoInstance := crypto.NewCrypto()
	sessions := middlewares.SessionManagerFromEnv()
	e.Use(sessions.LoadSession)

	h := &handlers.Handler{
		Store:      store.New(gateway),
		Tokens:     tokens.NewManager(gateway, cryptoInstance),
		Sessions:   sessions,
		Crypto:     cryptoInstance,
		Publisher:  publisher,
		DeepLinker: notifications.WhatsApp{},
		Config:     handlers.ConfigFromEnv(),
	}
	routes.RegisterRoutes(e, h)

	port := commons.GetEnv("PORT", "5000")
	if port[0] != ':' {
		port = ":" + port
	}
	e.Logger.Fatal(e.Start(port))
}
