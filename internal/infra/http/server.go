package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Spok95/plan-catalog/internal/catalog"
)

// Pinger reports whether the plan store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo *echo.Echo
	addr string
}

func New(addr string, exposeMetrics bool, log *slog.Logger, plans PlanLister, db Pinger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(middleware.Recover())
	e.Use(requestLogger(log))
	e.Use(cors)

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			log.Warn("health check failed", "err", err)
			return c.String(http.StatusServiceUnavailable, "plan store unavailable")
		}
		return c.String(http.StatusOK, "OK")
	})

	if exposeMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	h := NewPlansHandler(log, plans)
	e.GET("/api/plans", h.List)

	return &Server{echo: e, addr: addr}
}

// Start blocks until the server stops; it returns nil after Shutdown.
func (s *Server) Start() error {
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler { return s.echo }

// cors sets the catalog CORS headers on every response, with or without an
// Origin header, and answers preflight requests itself.
func cors(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		catalog.SetCORSHeaders(c.Response().Header())
		if c.Request().Method == http.MethodOptions {
			return c.String(http.StatusOK, "ok")
		}
		return next(c)
	}
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			)
			return nil
		},
	})
}

// errorHandler keeps router and middleware errors in the {"error": ...} shape.
func errorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else {
			log.Error("unhandled error", "err", err)
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, errorBody{Error: msg})
		}
		if err != nil {
			log.Error("write error response", "err", err)
		}
	}
}
