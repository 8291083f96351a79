package transport

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
	"github.com/Rogue-Bear-Innovations/websites/internal/config"
	"github.com/Rogue-Bear-Innovations/websites/internal/models"
	"github.com/Rogue-Bear-Innovations/websites/internal/service"
)

type (
	HTTPServer struct {
		websites *service.Websites
		logger   *zap.SugaredLogger
		debug    bool
	}
)

var Module = fx.Provide(
	NewHTTPServer,
)

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, websites *service.Websites, logger *zap.SugaredLogger) *HTTPServer {
	instance := HTTPServer{
		websites: websites,
		logger:   logger,
		debug:    cfg.Debug(),
	}
	e := instance.Echo()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.HTTPAddr()
				logger.Infof("Starting HTTP server on %s.", listen)
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return &instance
}

func NewHandler(websites *service.Websites, logger *zap.SugaredLogger, debug bool) http.Handler {
	s := HTTPServer{websites: websites, logger: logger, debug: debug}
	return s.Echo()
}

// Echo builds the router with every route and middleware attached.
func (s *HTTPServer) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.ErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(s.RequestLogger())
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())

	websitesG := e.Group("/websites")
	websitesG.GET("", s.WebsiteList)
	websitesG.POST("", s.WebsiteCreate)
	websitesG.PUT("/:id", s.WebsiteUpdate)
	websitesG.DELETE("/:id", s.WebsiteDelete)

	e.GET("/test-db", s.TestDB)
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	return e
}

func (s *HTTPServer) WebsiteList(c echo.Context) error {
	websites, err := s.websites.List(c.Request().Context(), c.QueryParam("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, service.Success(websites, ""))
}

func (s *HTTPServer) WebsiteCreate(c echo.Context) error {
	req := models.CreateWebsiteReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	w, err := s.websites.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, service.Success(w, service.MsgCreated))
}

func (s *HTTPServer) WebsiteUpdate(c echo.Context) error {
	id := c.Param("id")

	req := models.UpdateWebsiteReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	w, err := s.websites.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, service.Success(w, service.MsgUpdated))
}

func (s *HTTPServer) WebsiteDelete(c echo.Context) error {
	if err := s.websites.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, service.Success(nil, service.MsgDeleted))
}

func (s *HTTPServer) TestDB(c echo.Context) error {
	info, err := s.websites.Status(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, service.Success(models.StatusData{Connection: info}, service.MsgStatus))
}

// ErrorHandler writes every failure as an envelope. Router errors (unknown
// route, wrong method) keep their own status.
func (s *HTTPServer) ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		env    models.Envelope
	)
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		env = models.Envelope{Success: false, Error: http.StatusText(he.Code)}
		if msg, ok := he.Message.(string); ok {
			env.Error = msg
		}
	} else {
		status, env = service.Failure(err, s.debug)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Errorw("request failed", "path", c.Path(), "status", status, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, env)
	}
	if err != nil {
		s.logger.Errorw("write error response", "error", err)
	}
}

// RequestLogger logs one line per request through zap.
func (s *HTTPServer) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			s.logger.Infow("request", fields...)
			return nil
		},
	})
}

////////

func Bind(c echo.Context, v interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		e := apperr.InvalidRequest("Invalid request body")
		e.Err = err
		return e
	}
	return nil
}
