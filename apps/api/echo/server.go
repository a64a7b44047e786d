package echoapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/attendance"
	"github.com/trezcool/hostel/core/complaint"
	"github.com/trezcool/hostel/core/occupancy"
	"github.com/trezcool/hostel/core/room"
	"github.com/trezcool/hostel/core/student"
)

type (
	Options struct {
		Conf   *core.Config
		Logger core.Logger
		DB     core.DB
		// Gatherer backs /metrics; prometheus.DefaultGatherer when nil.
		Gatherer prometheus.Gatherer
		// SignalShutdown is called when a handler hits a core.shutdown error.
		SignalShutdown func()

		RoomSvc       *room.Service
		StudentSvc    *student.Service
		OccupancySvc  *occupancy.Service
		ComplaintSvc  *complaint.Service
		AttendanceSvc *attendance.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}

	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig(s.opts.Logger)))
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/health", s.health)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))

	issuer := conf.TokenIssuer
	if issuer == "" {
		issuer = conf.AppName
	}
	v1 := s.app.Group("/v1", authMiddleware(conf.SecretKey, issuer))

	registerRoomAPI(v1, s.opts.RoomSvc, s.opts.OccupancySvc)
	registerStudentAPI(v1, s.opts.StudentSvc, s.opts.OccupancySvc)
	registerComplaintAPI(v1, s.opts.ComplaintSvc)
	registerAttendanceAPI(v1, s.opts.AttendanceSvc)
}

// Start blocks until the server stops. A graceful Stop is not an error.
func (s *server) Start() error {
	if err := s.app.Start(s.opts.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "starting server")
	}
	return nil
}

func (s *server) Stop(ctx context.Context) error {
	if err := s.app.Shutdown(ctx); err != nil {
		_ = s.app.Close()
		return errors.Wrap(err, "stopping server gracefully")
	}
	return nil
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, fmt.Sprintf("Welcome to %s API!", s.opts.Conf.AppName))
}

func (s *server) health(ctx echo.Context) error {
	if err := s.opts.DB.PingContext(ctx.Request().Context()); err != nil {
		s.opts.Logger.Error("health check: database unreachable", err)
		return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func requestLoggerConfig(logger core.Logger) middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"remote_ip":  v.RemoteIP,
				"request_id": v.RequestID,
			}
			if p, err := getContextPrincipal(ctx); err == nil {
				logger.Info("request", fields, p)
			} else {
				logger.Info("request", fields)
			}
			return nil
		},
	}
}
