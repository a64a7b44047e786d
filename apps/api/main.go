package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	echoapi "github.com/trezcool/hostel/apps/api/echo"
	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/attendance"
	"github.com/trezcool/hostel/core/complaint"
	"github.com/trezcool/hostel/core/occupancy"
	"github.com/trezcool/hostel/core/room"
	"github.com/trezcool/hostel/core/student"
	emailsvc "github.com/trezcool/hostel/services/email"
	logsvc "github.com/trezcool/hostel/services/logger"
	metricsvc "github.com/trezcool/hostel/services/metrics"
	"github.com/trezcool/hostel/storage/database"
	sqlxrepos "github.com/trezcool/hostel/storage/database/sqlx"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	// set up logger
	level, format := "info", "json"
	if conf.Debug {
		level, format = "debug", "console"
	}
	zl, err := logsvc.NewZap(level, format, conf.AppName+"-api")
	if err != nil {
		return errors.Wrap(err, "setting up logger")
	}
	logger := logsvc.New(zl, conf)
	defer func() { _ = logger.Sync() }()

	policy, err := occupancy.ParseCapacityPolicy(conf.Occupancy.CapacityPolicy)
	if err != nil {
		return errors.Wrap(err, "reading occupancy.capacityPolicy")
	}
	logger.Info("occupancy capacity policy", map[string]interface{}{"policy": policy.String()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// set up DB
	db, err := database.Open(ctx, conf)
	if err != nil {
		return errors.Wrap(err, "setting up database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	if err := database.Migrate(ctx, db); err != nil {
		return errors.Wrap(err, "migrating database")
	}

	// set up metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, conf.Database.Name),
	)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	roomRepo := sqlxrepos.NewRoomRepository(db)
	studentRepo := sqlxrepos.NewStudentRepository(db)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(&echoapi.Options{
		Conf:           conf,
		Logger:         logger,
		DB:             db,
		Gatherer:       reg,
		SignalShutdown: stop,
		RoomSvc:        room.NewService(db, roomRepo),
		StudentSvc:     student.NewService(studentRepo),
		OccupancySvc: occupancy.NewService(db, roomRepo, studentRepo,
			occupancy.WithCapacityPolicy(policy),
			occupancy.WithRecorder(metricsvc.NewOccupancyRecorder(reg)),
		),
		ComplaintSvc:  complaint.NewService(db, sqlxrepos.NewComplaintRepository(db), studentRepo, mailSvc),
		AttendanceSvc: attendance.NewService(db, sqlxrepos.NewAttendanceRepository(db)),
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API listening on " + conf.Server.Address)
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")

	case <-ctx.Done():
		logger.Info("Start shutdown...")

		// give outstanding requests a deadline for completion
		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Stop(shutdownCtx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
	}
	return nil
}
