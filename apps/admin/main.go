package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/occupancy"
	logsvc "github.com/trezcool/hostel/services/logger"
	"github.com/trezcool/hostel/storage/database"
	sqlxrepos "github.com/trezcool/hostel/storage/database/sqlx"
)

func main() {
	os.Exit(run())
}

func run() int {
	zl, err := logsvc.NewZap("info", "console", "")
	if err != nil {
		zl = zap.NewExample()
	}
	logger := logsvc.New(zl, &core.Config{})
	defer func() { _ = logger.Sync() }()

	conf, err := core.LoadConfig()
	if err != nil {
		logger.Error("loading config", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// set up DB
	db, err := database.Open(ctx, conf)
	if err != nil {
		logger.Error("setting up database", err)
		return 1
	}
	defer db.Close()

	// start CLI
	cli := commandLine{
		conf: conf,
		db:   db,
		occSvc: occupancy.NewService(db,
			sqlxrepos.NewRoomRepository(db),
			sqlxrepos.NewStudentRepository(db),
		),
		out: os.Stdout,
	}
	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		return 1
	}
	return 0
}
