package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/padhaihq/padhai/api/echo"
	"github.com/padhaihq/padhai/core"
	"github.com/padhaihq/padhai/core/user"
	logsvc "github.com/padhaihq/padhai/services/logger"
	"github.com/padhaihq/padhai/storage/database"
	sqlxrepos "github.com/padhaihq/padhai/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB & repos
	db, err := database.Open(conf)
	if err != nil {
		std.Fatalf("opening database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// set up services
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(conf, shutdown, &echoapi.Deps{
		UserSvc: usrSvc,
		Logger:  logger,
	})

	serverErrors := make(chan error, 1)
	go func() { serverErrors <- app.Start() }()

	select {
	case err := <-serverErrors:
		std.Fatalf("server error: %v", err)
	case sig := <-shutdown:
		std.Printf("%v: starting graceful shutdown...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			std.Fatalf("graceful shutdown failed: %v", err)
		}
	}
}
