package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/repostnet/apps"
	echoapi "github.com/trezcool/repostnet/apps/api/echo"
	"github.com/trezcool/repostnet/core"
	logsvc "github.com/trezcool/repostnet/services/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	zl, err := newZapLogger(conf)
	if err != nil {
		return errors.Wrap(err, "initializing logger")
	}
	defer func() { _ = zl.Sync() }()

	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := apps.Setup(ctx, conf, logsvc.NewRollbarLogger(zl.Named("db"), conf), true /* migrate */)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		MemberSvc:     deps.MemberSvc,
		SubmissionSvc: deps.SubmissionSvc,
		Validate:      validate,
		Translator:    translator,
	})

	g, gctx := errgroup.WithContext(ctx)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	debugSrv := &http.Server{Addr: conf.Server.DebugHost, Handler: http.DefaultServeMux}
	g.Go(func() error {
		if err := debugSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
		return nil
	})

	// =========================================================================
	// Start API Service

	g.Go(func() error {
		server.Start()
		return nil
	})

	// =========================================================================
	// Shutdown

	g.Go(func() error {
		defer cancel()

		var runErr error
		select {
		case runErr = <-server.Errors():
			runErr = errors.Wrap(runErr, "server error")
		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		case <-gctx.Done():
		}

		// give outstanding requests a deadline for completion
		sctx, scancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer scancel()

		if err := debugSrv.Shutdown(sctx); err != nil {
			logger.Warn(fmt.Sprintf("could not stop debug server gracefully: %v", err), err)
		}

		// asking listener to shutdown and shed load
		if err := server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
		return runErr
	})

	return g.Wait()
}

func newZapLogger(conf *core.Config) (*zap.Logger, error) {
	if conf.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
