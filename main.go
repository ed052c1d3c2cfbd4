// SPDX-License-Identifier: MIT
package main

import (
	"os"
	"os/signal"
	"syscall"

	"voiceforge/cmd"
	"voiceforge/internal/job"
	"voiceforge/internal/log"
	"voiceforge/internal/server"
)

// main runs in three phases:
//
// 1. Startup:
//   - Parse command line arguments, .env, and the YAML config
//   - Execute one-off commands if requested
//   - Open the job store and start the worker pool
//
// 2. Serving:
//   - Accept job submissions over HTTP
//   - Stream job events over WebSocket
//
// 3. Shutdown:
//   - Handle termination signals
//   - Drain in-flight jobs and close the store
func main() {
	options, err := cmd.ParseArgs()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if options.Command != "" || options.Config == nil {
		return
	}
	cfg := options.Config

	level, _ := log.ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = log.LevelDebug
	}
	log.SetLevel(level)

	store, closeStore, err := openStore(cfg.Jobs.StoreBackend, cfg.Jobs.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open job store: %v", err)
	}
	defer closeStore()

	manager, err := job.NewManager(cfg.Jobs, cfg.DSP, store)
	if err != nil {
		log.Fatalf("failed to build job manager: %v", err)
	}
	manager.Start()

	srv := server.New(cfg.Server, manager)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Run(cfg.Server.ListenAddr)
	}()

	select {
	case err := <-serveErr:
		log.Errorf("server stopped: %v", err)
	case sig := <-done:
		log.Infof("received %s, shutting down", sig)
	}

	manager.Stop()
	if err := srv.Close(); err != nil {
		log.Errorf("error closing server: %v", err)
	}
}

// openStore selects the configured job store backend. The returned
// close function is a no-op for the in-memory store.
func openStore(backend, sqlitePath string) (job.Store, func(), error) {
	switch backend {
	case "sqlite":
		s, err := job.NewSQLiteStore(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Errorf("error closing job store: %v", err)
			}
		}, nil
	default:
		return job.NewMemoryStore(), func() {}, nil
	}
}
