// Package main starts the in-memory dev stack: the identity, forms and
// responses services on one local HTTP port.
package main

import (
	"cmp"
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/mlukic/formflow/internal/devstack"
	"github.com/mlukic/formflow/internal/logger"
)

var (
	version   string
	buildDate string
)

func main() {
	var (
		addr   string
		secret string
	)
	flag.StringVar(&addr, "addr", ":8000", "listen address")
	flag.StringVar(&secret, "secret", "", "token signing secret (env FORMFLOW_SECRET)")
	flag.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if secret == "" {
		secret = cmp.Or(os.Getenv("FORMFLOW_SECRET"), "dev-secret")
	}

	router := devstack.New(secret, zapLogger).Router()

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting dev stack", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
