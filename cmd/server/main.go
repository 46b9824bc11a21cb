package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/MKhiriev/go-gatekeeper/internal/config"
	"github.com/MKhiriev/go-gatekeeper/internal/crypto"
	"github.com/MKhiriev/go-gatekeeper/internal/logger"
	"github.com/MKhiriev/go-gatekeeper/internal/server"
	"github.com/MKhiriev/go-gatekeeper/internal/session"
	"github.com/MKhiriev/go-gatekeeper/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetStructuredConfig("gatekeeper", os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.NewLogger("gatekeeper").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewFileLogger("gatekeeper", cfg.Log.File)
	defer log.Close()

	log.Debug().Any("config", cfg).Msg("received configs")

	credentials := store.NewPasswdStore(cfg.Storage.PasswdFile, crypto.NewPasswordHasher(), log.GetChildLogger())
	sessionOpts := session.Options{MaxLoginAttempts: cfg.Server.MaxLoginAttempts}

	mux, err := server.NewMultiplexor(cfg.Server, func(conn net.Conn) server.Conn {
		return session.New(conn, credentials, sessionOpts, log)
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating multiplexor")
	}

	server.NewServer(mux, log).RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
