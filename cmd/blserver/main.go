/*
Blserver starts a branchling server and begins listening for new connections.

Usage:

	blserver [flags]
	blserver [flags] -l [[ADDRESS]:PORT]

Once started, the branchling server will listen for HTTP requests and respond
to them using REST protocol. By default, it will listen on localhost:8080. This
can be changed with the --listen/-l flag (or config via environment var). The
flag argument must be either a full address with port, such as
"192.168.0.2:6001", or just the IP address preceeded by a colon, such as
":6001".

If a JWT token secret is not given, one will be automatically generated. As a
consequence, in this mode of operation all tokens are rendered invalid as soon
as the server shuts down. This is suitable for testing, but must be given via
either CLI flags or environment variable if running in production.

The flags are:

	-v, --version
		Give the current version of the branchling server and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		BRANCHLING_LISTEN_ADDRESS, and if that is not given, will default to
		localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less than
		32 bytes in the secret, it will be repeated until it is. The maximum
		size is 64 bytes. If not given, will default to the value of environment
		variable BRANCHLING_TOKEN_SECRET. If no secret is specified or an empty
		secret is given, a random secret will be automatically generated.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the following:
		inmem, sqlite. inmem has no further params. sqlite needs the path to the
		data directory such as sqlite:path/to/db_dir. If not given, will default
		to the value of environment variable BRANCHLING_DATABASE. If no DB
		driver is specified or an empty one is given, an in-memory database is
		automatically selected.

	-L, --locale LOCALE
		New sessions start in the given locale, such as de_DE. If not given,
		defaults to the value of environment variable BRANCHLING_LOCALE, and
		if that is not set, to en_US.

	--debug
		Write debug logging to stderr.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/branchling/internal/store/connect"
	"github.com/dekarrin/branchling/internal/version"
	"github.com/dekarrin/branchling/server"
	"github.com/spf13/pflag"
)

const (
	EnvListen = "BRANCHLING_LISTEN_ADDRESS"
	EnvSecret = "BRANCHLING_TOKEN_SECRET"
	EnvDB     = "BRANCHLING_DATABASE"
	EnvLocale = "BRANCHLING_LOCALE"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of the branchling server and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
	flagLocale  = pflag.StringP("locale", "L", "", "Start new sessions in the given locale.")
	flagDebug   = pflag.Bool("debug", false, "Write debug logging to stderr.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (branchling v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "blserver",
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
	if *flagDebug {
		logger.SetLevel(log.DebugLevel)
	}

	args := pflag.Args()

	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	// get address info
	port := 0
	addr := ""
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr != "" {
		bindParts := strings.SplitN(listenAddr, ":", 2)
		if len(bindParts) != 2 {
			fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
			os.Exit(1)
		}

		var err error

		addr = bindParts[0]
		port, err = strconv.Atoi(bindParts[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%q is not a valid port number.\nDo -h for help.\n", bindParts[1])
			os.Exit(1)
		}
	}

	// assemble a server config
	var cfg server.Config

	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr != "" {
		db, err := connect.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Not a valid DB string: %s\nDo -h for help.\n", err)
			os.Exit(1)
		}
		cfg.DB = db
	}

	cfg.Locale = os.Getenv(EnvLocale)
	if pflag.Lookup("locale").Changed {
		cfg.Locale = *flagLocale
	}

	// get token secret
	tokSecStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		tokSecStr = *flagSecret
	}
	if tokSecStr != "" {
		cfg.TokenSecret = []byte(tokSecStr)

		for len(cfg.TokenSecret) < server.MinSecretSize {
			cfg.TokenSecret = append(cfg.TokenSecret, cfg.TokenSecret...)
		}

		if len(cfg.TokenSecret) > server.MaxSecretSize {
			// keys would be chopped at 64, so rather than the user thinking
			// they have more security by giving a longer key, refuse to start.
			fmt.Fprintf(os.Stderr, "Token secret is %d bytes, but it must be <= %d bytes\nDo -h for help.\n", len(cfg.TokenSecret), server.MaxSecretSize)
			os.Exit(1)
		}
	} else {
		// use all 64 possible bytes if doing a generated secret
		cfg.TokenSecret = make([]byte, server.MaxSecretSize)
		_, err := rand.Read(cfg.TokenSecret)
		if err != nil {
			logger.Fatal("could not generate token secret", "err", err)
		}

		logger.Warn("Using generated token secret; all tokens issued will become invalid at shutdown")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("could not start server", "err", err)
	}
	logger.Debug("Server initialized")

	logger.Infof("Starting branchling server %s...", version.ServerCurrent)
	err = srv.ServeForever(addr, port)
	srv.Close()
	if err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(2)
	}
}
