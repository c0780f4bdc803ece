/*
Bli starts an interactive branchling sandbox session.

It reads sandbox commands from stdin, one line at a time, and prints what they
did to stdout until "quit" or "exit" is entered or input ends. Several commands
may be given on one line separated by ";".

Usage:

	bli [flags]

The flags are:

	-v, --version
		Give the current version of branchling and then exit.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading command input even if launched in
		a tty with stdin and stdout.

	--db DRIVER[:PARAMS]
		Keep the session in the given DB. DRIVER must be one of inmem or
		sqlite; sqlite needs the path to a data directory, such as
		sqlite:path/to/db_dir. If not given, defaults to the value of
		environment variable BRANCHLING_DATABASE, and if that is not set, to
		inmem.

	-s, --session ID
		Resume the session with the given ID from the DB instead of starting a
		new one. Only useful with a persistent DB.

	-L, --locale LOCALE
		Use the given locale, such as de_DE, as the default. If not given,
		defaults to the value of environment variable BRANCHLING_LOCALE, and
		if that is not set, to en_US.

	--pick-locale
		Show the language picker before the first prompt.

	--history FILE
		Keep readline command history in FILE between runs.

	--debug
		Write debug logging to stderr.
*/
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/branchling"
	"github.com/dekarrin/branchling/internal/store/connect"
	"github.com/dekarrin/branchling/internal/version"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitSessionError indicates an unsuccessful program execution due to a
	// problem during the session.
	ExitSessionError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// initializing the engine.
	ExitInitError
)

const (
	EnvDB     = "BRANCHLING_DATABASE"
	EnvLocale = "BRANCHLING_LOCALE"
)

var (
	returnCode = ExitSuccess

	flagVersion    = pflag.BoolP("version", "v", false, "Give the current version of branchling and then exit.")
	flagDirect     = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible.")
	flagDB         = pflag.String("db", "", "Keep the session in the given DB.")
	flagSession    = pflag.StringP("session", "s", "", "Resume the session with the given ID.")
	flagLocale     = pflag.StringP("locale", "L", "", "Use the given locale as the default.")
	flagPickLocale = pflag.Bool("pick-locale", false, "Show the language picker before the first prompt.")
	flagHistory    = pflag.String("history", "", "Keep command history in the given file.")
	flagDebug      = pflag.Bool("debug", false, "Write debug logging to stderr.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "bli", Level: log.WarnLevel})
	if *flagDebug {
		logger.SetLevel(log.DebugLevel)
	}

	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	db := connect.Database{Type: connect.DatabaseInMemory}
	if dbConnStr != "" {
		var err error
		db, err = connect.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\nDo -h for help.\n", err.Error())
			returnCode = ExitInitError
			return
		}
	}
	repo, err := db.Connect()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer repo.Close()

	locale := os.Getenv(EnvLocale)
	if pflag.Lookup("locale").Changed {
		locale = *flagLocale
	}

	var seshID uuid.UUID
	if *flagSession != "" {
		seshID, err = uuid.Parse(*flagSession)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %q is not a valid session ID\n", *flagSession)
			returnCode = ExitInitError
			return
		}
	}

	eng, initErr := branchling.New(os.Stdin, os.Stdout, branchling.Options{
		ForceDirect:  *flagDirect,
		Repository:   repo,
		Session:      seshID,
		Locale:       locale,
		LocalePicker: *flagPickLocale,
		HistoryFile:  *flagHistory,
		Log:          logger,
	})
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer eng.Close()

	if db.Type != connect.DatabaseInMemory {
		logger.Info("session ready", "id", eng.SessionID())
	}

	err = eng.RunUntilQuit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitSessionError
		return
	}
}
