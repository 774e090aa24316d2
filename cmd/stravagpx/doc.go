// Package main hosts the stravagpx CLI entrypoint and command graph.
//
// The root command runs one incremental export: it opens the configuration
// document, makes sure a bearer token is available, loads the browser session
// cookies, and hands the Strava feed to the export engine. Subcommands cover
// configuration scaffolding and read-only views of the ledger and the run
// journal.
//
// Keep this package lean: behaviour lives in the internal packages and is
// only wired together here.
package main
