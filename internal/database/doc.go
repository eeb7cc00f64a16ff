// Package database provides SQLite-based report history for domaindive.
//
// HistoryDB stores every analysis report as JSON together with a few
// summary columns, so past results can be listed and compared without
// decoding them. It is a history, not a cache: analyses always fetch fresh
// data and only write here.
//
// The database uses modernc.org/sqlite, a CGO-free driver, and lives in a
// single file in the XDG data directory.
package database
