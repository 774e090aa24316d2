// Package config defines the stravagpx configuration document and loads,
// normalizes, and validates it.
//
// The document is more than settings: it also carries the OAuth token and the
// ledger of exported activities, and it is rewritten whenever either changes.
// Files ending in .yaml/.yml are encoded with yaml.v3, files ending in .toml
// with go-toml. Relative paths stay relative in the document; resolve them
// through the accessor methods so downstream code sees expanded paths while
// the file on disk keeps what the user wrote.
package config
