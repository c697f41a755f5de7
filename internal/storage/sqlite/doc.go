// Package sqlite persists stitch decisions and replayed sequences.
//
// The schema is managed with golang-migrate from the embedded migrations
// directory; Open always brings the database to the latest version.
package sqlite
