// Package bunstore implements the dynconfig and dictionary repositories on top of bun.
//
// Both sqlite (mattn/go-sqlite3) and postgres (pgdriver) are supported. Open returns a ready
// *bun.DB and CreateSchema creates the config_items and dictionary_items tables when they do
// not exist yet.
package bunstore
