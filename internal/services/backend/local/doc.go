// Package local implements the site backend over a SQLite file and a
// directory of uploaded objects.
//
// Sessions are HS256 JWT pairs bound to a row in the sessions table, so
// signing out revokes both tokens.
package local
