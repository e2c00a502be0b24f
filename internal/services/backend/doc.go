// Package backend declares the contract the site needs from its hosted
// backend: password authentication, the posts table, and an object store.
//
// Two implementations exist. The supabase package talks to the hosted
// service over HTTP; the local package keeps everything in SQLite and on
// the filesystem so the site can run standalone.
package backend
