// Package routepath names every path the site serves.
package routepath

import (
	"net/url"
	"strconv"
)

const (
	Root       = "/"
	Ideas      = "/Ideas"
	IdeasSlash = "/Ideas/"
	Idea       = "/Ideas/{id}"
	IdeaEdit   = "/Ideas/{id}/edit"
	IdeaDelete = "/Ideas/{id}/delete"
	Write      = "/Write"
	WriteSlash = "/Write/"
	WriteImage = "/Write/upload"
	Login      = "/Login"
	Logout     = "/Logout"
	Resume     = "/resumeAlexN.pdf"
	Health     = "/up"
	Static     = "/static/"
	Uploads    = "/uploads/"
)

// NextParam is the query parameter carrying the post-login destination.
const NextParam = "next"

// IdeaPath returns the detail path for a post.
func IdeaPath(id int64) string {
	return Ideas + "/" + strconv.FormatInt(id, 10)
}

// IdeaEditPath returns the edit form path for a post.
func IdeaEditPath(id int64) string {
	return IdeaPath(id) + "/edit"
}

// IdeaDeletePath returns the delete confirmation path for a post.
func IdeaDeletePath(id int64) string {
	return IdeaPath(id) + "/delete"
}

// LoginPath returns the login path that sends the browser to next afterwards.
func LoginPath(next string) string {
	if next == "" || next == Write {
		return Login
	}
	return Login + "?" + url.Values{NextParam: {next}}.Encode()
}
