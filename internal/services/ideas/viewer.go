package ideas

import "strings"

// Viewer is the person a request acts for. The zero value is anonymous.
type Viewer struct {
	UserID      string
	Email       string
	AccessToken string
}

// Authenticated reports whether the viewer carries a backend identity.
func (v Viewer) Authenticated() bool {
	return strings.TrimSpace(v.UserID) != "" && strings.TrimSpace(v.AccessToken) != ""
}

// Policy decides who may write posts and see drafts.
type Policy interface {
	Allows(viewer Viewer) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(Viewer) bool

// Allows calls f.
func (f PolicyFunc) Allows(viewer Viewer) bool {
	return f(viewer)
}

// AnyAuthenticated authorizes every signed-in viewer.
func AnyAuthenticated() Policy {
	return PolicyFunc(Viewer.Authenticated)
}

// SingleOwner authorizes only the signed-in viewer with the given user id.
// An empty id falls back to AnyAuthenticated.
func SingleOwner(userID string) Policy {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return AnyAuthenticated()
	}
	return PolicyFunc(func(v Viewer) bool {
		return v.Authenticated() && v.UserID == userID
	})
}
