package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
)

// LoginForm is the state of the credential form.
type LoginForm struct {
	Email string
	Next  string
	Error string
}

// LoginPage renders the credential form.
func LoginPage(form LoginForm) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<h1>Login</h1>`)
		formError(m, form.Error)
		m.raw(`<form class="stack" method="post"`)
		m.attr("action", routepath.Login)
		m.raw(`>`)
		if form.Next != "" {
			m.raw(`<input type="hidden"`)
			m.attr("name", routepath.NextParam)
			m.attr("value", form.Next)
			m.raw(`>`)
		}
		m.raw(`<label>Email<input type="email" name="email" autocomplete="username" required`)
		m.attr("value", form.Email)
		m.raw(`></label><label>Password<input type="password" name="password" autocomplete="current-password" required></label>` +
			`<div class="buttons"><button type="submit" class="primary">Login</button></div></form>`)
	})
}
