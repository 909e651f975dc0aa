package notification

import (
	"bytes"
	"html/template"
)

var (
	resetPasswordTmpl = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Password Reset</h2>
  <p>We received a request to reset your password. Click the link below to choose a new one:</p>
  <p><a href="{{.URL}}">Reset password</a></p>
  <p>The link expires in {{.Expiry}}. If you did not ask for a reset you can ignore this mail.</p>
</body>
</html>`))

	setPasswordTmpl = template.Must(template.New("set").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Welcome {{.Name}}</h2>
  <p>An account has been created for you as a {{.Role}} at {{.Institute}}.</p>
  <p>Set your password to get started:</p>
  <p><a href="{{.URL}}">Set your password</a></p>
  <p>This link expires in {{.Expiry}}.</p>
</body>
</html>`))

	announcementTmpl = template.Must(template.New("announcement").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <p>{{.Message}}</p>
</body>
</html>`))
)

type resetPasswordData struct {
	URL    string
	Expiry string
}

type setPasswordData struct {
	Name      string
	Role      string
	Institute string
	URL       string
	Expiry    string
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
