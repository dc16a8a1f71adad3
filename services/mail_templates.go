package services

import (
	"bytes"
	htmltemplate "html/template"
	"strconv"
	"text/template"
	"time"
)

var (
	otpText = template.Must(template.New("otp").Parse(`Your Noteshelf verification code is {{.Code}}.

It expires in {{.TTL}}.
Requested from: {{.Device}}

If you did not try to sign in, change your password.
`))
	otpHTML = htmltemplate.Must(htmltemplate.New("otp").Parse(`<p>Your Noteshelf verification code is</p>
<h2 style="letter-spacing:4px">{{.Code}}</h2>
<p>It expires in {{.TTL}}.<br>Requested from: {{.Device}}</p>
<p>If you did not try to sign in, change your password.</p>
`))

	resetText = template.Must(template.New("reset").Parse(`A password reset was requested for your Noteshelf account.

Open this link to choose a new password: {{.Link}}

The link expires in {{.TTL}}. If you did not ask for a reset, ignore this email.
`))
	resetHTML = htmltemplate.Must(htmltemplate.New("reset").Parse(`<p>A password reset was requested for your Noteshelf account.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>The link expires in {{.TTL}}. If you did not ask for a reset, ignore this email.</p>
`))
)

// OTPMessage renders the second factor email.
func OTPMessage(to, code, device string, ttl time.Duration) (Message, error) {
	data := struct {
		Code, Device, TTL string
	}{code, device, humanDuration(ttl)}
	return render(to, "Your Noteshelf login code", data, otpText, otpHTML)
}

// ResetMessage renders the password reset email. Its wording is the same
// whether or not an account exists for the address.
func ResetMessage(to, link string, ttl time.Duration) (Message, error) {
	data := struct {
		Link, TTL string
	}{link, humanDuration(ttl)}
	return render(to, "Reset your Noteshelf password", data, resetText, resetHTML)
}

func render(to, subject string, data any, text *template.Template, html *htmltemplate.Template) (Message, error) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		return Message{}, err
	}
	if err := html.Execute(&hb, data); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, Text: tb.String(), HTML: hb.String()}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
