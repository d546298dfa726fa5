package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"
)

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background: #f9f9f9;">
    <div style="padding: 32px;">
        <div style="max-width: 600px; margin: auto; background: #fff; border-radius: 8px; box-shadow: 0 2px 8px #eee; padding: 32px;">
            <div style="text-align: center; margin-bottom: 24px;">
                <h2 style="color: #2a7ae2; margin: 0;">CourseHub</h2>
            </div>
            <div style="font-size: 16px; color: #333;">
                {{.Content}}
            </div>
            <div style="margin-top: 32px; text-align: center; color: #aaa; font-size: 12px;">
                &copy; {{.Year}} CourseHub
            </div>
        </div>
    </div>
</body>
</html>
`))

var membershipBody = template.Must(template.New("membership").Parse(`
<p>Hello {{.Name}},</p>
<p>Your {{.Plan}} membership is now active. Every lesson in the catalog is unlocked.</p>
<p style="text-align: center; margin: 24px 0;">
    <a href="{{.URL}}" style="background: #2a7ae2; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">
        Start learning
    </a>
</p>
`))

// wrap places rendered content inside the shared layout.
func wrap(content string) (string, error) {
	var buf bytes.Buffer
	err := layout.Execute(&buf, map[string]interface{}{
		"Content": template.HTML(content),
		"Year":    time.Now().Year(),
	})
	return buf.String(), err
}

// MembershipActivated builds the email sent when a subscription becomes active.
func MembershipActivated(to, name, plan, siteURL string) (SendRequest, error) {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	if plan == "" {
		plan = "CourseHub"
	}
	coursesURL := strings.TrimRight(siteURL, "/") + "/courses"

	var body bytes.Buffer
	err := membershipBody.Execute(&body, map[string]string{"Name": name, "Plan": plan, "URL": coursesURL})
	if err != nil {
		return SendRequest{}, err
	}

	html, err := wrap(body.String())
	if err != nil {
		return SendRequest{}, err
	}

	return SendRequest{
		To:      []string{to},
		Subject: "Your CourseHub membership is active",
		HTML:    html,
		Text:    fmt.Sprintf("Hello %s, your %s membership is now active. Start learning: %s", name, plan, coursesURL),
	}, nil
}

// SendMembershipActivated renders and sends the activation email.
func SendMembershipActivated(ctx context.Context, sender Sender, to, name, plan, siteURL string) error {
	req, err := MembershipActivated(to, name, plan, siteURL)
	if err != nil {
		return err
	}
	_, err = sender.Send(ctx, req)
	return err
}
