// Package email sends transactional mail through Postmark. All sends are
// best-effort: callers treat failures as log-and-continue.
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL overrides the Postmark endpoint, used in tests.
func WithAPIURL(url string) Option {
	return func(cl *Client) {
		cl.apiURL = url
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		apiURL:      defaultAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendPasswordReset tells an account holder how to reset their password.
func (c *Client) SendPasswordReset(toEmail, name string) error {
	textBody := fmt.Sprintf(
		"Hi %s,\n\nSomeone asked to reset the password for this address on Dosewell. "+
			"If that was you, open the app and choose a new password from the sign-in screen. "+
			"If not, you can ignore this message.",
		name,
	)
	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p><p>Someone asked to reset the password for this address on Dosewell. `+
			`If that was you, open the app and choose a new password from the sign-in screen. `+
			`If not, you can ignore this message.</p>`,
		name,
	)
	return c.send(toEmail, "Reset your Dosewell password", htmlBody, textBody)
}

// SendInvitation notifies someone they were added as a family member.
func (c *Client) SendInvitation(toEmail, memberName, inviterName string) error {
	subject := fmt.Sprintf("%s added you to their family on Dosewell", inviterName)
	textBody := fmt.Sprintf(
		"Hi %s,\n\n%s is tracking supplements for you on Dosewell. "+
			"Sign in to accept the invitation and see your schedule.",
		memberName, inviterName,
	)
	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p><p>%s is tracking supplements for you on Dosewell. `+
			`Sign in to accept the invitation and see your schedule.</p>`,
		memberName, inviterName,
	)
	return c.send(toEmail, subject, htmlBody, textBody)
}

func (c *Client) send(toEmail, subject, htmlBody, textBody string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
