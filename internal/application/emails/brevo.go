package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoalAlert is one line of a progress notification.
type GoalAlert struct {
	Type    string
	Message string
}

// Sender sends transactional emails. A nil Sender is a no-op.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, firstName string) error
	SendGoalAlerts(ctx context.Context, toEmail, firstName, goalName string, progress float64, alerts []GoalAlert) error
	SendGoalCompleted(ctx context.Context, toEmail, firstName, goalName string, daysToComplete int) error
}

// BrevoClient sends emails via the Brevo (Sendinblue) API. Without an API key every send is a no-op.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@pesaguru.co.ke"
}

func (c *BrevoClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return brevoAPI
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "PesaGuru"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: "support@pesaguru.co.ke", Name: "PesaGuru Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, firstName string) error {
	return c.send(ctx, toEmail, "Karibu PesaGuru!", EmailLayout(welcomeContent(orThere(firstName))))
}

// SendGoalAlerts reports milestone and schedule alerts raised by a contribution.
func (c *BrevoClient) SendGoalAlerts(ctx context.Context, toEmail, firstName, goalName string, progress float64, alerts []GoalAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	subject := fmt.Sprintf("Update on your goal: %s", goalName)
	return c.send(ctx, toEmail, subject, EmailLayout(alertsContent(orThere(firstName), goalName, progress, alerts)))
}

func (c *BrevoClient) SendGoalCompleted(ctx context.Context, toEmail, firstName, goalName string, daysToComplete int) error {
	subject := fmt.Sprintf("Goal achieved: %s", goalName)
	return c.send(ctx, toEmail, subject, EmailLayout(completedContent(orThere(firstName), goalName, daysToComplete)))
}

func orThere(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

func welcomeContent(userName string) string {
	return fmt.Sprintf(`
    <h1>Karibu, %s!</h1>
    <p>Your <strong>PesaGuru</strong> account is ready. Set a savings or investment goal and we will track your progress, suggest an asset mix and tell you when you are falling behind.</p>
    <center>
      <a href="%s" class="pg-button">Set your first goal</a>
    </center>
    <p>The PesaGuru Team</p>
`, EscapeHTML(userName), dashboardURL)
}

func alertsContent(userName, goalName string, progress float64, alerts []GoalAlert) string {
	var items bytes.Buffer
	for _, a := range alerts {
		fmt.Fprintf(&items, "      <li>%s</li>\n", EscapeHTML(a.Message))
	}
	return fmt.Sprintf(`
    <h1>%s is at %.0f%%</h1>
    <p>Hi %s,</p>
    <ul>
%s    </ul>
    <center>
      <a href="%s" class="pg-button">View goal</a>
    </center>
    <p>The PesaGuru Team</p>
`, EscapeHTML(goalName), progress, EscapeHTML(userName), items.String(), dashboardURL)
}

func completedContent(userName, goalName string, days int) string {
	return fmt.Sprintf(`
    <h1>Hongera, %s!</h1>
    <p>You reached your goal <strong>%s</strong> in %d days.</p>
    <center>
      <a href="%s" class="pg-button">Set a new goal</a>
    </center>
    <p>The PesaGuru Team</p>
`, EscapeHTML(userName), EscapeHTML(goalName), days, dashboardURL)
}
