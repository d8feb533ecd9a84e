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
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// ReservationNotice carries what the organizer email needs about a new or
// cancelled reservation.
type ReservationNotice struct {
	ToEmail   string
	EventName string
	GuestName string
	GiftName  string
	Quantity  int
	Message   string
}

// Sender sends transactional emails. A nil Sender is a no-op, and senders
// must tolerate missing API keys by doing nothing.
type Sender interface {
	SendInvite(ctx context.Context, toEmail, guestName, eventName, rsvpLink string) error
	SendReservationCreated(ctx context.Context, n ReservationNotice) error
	SendReservationCancelled(ctx context.Context, n ReservationNotice) error
}

// BrevoClient sends emails via the Brevo API. Env: BREVO_API_KEY, MAIL_FROM.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@gatherly.app"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Gatherly"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
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

// SendInvite sends the invitation email with the RSVP link.
func (c *BrevoClient) SendInvite(ctx context.Context, toEmail, guestName, eventName, rsvpLink string) error {
	if c.APIKey == "" {
		return nil
	}
	if guestName == "" {
		guestName = "there"
	}
	subject := fmt.Sprintf("You're invited to %s", eventName)
	return c.send(ctx, toEmail, subject, Layout(inviteContent(guestName, eventName, rsvpLink)))
}

// SendReservationCreated tells the organizer a guest reserved a gift.
func (c *BrevoClient) SendReservationCreated(ctx context.Context, n ReservationNotice) error {
	if c.APIKey == "" {
		return nil
	}
	subject := fmt.Sprintf("New gift reservation for %s", n.EventName)
	return c.send(ctx, n.ToEmail, subject, Layout(reservationCreatedContent(n)))
}

// SendReservationCancelled tells the organizer a guest cancelled a reservation.
func (c *BrevoClient) SendReservationCancelled(ctx context.Context, n ReservationNotice) error {
	if c.APIKey == "" {
		return nil
	}
	subject := fmt.Sprintf("Gift reservation cancelled for %s", n.EventName)
	return c.send(ctx, n.ToEmail, subject, Layout(reservationCancelledContent(n)))
}

func inviteContent(guestName, eventName, rsvpLink string) string {
	return fmt.Sprintf(`
    <h1>Hi %s!</h1>
    <p>You have been invited to <strong>%s</strong>.</p>
    <p>Please let the organizer know whether you can make it:</p>
    <center>
      <a href="%s" class="gatherly-button">Respond to invitation</a>
    </center>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      If you were not expecting this invitation you can ignore this email.
    </p>`, guestName, eventName, rsvpLink)
}

func reservationCreatedContent(n ReservationNotice) string {
	msg := ""
	if n.Message != "" {
		msg = fmt.Sprintf(`<p>They added a note: <em>%s</em></p>`, n.Message)
	}
	return fmt.Sprintf(`
    <h1>New gift reservation</h1>
    <p><strong>%s</strong> reserved <strong>%d × %s</strong> for %s.</p>
    %s`, n.GuestName, n.Quantity, n.GiftName, n.EventName, msg)
}

func reservationCancelledContent(n ReservationNotice) string {
	return fmt.Sprintf(`
    <h1>Reservation cancelled</h1>
    <p><strong>%s</strong> cancelled their reservation of <strong>%s</strong> for %s.</p>`,
		n.GuestName, n.GiftName, n.EventName)
}
