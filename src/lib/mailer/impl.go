package mailer

import (
	"clubdesk/src/config"
	"clubdesk/src/lib"
	"fmt"
	"strings"
	"time"
)

type GuestCodeMail struct {
	GuestName string
	Email     string
	EventName string
	EventDate time.Time
	Code      string
	QRPath    string
	QRURL     *string
}

// NewGuestCodeMessage composes the invitation sent to a guest once their
// request is approved.
func NewGuestCodeMessage(m *GuestCodeMail) *lib.SendMailInput {
	smtp := config.SMTP()
	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\n", m.GuestName)
	fmt.Fprintf(&body, "You are on the guest list for %s on %s.\n", m.EventName, m.EventDate.Format("Mon 02 Jan 2006 15:04"))
	fmt.Fprintf(&body, "Show the attached QR code at the door or give the staff this code: %s\n", m.Code)
	if m.QRURL != nil {
		fmt.Fprintf(&body, "\nYou can also open it here: %s\n", *m.QRURL)
	}
	body.WriteString("\nThe code is valid for a single entry.\n")

	input := &lib.SendMailInput{
		From:     smtp.From,
		FromName: smtp.FromName,
		To:       []string{m.Email},
		Subject:  fmt.Sprintf("Your entry code for %s", m.EventName),
		Body:     body.String(),
	}
	if m.QRPath != "" {
		input.Attachments = []string{m.QRPath}
	}
	return input
}

func SendGuestCode(m *GuestCodeMail) error {
	if err := lib.SendMail(NewGuestCodeMessage(m)); err != nil {
		return fmt.Errorf("error sending guest code to %s: %w", m.Email, err)
	}
	return nil
}
