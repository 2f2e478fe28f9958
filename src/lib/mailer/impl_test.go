package mailer

import (
	"errors"
	"testing"
	"time"

	"clubdesk/src/lib"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuestCodeMessage(t *testing.T) {
	t.Setenv("MAIL_FROM", "door@club.test")
	url := "https://assets.example/qr.jpeg"
	input := NewGuestCodeMessage(&GuestCodeMail{
		GuestName: "Jane Doe",
		Email:     "jane@example.com",
		EventName: "Friday Night",
		EventDate: time.Date(2024, 3, 8, 23, 0, 0, 0, time.UTC),
		Code:      "ABCDEFGH23456789",
		QRPath:    "/tmp/qr.jpeg",
		QRURL:     &url,
	})

	assert.Equal(t, []string{"jane@example.com"}, input.To)
	assert.Equal(t, "door@club.test", input.From)
	assert.Contains(t, input.Subject, "Friday Night")
	assert.Contains(t, input.Body, "ABCDEFGH23456789")
	assert.Contains(t, input.Body, url)
	assert.Equal(t, []string{"/tmp/qr.jpeg"}, input.Attachments)

	msg, err := lib.BuildMessage(input)
	require.NoError(t, err)
	assert.NotNil(t, msg)
}

func TestSendGuestCodeWithoutSMTP(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	err := SendGuestCode(&GuestCodeMail{Email: "jane@example.com", EventName: "x"})
	assert.True(t, errors.Is(err, lib.ErrMailDisabled))
}
