package lib

import (
	"clubdesk/src/config"
	"errors"
	"log"

	"github.com/wneessen/go-mail"
)

var ErrMailDisabled = errors.New("smtp is not configured")

func GetSMTPClient() (*mail.Client, error) {
	settings := config.SMTP()
	if settings.Host == "" {
		return nil, ErrMailDisabled
	}
	opts := []mail.Option{mail.WithPort(settings.Port)}
	if settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(settings.Username),
			mail.WithPassword(settings.Password),
		)
	}
	c, err := mail.NewClient(settings.Host, opts...)
	if err != nil {
		log.Printf("Could not initialize smtp client: %s\n", err.Error())
		return nil, err
	}
	return c, nil
}

// BuildMessage turns the input into a go-mail message without sending it.
func BuildMessage(inputParams *SendMailInput) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(inputParams.FromName, inputParams.From); err != nil {
		return nil, err
	}
	if err := msg.To(inputParams.To...); err != nil {
		return nil, err
	}
	if inputParams.ReplyTo != "" {
		if err := msg.ReplyTo(inputParams.ReplyTo); err != nil {
			log.Printf("Failed to set Reply-To address: %s\n", err.Error())
		}
	}
	if len(inputParams.Bcc) > 0 {
		if err := msg.Bcc(inputParams.Bcc...); err != nil {
			log.Printf("Failed to set Bcc address: %s\n", err.Error())
		}
	}
	msg.Subject(inputParams.Subject)
	if inputParams.Html {
		msg.SetBodyString(mail.TypeTextHTML, inputParams.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, inputParams.Body)
	}
	for _, f := range inputParams.Attachments {
		msg.AttachFile(f)
	}
	return msg, nil
}

func SendMail(inputParams *SendMailInput) error {
	c, err := GetSMTPClient()
	if err != nil {
		return err
	}
	msg, err := BuildMessage(inputParams)
	if err != nil {
		return err
	}
	return c.DialAndSend(msg)
}

type SendMailInput struct {
	From        string
	FromName    string
	To          []string
	Bcc         []string
	ReplyTo     string
	Subject     string
	Body        string
	Html        bool
	Attachments []string
}
