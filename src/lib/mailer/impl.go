package mailer

import (
	"bitlibro/src/config"
	"bitlibro/src/lib"
	awslib "bitlibro/src/lib/aws"
	"context"
	"log"
)

const (
	DRIVER_SMTP = "smtp"
	DRIVER_SES  = "ses"
)

type Mailer interface {
	Send(ctx context.Context, input *lib.SendMailInput) error
}

type SMTPMailer struct{}

func (SMTPMailer) Send(ctx context.Context, input *lib.SendMailInput) error {
	return lib.SendMail(input)
}

type SESMailer struct{}

func (SESMailer) Send(ctx context.Context, input *lib.SendMailInput) error {
	_, err := awslib.SESSendMessage(ctx, input.From, input.To, input.Subject, input.Body, input.Html)
	return err
}

// NewMailer picks the transport from MAIL_DRIVER, defaulting to SMTP.
func NewMailer() Mailer {
	driver := config.GetEnv("MAIL_DRIVER", DRIVER_SMTP)
	switch driver {
	case DRIVER_SES:
		return SESMailer{}
	case DRIVER_SMTP:
		return SMTPMailer{}
	}
	log.Printf("[mailer] Unknown MAIL_DRIVER %q, using smtp\n", driver)
	return SMTPMailer{}
}
