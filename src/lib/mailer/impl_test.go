package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMailer(t *testing.T) {
	t.Setenv("MAIL_DRIVER", "ses")
	assert.IsType(t, SESMailer{}, NewMailer())

	t.Setenv("MAIL_DRIVER", "smtp")
	assert.IsType(t, SMTPMailer{}, NewMailer())

	t.Setenv("MAIL_DRIVER", "carrier-pigeon")
	assert.IsType(t, SMTPMailer{}, NewMailer())
}
