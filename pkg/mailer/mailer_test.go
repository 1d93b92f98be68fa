package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPMailer_Validation(t *testing.T) {
	_, err := NewSMTPMailer(Config{Port: "25", From: "a@b.c"})
	assert.Error(t, err)

	_, err = NewSMTPMailer(Config{Host: "localhost", Port: "25"})
	assert.Error(t, err)

	m, err := NewSMTPMailer(Config{Host: "localhost", Port: "25", From: "noreply@grantmatch.io"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestSMTPMailer_Send(t *testing.T) {
	m, err := NewSMTPMailer(Config{Host: "smtp.local", Port: "2525", User: "u", Pass: "p", From: "noreply@grantmatch.io"})
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg, gotAuth = addr, to, string(msg), a
		return nil
	}

	err = m.Send(context.Background(), Message{To: "founder@startup.io", Subject: "Upgraded", Body: "<p>Welcome to premium</p>"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Equal(t, []string{"founder@startup.io"}, gotTo)
	assert.NotNil(t, gotAuth)
	assert.Contains(t, gotMsg, "Subject: Upgraded\r\n")
	assert.Contains(t, gotMsg, "Content-Type: text/html; charset=UTF-8")
}

func TestSMTPMailer_SendErrors(t *testing.T) {
	m, err := NewSMTPMailer(Config{Host: "smtp.local", Port: "25", From: "noreply@grantmatch.io"})
	require.NoError(t, err)
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	assert.Error(t, m.Send(context.Background(), Message{Subject: "s"}))
	assert.Error(t, m.Send(context.Background(), Message{To: "x@y.z"}))
	assert.ErrorContains(t, m.Send(context.Background(), Message{To: "x@y.z", Subject: "s", Body: "plain"}), "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{To: "x@y.z", Subject: "s"}), context.Canceled)
}

func TestBuildMessage_PlainText(t *testing.T) {
	raw := string(buildMessage("from@x.io", Message{To: "to@x.io", Subject: "Hi", Body: "hello"}))
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, raw, "From: from@x.io\r\n")
}
