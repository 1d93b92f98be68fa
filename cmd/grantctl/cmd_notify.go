package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/core"
	"grantmatch-backend-go/pkg/mailer"
	"grantmatch-backend-go/pkg/messagequeue"
)

// notifyWorkerCmd consumes queued notifications and emails tier changes.
var notifyWorkerCmd = &cobra.Command{
	Use:   "notify-worker",
	Short: "Consume the notification queue and send emails",
	RunE:  runNotifyWorker,
}

func runNotifyWorker(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required for notify-worker")
	}
	if e.cfg.SMTPHost == "" {
		return errors.New("SMTP_HOST is required for notify-worker")
	}

	m, err := mailer.NewSMTPMailer(mailer.Config{
		Host: e.cfg.SMTPHost, Port: e.cfg.SMTPPort,
		User: e.cfg.SMTPUser, Pass: e.cfg.SMTPPass, From: e.cfg.MailFrom,
	})
	if err != nil {
		return err
	}
	queue, err := messagequeue.NewRabbitMQService(e.cfg.RabbitMQURL, e.logger)
	if err != nil {
		return err
	}
	defer queue.Close()

	e.logger.Info("Notification worker started", zap.String("queue", e.cfg.NotifyQueue))
	return queue.Consume(ctx, e.cfg.NotifyQueue, core.NotificationMailHandler(ctx, m, e.logger))
}
