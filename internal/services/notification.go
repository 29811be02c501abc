package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"medequip/internal/entities"
	"medequip/internal/events"
	"medequip/pkg/config"
)

// NotificationServiceInterface — отправка писем подписчикам событий.
// Реализация должна быть идемпотентной: шина событий не ретраит ошибки.
type NotificationServiceInterface interface {
	SendRepairRequestCreated(ctx context.Context, recipients []entities.User, event events.RepairRequestCreatedEvent) error
	SendLowStock(ctx context.Context, recipients []entities.User, event events.LowStockEvent) error
}

type mailSender func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type notificationService struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      mailSender
	logger    *zap.Logger
}

func NewNotificationService(cfg config.SMTPConfig, logger *zap.Logger) (NotificationServiceInterface, error) {
	templates, err := template.ParseGlob(filepath.Join(cfg.TemplatesDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки шаблонов писем: %w", err)
	}
	return &notificationService{
		cfg:       cfg,
		templates: templates,
		send:      smtp.SendMail,
		logger:    logger,
	}, nil
}

func (s *notificationService) SendRepairRequestCreated(ctx context.Context, recipients []entities.User, event events.RepairRequestCreatedEvent) error {
	subject := fmt.Sprintf("Новая заявка на ремонт #%d", event.RepairRequestID)
	return s.sendToAll(ctx, recipients, subject, s.cfg.RepairRequestCreatedTemplate, event)
}

func (s *notificationService) SendLowStock(ctx context.Context, recipients []entities.User, event events.LowStockEvent) error {
	subject := "Низкий остаток запчастей на складе"
	return s.sendToAll(ctx, recipients, subject, s.cfg.LowStockTemplate, event)
}

// sendToAll отправляет письмо каждому получателю отдельно. Сбой одного
// адресата не останавливает рассылку остальным.
func (s *notificationService) sendToAll(ctx context.Context, recipients []entities.User, subject, templateName string, data interface{}) error {
	if len(recipients) == 0 {
		return nil
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("ошибка рендера шаблона %s: %w", templateName, err)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Server)
	}

	var failed []string
	for _, recipient := range recipients {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg := buildMessage(s.cfg.FromAddress, recipient.Email, subject, body.String())
		if err := s.send(addr, auth, s.cfg.FromAddress, []string{recipient.Email}, msg); err != nil {
			s.logger.Error("не удалось отправить письмо",
				zap.String("to", recipient.Email), zap.Error(err))
			failed = append(failed, recipient.Email)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("не доставлено %d из %d писем: %s", len(failed), len(recipients), strings.Join(failed, ", "))
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
