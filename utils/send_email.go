package utils

import (
	"fmt"
	"log"
	"net/http"
	"net/smtp"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer gửi một email HTML kèm bản text thuần.
type Mailer interface {
	Send(to, subject, text, html string) error
}

type SMTPMailer struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (m *SMTPMailer) Send(to, subject, text, html string) error {
	// Headers: hỗ trợ UTF-8 & HTML
	msg := ""
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += fmt.Sprintf("From: %s\r\n", m.From)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "\r\n" + html

	err := smtp.SendMail(
		m.Host+":"+m.Port,
		smtp.PlainAuth("", m.From, m.Password, m.Host),
		m.From,
		[]string{to},
		[]byte(msg),
	)
	if err != nil {
		return fmt.Errorf("gửi email thất bại: %v", err)
	}
	return nil
}

type SendGridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendGridMailer(apiKey, fromName, fromEmail string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromEmail),
	}
}

func (m *SendGridMailer) Send(to, subject, text, html string) error {
	message := sgmail.NewSingleEmail(m.from, subject, sgmail.NewEmail("", to), text, html)
	res, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("gửi email sendgrid thất bại: %v", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("gửi email sendgrid thất bại: status=%d body=%s", res.StatusCode, res.Body)
	}
	return nil
}

// LogMailer chỉ ghi log, dùng khi chưa cấu hình mail.
type LogMailer struct{}

func (LogMailer) Send(to, subject, text, html string) error {
	log.Printf("[mail] to=%s subject=%q", to, subject)
	return nil
}

// SendAsync gửi mail trong goroutine riêng, lỗi chỉ ghi log, không chặn luồng chính.
func SendAsync(m Mailer, to, subject, text, html string) {
	if m == nil || to == "" {
		return
	}
	go func() {
		if err := m.Send(to, subject, text, html); err != nil {
			log.Println("Lỗi gửi email:", err)
		}
	}()
}
