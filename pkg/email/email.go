package email

import (
	"fmt"
	"net"
	"net/smtp"
	"time"
)

// Sender delivers a plain text email. Callers in the notification
// paths treat a failed send as non-fatal.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail over plain SMTP with a bounded dial timeout so
// a dead mail server cannot stall the request path or the worker.
type SMTPSender struct {
	Host     string
	Port     string
	From     string
	Password string
	Timeout  time.Duration
}

func NewSMTPSender(host, port, from, password string, timeout time.Duration) *SMTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPSender{Host: host, Port: port, From: from, Password: password, Timeout: timeout}
}

// Send sends a plain text email using SMTP.
func (s *SMTPSender) Send(to, subject, body string) error {
	address := net.JoinHostPort(s.Host, s.Port)

	conn, err := net.DialTimeout("tcp", address, s.Timeout)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %v", err)
	}
	if err := conn.SetDeadline(time.Now().Add(s.Timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set smtp deadline: %v", err)
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open smtp client: %v", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	if ok, _ := client.Extension("AUTH"); ok {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %v", err)
		}
	}

	if err := client.Mail(s.From); err != nil {
		return fmt.Errorf("failed to set sender: %v", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %v", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %v", err)
	}

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %v", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return client.Quit()
}
