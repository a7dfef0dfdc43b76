package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendGenerationComplete(toEmail, sessionId, status string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendGenerationComplete(toEmail, sessionId, status string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)

	headline := "Your startup package is ready"
	note := "All modules were generated successfully."
	if status == "partial" {
		headline = "Your startup package is partially ready"
		note = "Some modules could not be generated. You can retry them from the dashboard."
	}
	m.SetHeader("Subject", headline)

	sessionLink := fmt.Sprintf("%s/sessions/%s", s.frontendURL, sessionId)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>%s</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open your results</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, headline, note, sessionLink, sessionLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send completion mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Completion mail sent to %s\n", toEmail)
	return nil
}
