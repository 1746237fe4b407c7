package utils

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

// SendVerificationEmail delivers a signup verification code over SMTP.
// Registration is the only place this service sends email.
func SendVerificationEmail(to, code string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	sender := os.Getenv("SMTP_SENDER")
	if sender == "" {
		sender = smtpUser
	}

	m := gomail.NewMessage()
	m.SetHeader("From", sender)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your Verification Code")
	m.SetBody("text/plain", fmt.Sprintf("Your verification code is: %s", code))
	m.AddAlternative("text/html", fmt.Sprintf("<p>Your verification code is: <strong>%s</strong></p>", code))

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}
