package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"lms/config"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: OpenLearn <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

// HTML wrapper shared by all outgoing mails
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B3A5C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B3A5C; line-height: 1.6; }
			.footer { padding: 20px 30px; text-align: center; color: #9AA5B1; font-size: 12px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">%s</div>
			<div class="footer">You are receiving this email because you have an OpenLearn account.</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

// SendCertificateIssuedEmail notifies a student that their certificate was issued
func SendCertificateIssuedEmail(to, studentName, courseTitle, serialNumber string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Congratulations on completing <strong>%s</strong>!</p>
		<p>Your certificate has been issued with serial number <strong>%s</strong>.
		You can view and download it from your certificates page.</p>
		<p>Keep learning,<br/>The OpenLearn Team</p>`,
		studentName, courseTitle, serialNumber)

	return SendEmail([]string{to}, "Your certificate for "+courseTitle, getEmailTemplate("Certificate Issued", body))
}

// SendInactivityReminderEmail nudges a student who has not opened a course in a while
func SendInactivityReminderEmail(to, studentName, courseTitle string, progress int) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>It has been a week since you last opened <strong>%s</strong>.
		You are %d%% of the way there. Pick up where you left off!</p>
		<p>See you back,<br/>The OpenLearn Team</p>`,
		studentName, courseTitle, progress)

	return SendEmail([]string{to}, "Continue learning "+courseTitle, getEmailTemplate("We Miss You", body))
}
