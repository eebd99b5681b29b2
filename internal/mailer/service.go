// Package mailer delivers completed price comparison workbooks by email.
package mailer

import (
	"bytes"
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/ternarybob/arbor"

	"github.com/akashstwt/scraper-backend/internal/common"
)

const attachmentContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sender delivers a result workbook to a recipient
type Sender interface {
	SendResults(to string, workbook []byte, codeCount int) error
}

// Service sends result emails over SMTP with the workbook attached
type Service struct {
	config common.SMTPConfig
	logger arbor.ILogger

	// injection point for tests
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewService(config common.SMTPConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendResults emails the workbook to the recipient. The attachment is named
// by generation date so repeated runs sort naturally in a mailbox.
func (s *Service) SendResults(to string, workbook []byte, codeCount int) error {
	if s.config.From == "" || s.config.Password == "" {
		return fmt.Errorf("smtp credentials not configured")
	}

	now := time.Now()

	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Price Scraper Results - %d OEM Codes", codeCount)
	e.HTML = []byte(buildBody(codeCount, now))

	filename := fmt.Sprintf("price_comparison_%s.xlsx", now.Format("20060102"))
	if _, err := e.Attach(bytes.NewReader(workbook), filename, attachmentContentType); err != nil {
		return fmt.Errorf("failed to attach workbook: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	username := s.config.Username
	if username == "" {
		username = s.config.From
	}
	auth := smtp.PlainAuth("", username, s.config.Password, s.config.Host)

	if err := s.send(e, addr, auth); err != nil {
		return fmt.Errorf("smtp delivery failed: %w", err)
	}

	s.logger.Info().
		Str("to", to).
		Str("attachment", filename).
		Int("codes", codeCount).
		Msg("Result email sent")
	return nil
}

func buildBody(codeCount int, now time.Time) string {
	return fmt.Sprintf(`
<html>
<body>
	<h2>Price Comparison Results</h2>
	<p>Your price scraping job has completed.</p>
	<ul>
		<li><strong>OEM codes processed:</strong> %d</li>
		<li><strong>Sources:</strong> HotToner, InkStation</li>
		<li><strong>Completed:</strong> %s</li>
	</ul>
	<p>The full comparison is attached as a spreadsheet.</p>
</body>
</html>`, codeCount, now.Format("2 Jan 2006 15:04"))
}
