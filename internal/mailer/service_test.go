package mailer

import (
	"net/smtp"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashstwt/scraper-backend/internal/common"
)

func testConfig() common.SMTPConfig {
	return common.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		From:     "scraper@example.com",
		FromName: "Price Scraper",
		Password: "secret",
	}
}

func TestSendResultsBuildsMessage(t *testing.T) {
	var captured *email.Email
	var capturedAddr string

	svc := NewService(testConfig(), common.GetLogger())
	svc.send = func(e *email.Email, addr string, _ smtp.Auth) error {
		captured = e
		capturedAddr = addr
		return nil
	}

	workbook := []byte("fake workbook bytes")
	require.NoError(t, svc.SendResults("buyer@example.com", workbook, 12))

	require.NotNil(t, captured)
	assert.Equal(t, "smtp.example.com:587", capturedAddr)
	assert.Equal(t, []string{"buyer@example.com"}, captured.To)
	assert.Equal(t, "Price Scraper Results - 12 OEM Codes", captured.Subject)
	assert.Contains(t, string(captured.HTML), "12")

	require.Len(t, captured.Attachments, 1)
	attachment := captured.Attachments[0]
	expectedName := "price_comparison_" + time.Now().Format("20060102") + ".xlsx"
	assert.Equal(t, expectedName, attachment.Filename)
	assert.Equal(t, workbook, attachment.Content)
}

func TestSendResultsMissingCredentials(t *testing.T) {
	config := testConfig()
	config.Password = ""

	svc := NewService(config, common.GetLogger())
	svc.send = func(*email.Email, string, smtp.Auth) error {
		t.Fatal("send must not be called without credentials")
		return nil
	}

	err := svc.SendResults("buyer@example.com", []byte("x"), 1)
	assert.Error(t, err)
}
