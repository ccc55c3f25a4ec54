// Package config loads runtime configuration from environment variables.
//
// Unlike the database-backed services this grew out of, nothing here is
// fail-fast: missing eBay credentials put the ad-hoc search endpoint in
// mock mode and surface as auth failures on the scheduled path, and
// missing SMTP settings surface as send failures. Only malformed numeric
// values abort startup.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the listing monitor.
type Config struct {
	Port         string
	CriteriaFile string

	EbayClientID     string
	EbayClientSecret string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	AdminEmail     string // optional recipient of error alerts
	RunImmediately bool   // fire one check right after the scheduler starts
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	criteriaFile := os.Getenv("CRITERIA_FILE")
	if criteriaFile == "" {
		criteriaFile = "search-criteria.json"
	}

	smtpPort := 465
	if s := os.Getenv("SMTP_PORT"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SMTP_PORT must be a positive integer, got %q", s)
		}
		smtpPort = v
	}

	mailFrom := os.Getenv("MAIL_FROM")
	if mailFrom == "" {
		mailFrom = os.Getenv("SMTP_USER")
	}

	return &Config{
		Port:             port,
		CriteriaFile:     criteriaFile,
		EbayClientID:     os.Getenv("EBAY_CLIENT_ID"),
		EbayClientSecret: os.Getenv("EBAY_CLIENT_SECRET"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         smtpPort,
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		MailFrom:         mailFrom,
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		RunImmediately:   os.Getenv("RUN_IMMEDIATELY") == "true",
	}, nil
}
