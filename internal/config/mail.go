package config

import "strings"

// MailConfig selects and configures the outbound mail transport used by the
// notification dispatcher.
type MailConfig struct {
	Transport string // smtp | mailjet | log

	Host     string
	Port     int
	Secure   bool // implicit TLS (port 465); STARTTLS is negotiated otherwise
	User     string
	Password string

	MailjetAPIKey    string
	MailjetSecretKey string

	FromAddress string
	FromName    string
	Inbox       string // restaurant mailbox that receives new reservations

	RestaurantName    string
	RestaurantAddress string
	RestaurantPhone   string
	RestaurantEmail   string
}

// LoadMailConfig reads EMAIL_*, MAILJET_* and RESTAURANT_* variables.  When
// no transport is named, smtp is used if EMAIL_USER is set and the log
// transport otherwise, so local runs never try to reach a mail server.
func LoadMailConfig() MailConfig {
	cfg := MailConfig{
		Transport: strings.ToLower(envStr("MAIL_TRANSPORT", "")),

		Host:     envStr("EMAIL_HOST", "smtp.gmail.com"),
		Port:     envInt("EMAIL_PORT", 587),
		Secure:   envBool("EMAIL_SECURE", false),
		User:     envStr("EMAIL_USER", ""),
		Password: envStr("EMAIL_PASS", ""),

		MailjetAPIKey:    envStr("MAILJET_API_KEY", ""),
		MailjetSecretKey: envStr("MAILJET_SECRET_KEY", ""),

		FromName: envStr("EMAIL_FROM_NAME", "SIRI Indian Kitchen & Cocktails"),
		Inbox:    envStr("RESTAURANT_INBOX", "sirirestaurant@aol.com"),

		RestaurantName:    envStr("RESTAURANT_NAME", "SIRI Indian Kitchen & Cocktails"),
		RestaurantAddress: envStr("RESTAURANT_ADDRESS", "275 Rte 4 West, Paramus, NJ 07652"),
		RestaurantPhone:   envStr("RESTAURANT_PHONE", "(555) 123-4567"),
		RestaurantEmail:   envStr("RESTAURANT_EMAIL", "info@sirirestaurant.com"),
	}
	cfg.FromAddress = envStr("EMAIL_FROM", cfg.User)
	if cfg.Transport == "" {
		cfg.Transport = "log"
		if cfg.User != "" {
			cfg.Transport = "smtp"
		}
	}
	return cfg
}
