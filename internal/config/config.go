package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	BrevoAPIKey         string // BREVO_API_KEY for invitation and reservation emails
	MailFrom            string // MAIL_FROM sender email (default noreply@gatherly.app)
	WhatsAppToken       string // WhatsApp Cloud API bearer token
	WhatsAppPhoneID     string // WhatsApp Cloud API sender phone number id
	SupabaseURL         string // used for storage signed-upload and public URLs
	SupabaseSecretKey   string // must be service_role key, not anon key
	RSVPBaseURL         string // base URL for invite links (e.g. https://gatherly.app)
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		BrevoAPIKey:         viper.GetString("BREVO_API_KEY"),
		MailFrom:            viper.GetString("MAIL_FROM"),
		WhatsAppToken:       viper.GetString("WHATSAPP_TOKEN"),
		WhatsAppPhoneID:     viper.GetString("WHATSAPP_PHONE_ID"),
		SupabaseURL:         viper.GetString("SUPABASE_URL"),
		SupabaseSecretKey:   viper.GetString("SUPABASE_SECRET_KEY"),
		RSVPBaseURL:         rsvpBaseURL(viper.GetString("RSVP_BASE_URL")),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
	}, nil
}

func rsvpBaseURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "https://gatherly.app"
	}
	return strings.TrimRight(s, "/")
}
