package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	PayFast  PayFastConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type PayFastConfig struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	ProcessURL  string
	ValidateURL string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
	// SkipValidatePostback disables the server-to-server validate call,
	// for sandbox runs only. Signature and amount checks still apply.
	SkipValidatePostback bool
}

type BookingConfig struct {
	// ReservationTTLMinutes is how long a reserved date is held while
	// payment is outstanding before the sweeper releases it.
	ReservationTTLMinutes int
	SweepIntervalMinutes  int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("PAYFAST_PROCESS_URL", "https://www.payfast.co.za/eng/process")
	viper.SetDefault("PAYFAST_VALIDATE_URL", "https://www.payfast.co.za/eng/query/validate")
	viper.SetDefault("PAYFAST_SKIP_VALIDATE", false)
	viper.SetDefault("RESERVATION_TTL_MINUTES", 30)
	viper.SetDefault("SWEEP_INTERVAL_MINUTES", 5)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		PayFast: PayFastConfig{
			MerchantID:           viper.GetString("PAYFAST_MERCHANT_ID"),
			MerchantKey:          viper.GetString("PAYFAST_MERCHANT_KEY"),
			Passphrase:           viper.GetString("PAYFAST_PASSPHRASE"),
			ProcessURL:           viper.GetString("PAYFAST_PROCESS_URL"),
			ValidateURL:          viper.GetString("PAYFAST_VALIDATE_URL"),
			ReturnURL:            viper.GetString("PAYFAST_RETURN_URL"),
			CancelURL:            viper.GetString("PAYFAST_CANCEL_URL"),
			NotifyURL:            viper.GetString("PAYFAST_NOTIFY_URL"),
			SkipValidatePostback: viper.GetBool("PAYFAST_SKIP_VALIDATE"),
		},
		Booking: BookingConfig{
			ReservationTTLMinutes: viper.GetInt("RESERVATION_TTL_MINUTES"),
			SweepIntervalMinutes:  viper.GetInt("SWEEP_INTERVAL_MINUTES"),
		},
	}

	return config, nil
}
