package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定。mainで1回だけ作って各層に渡す。
type Config struct {
	Port     string `default:"8080" usage:"HTTP listen port"`
	GoEnv    string `default:"dev" usage:"dev/prod"`
	LogLevel string `default:"info" usage:"zap log level"`

	APIURL      string `usage:"public base URL of this API (links in emails)"`
	FrontendURL string `usage:"frontend base URL (payment callback, reset links)"`

	HTTP          HTTPConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Paystack      PaystackConfig
	Arkesel       ArkeselConfig
	SMTP          SMTPConfig
	Storage       StorageConfig
	Shipping      ShippingConfig
	Notifications NotificationConfig
	Admin         AdminConfig
}

type HTTPConfig struct {
	CORSOrigins     []string      `default:"*" usage:"allowed CORS origins"`
	BodyLimit       string        `default:"10M" usage:"max request body size"`
	ReadTimeout     time.Duration `default:"15s"`
	WriteTimeout    time.Duration `default:"30s"`
	ShutdownTimeout time.Duration `default:"15s"`
}

type PostgresConfig struct {
	DatabaseURL string `usage:"full DSN, takes precedence over the individual fields"`
	Host        string `default:"localhost"`
	Port        int    `default:"5432"`
	User        string `default:"postgres"`
	Password    string `default:"postgres"`
	DB          string `default:"maltiti"`
	SSLMode     string `default:"disable"`
}

type RedisConfig struct {
	Addr     string `default:"localhost:6379"`
	Password string
	DB       int `default:"0"`
}

type JWTConfig struct {
	Secret        string        `usage:"access token signing secret"`
	RefreshSecret string        `usage:"refresh token signing secret"`
	AccessTTL     time.Duration `default:"15m"`
	RefreshTTL    time.Duration `default:"24h"`
}

type PaystackConfig struct {
	BaseURL      string        `default:"https://api.paystack.co"`
	SecretKey    string        `usage:"Paystack secret key"`
	Timeout      time.Duration `default:"15s"`
	VerifyTries  uint64        `default:"3" usage:"max attempts for transaction verify"`
	CurrencyCode string        `default:"GHS"`
}

type ArkeselConfig struct {
	BaseURL string        `default:"https://sms.arkesel.com"`
	APIKey  string        `usage:"Arkesel api-key header"`
	Sender  string        `default:"Maltiti"`
	Timeout time.Duration `default:"10s"`
}

type SMTPConfig struct {
	Host     string `default:"smtp.gmail.com"`
	Port     int    `default:"587"`
	User     string
	Password string
	From     string        `default:"info@maltitiaenterprise.com"`
	FromName string        `default:"Maltiti A. Enterprise Ltd"`
	Timeout  time.Duration `default:"15s"`
}

type StorageConfig struct {
	Bucket        string `usage:"GCS bucket for product and member images"`
	PublicBaseURL string `default:"https://storage.googleapis.com"`
}

// 1箱あたりの配送料（地域別）
type ShippingConfig struct {
	LocalRate string `default:"20" usage:"per-box rate inside the local zone"`
	OtherRate string `default:"30" usage:"per-box rate for every other zone"`
}

type NotificationConfig struct {
	PollInterval time.Duration `default:"5s"`
	BatchSize    int           `default:"20"`
	MaxAttempts  int           `default:"5"`
	SendTimeout  time.Duration `default:"10s"`
	Lease        time.Duration `usage:"how long a claimed batch stays hidden from other dispatchers (min (BatchSize+1)*SendTimeout)"`
}

// 注文通知を受け取る管理者
type AdminConfig struct {
	Phone string
	Email string `default:"info@maltitiaenterprise.com"`
	Name  string `default:"Maltiti"`
}

// Loadは.env → 環境変数（MALTITI_接頭辞）→ config.yaml の順で読み込む
func Load() (Config, error) {
	// .envは無くてもよい
	_ = godotenv.Load()

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:        "MALTITI",
		SkipFlags:        true,
		AllowUnknownEnvs: true,
		Files:            []string{"config.yaml", "/etc/maltiti/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DATABASE_URL / PORT などプラットフォーム標準の変数も拾う
func (c *Config) applyPlatformDefaults() {
	if c.Postgres.DatabaseURL == "" {
		c.Postgres.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if v := os.Getenv("PORT"); v != "" && c.Port == "8080" {
		c.Port = v
	}
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
	c.APIURL = strings.TrimRight(c.APIURL, "/")
}

// 必須チェック
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (MALTITI_JWT_SECRET)")
	}
	if c.JWT.RefreshSecret == "" {
		return errors.New("jwt refresh secret is required (MALTITI_JWT_REFRESH_SECRET)")
	}
	if c.Paystack.SecretKey == "" {
		return errors.New("paystack secret key is required (MALTITI_PAYSTACK_SECRET_KEY)")
	}
	if c.FrontendURL == "" {
		return errors.New("frontend url is required (MALTITI_FRONTEND_URL)")
	}
	if _, err := c.Shipping.Rates(); err != nil {
		return err
	}
	return nil
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// DSNを組み立てる（DatabaseURLがあれば最優先）
func (p PostgresConfig) DSN() string {
	if p.DatabaseURL != "" {
		return p.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode,
	)
}

type ShippingRates struct {
	Local decimal.Decimal
	Other decimal.Decimal
}

func (s ShippingConfig) Rates() (ShippingRates, error) {
	local, err := decimal.NewFromString(strings.TrimSpace(s.LocalRate))
	if err != nil {
		return ShippingRates{}, errors.Wrap(err, "shipping local rate")
	}
	other, err := decimal.NewFromString(strings.TrimSpace(s.OtherRate))
	if err != nil {
		return ShippingRates{}, errors.Wrap(err, "shipping other rate")
	}
	if local.IsNegative() || other.IsNegative() {
		return ShippingRates{}, errors.New("shipping rates must be >= 0")
	}
	return ShippingRates{Local: local, Other: other}, nil
}
