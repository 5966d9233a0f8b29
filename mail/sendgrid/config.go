package sendgrid

import "time"

const (
	DefaultHost  = "https://api.sendgrid.com"
	SendEndpoint = "/v3/mail/send"
)

// Config contains SendGrid API parameters.
type Config struct {
	APIKey  string        `envconfig:"SENDGRID_API_KEY" required:"true"`
	Host    string        `envconfig:"SENDGRID_HOST" default:"https://api.sendgrid.com"`
	Timeout time.Duration `envconfig:"SENDGRID_HTTP_TIMEOUT" default:"0s"` // 0 means no client timeout
}
