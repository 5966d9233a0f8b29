package dispatch

const (
	DefaultSubject       = "Your Email from Monday Board"
	DefaultEmailColumn   = "email1__1"
	DefaultContentColumn = "email_content__1"
)

// Config describes how board rows become emails.
type Config struct {
	From          string `envconfig:"FROM_EMAIL" required:"true"`
	FromName      string `envconfig:"FROM_NAME"`
	Subject       string `envconfig:"EMAIL_SUBJECT" default:"Your Email from Monday Board"`
	EmailColumn   string `envconfig:"MONDAY_EMAIL_COLUMN" default:"email1__1"`
	ContentColumn string `envconfig:"MONDAY_CONTENT_COLUMN" default:"email_content__1"`
}

func (c Config) withDefaults() Config {
	if c.Subject == "" {
		c.Subject = DefaultSubject
	}
	if c.EmailColumn == "" {
		c.EmailColumn = DefaultEmailColumn
	}
	if c.ContentColumn == "" {
		c.ContentColumn = DefaultContentColumn
	}
	return c
}
