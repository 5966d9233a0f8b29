package monday

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultURL       = "https://api.monday.com/v2"
	DefaultPageLimit = 500
	// MaxPageLimit is the largest page items_page accepts.
	MaxPageLimit = 500
)

// Config contains board API connection parameters.
type Config struct {
	APIKey     string        `envconfig:"MONDAY_API_KEY" required:"true"`
	BoardID    string        `envconfig:"BOARD_ID" required:"true"`
	URL        string        `envconfig:"MONDAY_API_URL" default:"https://api.monday.com/v2"`
	APIVersion string        `envconfig:"MONDAY_API_VERSION"`                // sent as API-Version when set
	PageLimit  int           `envconfig:"MONDAY_PAGE_LIMIT" default:"500"`   // items per page, 1..500
	Paginate   bool          `envconfig:"MONDAY_PAGINATE" default:"false"`   // follow cursors past the first page
	Timeout    time.Duration `envconfig:"MONDAY_HTTP_TIMEOUT" default:"0s"` // 0 means no client timeout
}

// Validate checks values that end up inside the GraphQL query.
func (c Config) Validate() error {
	if _, err := strconv.ParseUint(c.BoardID, 10, 64); err != nil {
		return errors.Errorf("board id %q is not a number", c.BoardID)
	}
	if c.PageLimit < 1 || c.PageLimit > MaxPageLimit {
		return errors.Errorf("page limit %d is out of range 1..%d", c.PageLimit, MaxPageLimit)
	}
	return nil
}

func (c Config) url() string {
	if c.URL == "" {
		return DefaultURL
	}
	return c.URL
}

func (c Config) pageLimit() int {
	if c.PageLimit == 0 {
		return DefaultPageLimit
	}
	return c.PageLimit
}
