package env

import (
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const DefaultEnvFile = ".env"

// MissingError lists every required variable that is unset or empty.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Names, ", ")
}

// IsMissing reports whether err carries a MissingError.
func IsMissing(err error) bool {
	var missingErr *MissingError
	return errors.As(err, &missingErr)
}

// InitConfig loads DefaultEnvFile (if any) and fills config from the environment.
// All required variables are checked up front so the caller sees every missing
// name at once instead of the first one envconfig trips on.
func InitConfig(config any) error {
	// nolint:errcheck // .env file is optional, failure is acceptable
	_ = godotenv.Load(DefaultEnvFile)

	if missing := Missing(config); len(missing) > 0 {
		return &MissingError{Names: missing}
	}

	if err := envconfig.Process("", config); err != nil {
		return errors.Wrap(err, "failed to envconfig.Process")
	}

	return nil
}

// Missing returns the keys of fields tagged required:"true" whose variable is
// unset or empty, in field order. Untagged nested structs are walked the way
// envconfig walks them. Non-struct inputs yield nil.
func Missing(config any) []string {
	v := reflect.ValueOf(config)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	return missing(v.Type(), "")
}

func missing(t reflect.Type, prefix string) []string {
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("ignored") == "true" {
			continue
		}

		tag := f.Tag.Get("envconfig")
		key := strings.ToUpper(f.Name)
		if prefix != "" {
			key = prefix + "_" + key
		}

		if f.Type.Kind() == reflect.Struct && tag == "" {
			inner := key
			if f.Anonymous {
				inner = prefix
			}
			names = append(names, missing(f.Type, inner)...)
			continue
		}

		if f.Tag.Get("required") != "true" {
			continue
		}
		if tag != "" {
			key = tag
		}
		if os.Getenv(key) == "" {
			names = append(names, key)
		}
	}

	return names
}
