package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HeaderText string
	ImageURL   string
	Port       int
	Debug      bool
}

const (
	defaultHeaderText = "Welcome to Flask!"
	defaultPort       = 8080
	listenHost        = "0.0.0.0"
)

// Load reads configuration from environment variables.
// HEADER_TEXT, IMAGE_URL, PORT (defaults to 8080 if unset), FLASK_DEBUG.
func Load() (*Config, error) {
	return Parse(os.LookupEnv)
}

// Parse builds a Config from lookup. Only PORT is validated; a PORT that is
// set must parse as an integer, even when empty.
func Parse(lookup func(string) (string, bool)) (*Config, error) {
	header, ok := lookup("HEADER_TEXT")
	if !ok {
		header = defaultHeaderText
	}
	image, _ := lookup("IMAGE_URL")

	port := defaultPort
	if raw, ok := lookup("PORT"); ok {
		p, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("PORT %q is not an integer: %w", raw, err)
		}
		port = p
	}

	debug, _ := lookup("FLASK_DEBUG")
	return &Config{
		HeaderText: header,
		ImageURL:   image,
		Port:       port,
		Debug:      strings.EqualFold(debug, "true"),
	}, nil
}

// HTTPAddr is the listen address on all interfaces.
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(listenHost, strconv.Itoa(c.Port))
}

// LoadDotenv loads variables from the given files (".env" if none) into the
// process environment. Missing files are skipped; variables that are already
// set are left alone.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
