// Package config manages the client configuration: the three service
// base URLs, the identity login mode, the responses submit path and
// the local state file locations. Values come from command-line flags,
// overridden by environment variables, optionally seeded from a JSON
// config file and a .env file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the client.
type Options struct {
	// AuthURL is the identity service base URL.
	AuthURL string

	// FormsURL is the forms service base URL.
	FormsURL string

	// ResponsesURL is the responses service base URL.
	ResponsesURL string

	// LoginMode selects how login credentials are sent: query, json
	// or form.
	LoginMode string

	// SubmitPath is the responses submit path template; {id} and :id
	// are replaced with the form id.
	SubmitPath string

	// SessionFile is where the bearer token / guest flag live.
	SessionFile string

	// EmailsFile is where locally registered emails are remembered.
	EmailsFile string

	// Config is the path to the JSON config file.
	Config string

	// Debug enables debug-level logging.
	Debug bool
}

var options = &Options{}

func init() {
	flag.StringVar(&options.AuthURL, "auth-url", "http://localhost:8001", "identity service base URL")
	flag.StringVar(&options.FormsURL, "forms-url", "http://localhost:8002", "forms service base URL")
	flag.StringVar(&options.ResponsesURL, "responses-url", "http://localhost:8003", "responses service base URL")
	flag.StringVar(&options.LoginMode, "login-mode", "query", "login credential mode: query | json | form")
	flag.StringVar(&options.SubmitPath, "submit-path", "/submit", "responses submit path template ({id} or :id)")
	flag.StringVar(&options.SessionFile, "session-file", "session.json", "path to the session state file")
	flag.StringVar(&options.EmailsFile, "emails-file", "emails.json", "path to the registered-emails file")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
	flag.BoolVar(&options.Debug, "debug", false, "log at DEBUG level")
}

// Parse parses command-line flags, the optional config and .env files
// and environment variables, in increasing precedence. It returns a
// pointer to the Options struct containing the final values.
func Parse() *Options {
	flag.Parse()

	// A .env next to the binary seeds the environment; real env vars win.
	_ = godotenv.Load()

	if configPath := os.Getenv("FORMFLOW_CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	for env, dst := range map[string]*string{
		"FORMFLOW_AUTH_API":      &options.AuthURL,
		"FORMFLOW_FORMS_API":     &options.FormsURL,
		"FORMFLOW_RESPONSES_API": &options.ResponsesURL,
		"FORMFLOW_LOGIN_MODE":    &options.LoginMode,
		"FORMFLOW_SUBMIT_PATH":   &options.SubmitPath,
		"FORMFLOW_SESSION_FILE":  &options.SessionFile,
		"FORMFLOW_EMAILS_FILE":   &options.EmailsFile,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	return options
}
