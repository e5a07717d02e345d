// Package secrets resolves API credentials. The OS keychain is the home for
// them; environment variables are the fallback so headless boxes and CI can
// run without one.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups this app's secrets in the OS keychain.
	Service = "leadscout"

	accountAnthropic = "anthropic-api-key"
	accountRender    = "render-api-token"

	envAnthropic = "ANTHROPIC_API_KEY"
	envRender    = "LEADSCOUT_RENDER_TOKEN"
)

// AnthropicAPIKey returns the key for the extraction-fallback model, or ""
// when none is configured anywhere. A missing key is not an error: the
// engine simply runs without the AI fallback.
func AnthropicAPIKey() string {
	return lookup(accountAnthropic, envAnthropic)
}

// RenderAPIToken returns the paid render service token, or "" when none is
// configured. Without it the fetch chain stops after the headless stage.
func RenderAPIToken() string {
	return lookup(accountRender, envRender)
}

func lookup(account, envVar string) string {
	if pw, err := keyring.Get(Service, account); err == nil && strings.TrimSpace(pw) != "" {
		return pw
	}
	return strings.TrimSpace(os.Getenv(envVar))
}

// Set stores a secret under the given keychain account.
func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(Service, account, value)
}

// Delete removes a secret from the keychain.
func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(Service, account)
}
