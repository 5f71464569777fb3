package configs

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gorilla/securecookie"
)

type SessionKeys struct {
	AuthKey []byte
	EncKey  []byte
}

func LoadSessionKeys(env ENV) (*SessionKeys, error) {
	if env.AppAuthKey == "" {
		return nil, fmt.Errorf("APP_AUTH_KEY environment variable not set")
	}
	if env.AppEncKey == "" {
		return nil, fmt.Errorf("APP_ENC_KEY environment variable not set")
	}

	authKey, err := base64.URLEncoding.DecodeString(env.AppAuthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode APP_AUTH_KEY from Base64: %w", err)
	}
	encKey, err := base64.URLEncoding.DecodeString(env.AppEncKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode APP_ENC_KEY from Base64: %w", err)
	}

	if len(encKey) != 16 && len(encKey) != 24 && len(encKey) != 32 {
		return nil, fmt.Errorf("APP_ENC_KEY has invalid length %d after decoding. Must be 16, 24, or 32 bytes for AES encryption", len(encKey))
	}

	slog.Debug("session keys loaded")
	return &SessionKeys{
		AuthKey: authKey,
		EncKey:  encKey,
	}, nil
}

// CSRFKey decodes CSRF_KEY. An empty key disables CSRF protection.
func CSRFKey(env ENV) ([]byte, error) {
	if env.CSRFKey == "" {
		return nil, nil
	}
	key, err := base64.URLEncoding.DecodeString(env.CSRFKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSRF_KEY from Base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("CSRF_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// GenerateSessionKeys writes a fresh set of secrets in .env format to out and
// to the file at path.
func GenerateSessionKeys(out io.Writer, path string) error {
	keys := []struct {
		name string
		size int
	}{
		{"APP_AUTH_KEY", 64},
		{"APP_ENC_KEY", 32},
		{"CSRF_KEY", 32},
		{"JWT_SECRET", 32},
	}

	var lines string
	for _, k := range keys {
		raw := securecookie.GenerateRandomKey(k.size)
		if raw == nil {
			return fmt.Errorf("could not generate %s", k.name)
		}
		lines += fmt.Sprintf("%s=%s\n", k.name, base64.URLEncoding.EncodeToString(raw))
	}

	fmt.Fprintln(out, "Generated keys:")
	fmt.Fprint(out, lines)

	if err := os.WriteFile(path, []byte(lines), 0o600); err != nil {
		return fmt.Errorf("failed to write keys to file %s: %w", path, err)
	}

	fmt.Fprintf(out, "Keys have been written to '%s'. Copy them into your .env file.\n", path)
	fmt.Fprintln(out, "Regenerating keys invalidates existing sessions and tokens.")
	return nil
}
