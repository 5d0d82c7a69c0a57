package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/supabase-community/postgrest-go"

	"github.com/Juicern/sttrelay/internal/config"
)

const supabaseRestPath = "/rest/v1"

// NewSupabaseClient returns a PostgREST client for the project's REST endpoint,
// authenticated with the project key.
func NewSupabaseClient(cfg config.SupabaseConfig) (*postgrest.Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("supabase URL and key are required")
	}

	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid supabase URL %q", cfg.URL)
	}

	restURL := strings.TrimRight(cfg.URL, "/") + supabaseRestPath
	client := postgrest.NewClient(restURL, "public", map[string]string{
		"apikey":        cfg.Key,
		"Authorization": "Bearer " + cfg.Key,
	})
	if client.ClientError != nil {
		return nil, client.ClientError
	}
	return client, nil
}
