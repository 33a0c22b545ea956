package daemon

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ProbeOllama checks whether a local Ollama server answers on its tags
// endpoint. The framework uses Ollama for local thinking when present; the
// probe is informational and never fails an install.
func ProbeOllama(ctx context.Context, tagsURL string, timeout time.Duration) bool {
	if tagsURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tagsURL, nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", tagsURL).Msg("Ollama not detected")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
