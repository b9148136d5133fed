package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/hiring-coach/internal/fetch"
	"github.com/jonathan/hiring-coach/internal/logger"
)

var (
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = errors.New("content extraction failed")
	// ErrEmptyPosting is returned when a posting yields no text
	ErrEmptyPosting = errors.New("job posting contains no text")
)

// FetchJobPosting fetches a job posting URL and returns its cleaned text.
// Platform-specific selectors are applied when the job board is recognized.
// If useBrowser is true and the static page yields too little text, the page
// is rendered in a headless browser and extracted again.
func FetchJobPosting(ctx context.Context, urlStr string, useBrowser bool) (string, *Metadata, error) {
	log := logger.Ctx(ctx).With().Str("url", urlStr).Logger()

	platform := fetch.DetectPlatform(urlStr)
	log.Debug().Str("platform", string(platform)).Msg("fetching job posting")

	result, err := fetch.URL(ctx, urlStr, nil)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	textContent, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	rendered := false
	if useBrowser && fetch.ShouldUseBrowser(textContent) {
		log.Info().Int("chars", len(textContent)).Int("min_chars", fetch.MinContentLength).
			Msg("content too short, falling back to browser rendering")

		browserHTML, browserErr := fetch.BrowserSimple(ctx, urlStr)
		if browserErr != nil {
			// Keep the HTTP content.
			log.Warn().Err(browserErr).Msg("browser rendering failed")
		} else if browserText, err := fetch.ExtractMainText(browserHTML, contentSelectors, noiseSelectors...); err != nil {
			log.Warn().Err(err).Msg("browser content extraction failed")
		} else {
			textContent = browserText
			rendered = true
		}
	}

	cleanedText := CleanText(textContent)
	if cleanedText == "" {
		return "", nil, ErrEmptyPosting
	}
	log.Debug().Int("chars", len(cleanedText)).Bool("rendered", rendered).Msg("job posting extracted")

	metadata := NewMetadata(cleanedText, urlStr)
	metadata.Platform = string(platform)
	metadata.Rendered = rendered
	return cleanedText, metadata, nil
}
