package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"islamqa-ai/internal/contextutil"
)

// TotalSurahs is the fixed number of surahs in the Quran.
const TotalSurahs = 114

// quranEditions selects the original Arabic text plus one English translation
// in a single request. The API returns one edition payload per slug, in order.
const quranEditions = "quran-uthmani,en.asad"

// QuranClient fetches surah payloads from an alquran.cloud compatible API.
type QuranClient struct {
	BaseURL     string
	MaxAttempts int
	RetryDelay  time.Duration
	PageDelay   time.Duration
	client      *http.Client
}

// NewQuranClient creates a new Quran API client with default retry settings.
func NewQuranClient(baseURL string) *QuranClient {
	return &QuranClient{
		BaseURL:     baseURL,
		MaxAttempts: defaultMaxAttempts,
		RetryDelay:  defaultRetryDelay,
		PageDelay:   defaultPageDelay,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// surahResponse is the dual-edition payload shape.
type surahResponse struct {
	Data []struct {
		Ayahs []struct {
			NumberInSurah int    `json:"numberInSurah"`
			Text          string `json:"text"`
		} `json:"ayahs"`
	} `json:"data"`
}

// FetchAll fetches every surah and returns one VerseRecord per ayah.
// Fetching is best-effort: a surah whose retries are exhausted is skipped and
// the records accumulated so far are kept. FetchAll only fails outright on
// context cancellation.
func (c *QuranClient) FetchAll(ctx context.Context) ([]VerseRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var records []VerseRecord
	for surah := 1; surah <= TotalSurahs; surah++ {
		var verses []VerseRecord
		err := withRetry(ctx, c.MaxAttempts, c.RetryDelay, func() error {
			var fetchErr error
			verses, fetchErr = c.fetchSurah(ctx, surah)
			return fetchErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			logger.WarnContext(ctx, "skipping surah", "surah", surah, "error", err)
			continue
		}

		records = append(records, verses...)
		logger.InfoContext(ctx, "fetched surah", "surah", surah, "ayahs", len(verses))

		if surah < TotalSurahs {
			if err := sleep(ctx, c.PageDelay); err != nil {
				return records, err
			}
		}
	}

	logger.InfoContext(ctx, "quran fetch completed", "verses", len(records))
	return records, nil
}

// fetchSurah requests one surah in both editions and pairs ayahs by index.
func (c *QuranClient) fetchSurah(ctx context.Context, surah int) ([]VerseRecord, error) {
	url := fmt.Sprintf("%s/v1/surah/%d/editions/%s", c.BaseURL, surah, quranEditions)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	var payload surahResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(payload.Data) < 2 {
		return nil, fmt.Errorf("surah %d: %w: expected 2 editions, got %d", surah, ErrUnrecognizedShape, len(payload.Data))
	}

	arabic := payload.Data[0].Ayahs
	english := payload.Data[1].Ayahs

	// Pair ayah i of the Arabic edition with ayah i of the translation.
	// Misaligned edition lengths must not silently pair past the shorter one.
	n := len(arabic)
	if len(english) < n {
		n = len(english)
	}
	if n != len(arabic) || n != len(english) {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "edition length mismatch, truncating pairing",
			"surah", surah, "arabic", len(arabic), "english", len(english))
	}

	records := make([]VerseRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, VerseRecord{
			Surah:   surah,
			Ayah:    i + 1,
			Arabic:  arabic[i].Text,
			English: english[i].Text,
		})
	}
	return records, nil
}
