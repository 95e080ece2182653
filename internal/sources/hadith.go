package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"islamqa-ai/internal/contextutil"
)

const (
	// hadithPageSize is the pagination value documented by the Hadith API.
	hadithPageSize = 25
	// hadithGrades restricts fetching to authenticated hadiths.
	hadithGrades = "sahih,hasan"
)

// HadithClient fetches paginated hadith records from a hadithapi.com
// compatible API. Requests are filtered to authenticated grades only.
type HadithClient struct {
	BaseURL     string
	APIKey      string
	MaxAttempts int
	RetryDelay  time.Duration
	PageDelay   time.Duration
	client      *http.Client
}

// NewHadithClient creates a new Hadith API client with default retry settings.
func NewHadithClient(baseURL, apiKey string) *HadithClient {
	return &HadithClient{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		MaxAttempts: defaultMaxAttempts,
		RetryDelay:  defaultRetryDelay,
		PageDelay:   defaultPageDelay,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// flexString accepts JSON strings and numbers. The Hadith API is not
// consistent about which one it returns for numeric fields.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// hadithItem is a single hadith in either response layout.
type hadithItem struct {
	HadithNumber    flexString `json:"hadithNumber"`
	Status          string     `json:"status"`
	Volume          flexString `json:"volume"`
	HadithArabic    string     `json:"hadithArabic"`
	HadithEnglish   string     `json:"hadithEnglish"`
	EnglishNarrator string     `json:"englishNarrator"`
	HeadingEnglish  string     `json:"headingEnglish"`
	HeadingArabic   string     `json:"headingArabic"`
	Book            struct {
		BookName   string `json:"bookName"`
		WriterName string `json:"writerName"`
	} `json:"book"`
	Chapter struct {
		ChapterNumber  flexString `json:"chapterNumber"`
		ChapterEnglish string     `json:"chapterEnglish"`
		ChapterArabic  string     `json:"chapterArabic"`
	} `json:"chapter"`
}

// hadithPage is one parsed page of results.
type hadithPage struct {
	items       []hadithItem
	currentPage int
}

// parseHadithPage parses the two known response layouts as an explicit tagged
// union: a flat list ({"hadiths": [...]}) or a paginator object
// ({"hadiths": {"data": [...], "current_page": n}}). Anything else is an
// unrecognized shape and aborts the unit.
func parseHadithPage(body []byte) (*hadithPage, error) {
	var envelope struct {
		Hadiths json.RawMessage `json:"hadiths"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}

	raw := bytes.TrimSpace(envelope.Hadiths)
	if len(raw) == 0 || string(raw) == "null" {
		return &hadithPage{}, nil
	}

	switch raw[0] {
	case '[':
		var items []hadithItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: flat list: %v", ErrUnrecognizedShape, err)
		}
		return &hadithPage{items: items}, nil
	case '{':
		var paginated struct {
			Data        []hadithItem `json:"data"`
			CurrentPage int          `json:"current_page"`
		}
		if err := json.Unmarshal(raw, &paginated); err != nil {
			return nil, fmt.Errorf("%w: paginator: %v", ErrUnrecognizedShape, err)
		}
		return &hadithPage{items: paginated.Data, currentPage: paginated.CurrentPage}, nil
	default:
		return nil, fmt.Errorf("%w: hadiths is neither list nor object", ErrUnrecognizedShape)
	}
}

// FetchCollection fetches every page of one named collection until a page
// yields zero records. Fetching is best-effort: exhausted retries or a
// terminal status return whatever was accumulated so far. FetchCollection
// only fails outright on context cancellation.
func (c *HadithClient) FetchCollection(ctx context.Context, collection string) ([]HadithRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var records []HadithRecord
	for page := 1; ; page++ {
		var parsed *hadithPage
		err := withRetry(ctx, c.MaxAttempts, c.RetryDelay, func() error {
			var fetchErr error
			parsed, fetchErr = c.fetchPage(ctx, collection, page)
			return fetchErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			logger.WarnContext(ctx, "abandoning collection", "collection", collection, "page", page, "error", err)
			return records, nil
		}

		if len(parsed.items) == 0 {
			logger.InfoContext(ctx, "collection exhausted", "collection", collection, "pages", page-1)
			return records, nil
		}

		for _, item := range parsed.items {
			records = append(records, recordFromItem(collection, item))
		}
		logger.InfoContext(ctx, "fetched hadith page", "collection", collection, "page", page, "hadiths", len(parsed.items))

		if err := sleep(ctx, c.PageDelay); err != nil {
			return records, err
		}
	}
}

// fetchPage requests one page of the collection.
func (c *HadithClient) fetchPage(ctx context.Context, collection string, page int) (*hadithPage, error) {
	params := url.Values{}
	params.Set("apiKey", c.APIKey)
	params.Set("book", collection)
	params.Set("status", hadithGrades)
	params.Set("paginate", strconv.Itoa(hadithPageSize))
	params.Set("page", strconv.Itoa(page))

	reqURL := fmt.Sprintf("%s/public/api/hadiths?%s", c.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

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

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parseHadithPage(buf.Bytes())
}

// recordFromItem maps one API item onto a HadithRecord, falling back to the
// collection slug when the payload has no book name.
func recordFromItem(collection string, item hadithItem) HadithRecord {
	bookName := item.Book.BookName
	if bookName == "" {
		bookName = collection
	}
	return HadithRecord{
		Collection:     collection,
		BookName:       bookName,
		WriterName:     item.Book.WriterName,
		ChapterNumber:  string(item.Chapter.ChapterNumber),
		ChapterEnglish: item.Chapter.ChapterEnglish,
		ChapterArabic:  item.Chapter.ChapterArabic,
		HeadingEnglish: item.HeadingEnglish,
		HeadingArabic:  item.HeadingArabic,
		Narrator:       item.EnglishNarrator,
		HadithNumber:   string(item.HadithNumber),
		Volume:         string(item.Volume),
		Grade:          item.Status,
		Arabic:         item.HadithArabic,
		English:        item.HadithEnglish,
	}
}
