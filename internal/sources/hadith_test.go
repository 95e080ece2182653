package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func newTestHadithClient(baseURL string) *HadithClient {
	c := NewHadithClient(baseURL, "test-key")
	c.RetryDelay = 0
	c.PageDelay = 0
	return c
}

func TestParseHadithPage(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantItems int
		wantErr   error
	}{
		{
			name:      "flat list",
			body:      `{"hadiths": [{"hadithNumber": "1", "status": "Sahih"}, {"hadithNumber": "2", "status": "Hasan"}]}`,
			wantItems: 2,
		},
		{
			name:      "paginator object",
			body:      `{"hadiths": {"data": [{"hadithNumber": "1", "status": "Sahih"}], "current_page": 3}}`,
			wantItems: 1,
		},
		{
			name:      "paginator with empty data",
			body:      `{"hadiths": {"data": [], "current_page": 9}}`,
			wantItems: 0,
		},
		{
			name:      "null hadiths",
			body:      `{"hadiths": null}`,
			wantItems: 0,
		},
		{
			name:    "scalar hadiths",
			body:    `{"hadiths": 42}`,
			wantErr: ErrUnrecognizedShape,
		},
		{
			name:    "not json",
			body:    `<html>rate limited</html>`,
			wantErr: ErrUnrecognizedShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := parseHadithPage([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseHadithPage() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHadithPage() unexpected error: %v", err)
			}
			if len(page.items) != tt.wantItems {
				t.Errorf("parseHadithPage() items = %d, want %d", len(page.items), tt.wantItems)
			}
		})
	}
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		name string
		data string
		want flexString
	}{
		{"string", `"7"`, "7"},
		{"integer", `7`, "7"},
		{"float", `2.5`, "2.5"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f flexString
			if err := f.UnmarshalJSON([]byte(tt.data)); err != nil {
				t.Fatalf("UnmarshalJSON(%s) unexpected error: %v", tt.data, err)
			}
			if f != tt.want {
				t.Errorf("UnmarshalJSON(%s) = %q, want %q", tt.data, f, tt.want)
			}
		})
	}
}

func TestHadithClient_FetchCollection_StopsOnEmptyPage(t *testing.T) {
	var mu sync.Mutex
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		pages = append(pages, q.Get("page"))
		mu.Unlock()

		if q.Get("apiKey") != "test-key" {
			t.Errorf("apiKey = %q, want test-key", q.Get("apiKey"))
		}
		if q.Get("status") != "sahih,hasan" {
			t.Errorf("status = %q, want sahih,hasan", q.Get("status"))
		}
		if q.Get("paginate") != "25" {
			t.Errorf("paginate = %q, want 25", q.Get("paginate"))
		}

		switch q.Get("page") {
		case "1", "2":
			fmt.Fprintf(w, `{"hadiths": {"data": [{"hadithNumber": "%s", "status": "Sahih", "hadithEnglish": "text"}], "current_page": %s}}`,
				q.Get("page"), q.Get("page"))
		default:
			fmt.Fprint(w, `{"hadiths": {"data": [], "current_page": 3}}`)
		}
	}))
	defer server.Close()

	client := newTestHadithClient(server.URL)
	records, err := client.FetchCollection(context.Background(), "sahih-bukhari")
	if err != nil {
		t.Fatalf("FetchCollection() unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("FetchCollection() returned %d records, want 2", len(records))
	}
	if len(pages) != 3 {
		t.Errorf("requested %d pages, want 3 (two full plus the empty one)", len(pages))
	}
	if records[0].HadithNumber != "1" || records[1].HadithNumber != "2" {
		t.Errorf("records out of order: %q then %q", records[0].HadithNumber, records[1].HadithNumber)
	}
	if records[0].Collection != "sahih-bukhari" {
		t.Errorf("collection = %q, want sahih-bukhari", records[0].Collection)
	}
}

func TestHadithClient_FetchCollection_TerminalStatusKeepsPartial(t *testing.T) {
	var mu sync.Mutex
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()

		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"hadiths": [{"hadithNumber": "1", "status": "Sahih"}]}`)
	}))
	defer server.Close()

	client := newTestHadithClient(server.URL)
	records, err := client.FetchCollection(context.Background(), "sahih-muslim")
	if err != nil {
		t.Fatalf("FetchCollection() unexpected error: %v", err)
	}

	if len(records) != 1 {
		t.Errorf("FetchCollection() returned %d records, want 1 (page before the 401)", len(records))
	}
	// Page 1 once, page 2 once: a 401 is never retried.
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
}

func TestHadithClient_FetchCollection_UnrecognizedShapeKeepsPartial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `{"hadiths": [{"hadithNumber": "1", "status": "Hasan"}]}`)
			return
		}
		fmt.Fprint(w, `{"hadiths": "unexpected"}`)
	}))
	defer server.Close()

	client := newTestHadithClient(server.URL)
	records, err := client.FetchCollection(context.Background(), "sahih-bukhari")
	if err != nil {
		t.Fatalf("FetchCollection() unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("FetchCollection() returned %d records, want 1", len(records))
	}
}

func TestRecordFromItem_BookNameFallback(t *testing.T) {
	record := recordFromItem("sahih-bukhari", hadithItem{
		HadithNumber:  "12",
		Status:        "Sahih",
		HadithEnglish: "english text",
	})

	if record.BookName != "sahih-bukhari" {
		t.Errorf("BookName = %q, want collection slug fallback", record.BookName)
	}
	if record.Grade != "Sahih" {
		t.Errorf("Grade = %q, want Sahih", record.Grade)
	}
}
