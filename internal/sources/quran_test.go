package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// newTestQuranClient points a client at the test server with no delays.
func newTestQuranClient(baseURL string) *QuranClient {
	c := NewQuranClient(baseURL)
	c.RetryDelay = 0
	c.PageDelay = 0
	return c
}

// quranPayload builds a dual-edition response with the given ayah texts.
func quranPayload(arabic, english []string) string {
	type ayah struct {
		NumberInSurah int    `json:"numberInSurah"`
		Text          string `json:"text"`
	}
	type edition struct {
		Ayahs []ayah `json:"ayahs"`
	}
	build := func(texts []string) edition {
		e := edition{}
		for i, text := range texts {
			e.Ayahs = append(e.Ayahs, ayah{NumberInSurah: i + 1, Text: text})
		}
		return e
	}
	payload := struct {
		Data []edition `json:"data"`
	}{Data: []edition{build(arabic), build(english)}}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestQuranClient_FetchSurah_PairsAyahsByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quranPayload(
			[]string{"آية ١", "آية ٢", "آية ٣"},
			[]string{"verse one", "verse two", "verse three"},
		))
	}))
	defer server.Close()

	client := newTestQuranClient(server.URL)
	records, err := client.fetchSurah(context.Background(), 2)
	if err != nil {
		t.Fatalf("fetchSurah() unexpected error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("fetchSurah() returned %d records, want 3", len(records))
	}
	for i, record := range records {
		if record.Surah != 2 {
			t.Errorf("record %d surah = %d, want 2", i, record.Surah)
		}
		if record.Ayah != i+1 {
			t.Errorf("record %d ayah = %d, want %d", i, record.Ayah, i+1)
		}
	}
	if records[1].Arabic != "آية ٢" || records[1].English != "verse two" {
		t.Errorf("record 1 pairing wrong: arabic=%q english=%q", records[1].Arabic, records[1].English)
	}
}

func TestQuranClient_FetchSurah_StopsPairingAtShorterEdition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quranPayload(
			[]string{"a", "b", "c"},
			[]string{"one", "two"},
		))
	}))
	defer server.Close()

	client := newTestQuranClient(server.URL)
	records, err := client.fetchSurah(context.Background(), 1)
	if err != nil {
		t.Fatalf("fetchSurah() unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("fetchSurah() returned %d records, want 2 (shorter edition length)", len(records))
	}
	if records[1].Arabic != "b" || records[1].English != "two" {
		t.Errorf("record 1 pairing wrong: arabic=%q english=%q", records[1].Arabic, records[1].English)
	}
}

func TestQuranClient_FetchSurah_SingleEditionIsUnrecognized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"ayahs": [{"numberInSurah": 1, "text": "a"}]}]}`)
	}))
	defer server.Close()

	client := newTestQuranClient(server.URL)
	_, err := client.fetchSurah(context.Background(), 1)
	if !errors.Is(err, ErrUnrecognizedShape) {
		t.Fatalf("fetchSurah() error = %v, want ErrUnrecognizedShape", err)
	}
}

func TestQuranClient_FetchSurah_RetriesTransientFailure(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, quranPayload([]string{"a"}, []string{"one"}))
	}))
	defer server.Close()

	client := newTestQuranClient(server.URL)
	var records []VerseRecord
	err := withRetry(context.Background(), client.MaxAttempts, client.RetryDelay, func() error {
		var fetchErr error
		records, fetchErr = client.fetchSurah(context.Background(), 1)
		return fetchErr
	})
	if err != nil {
		t.Fatalf("retry loop unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}
}

func TestQuranClient_FetchAll_SkipsFailedSurah(t *testing.T) {
	var mu sync.Mutex
	requests := make(map[string]int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests[r.URL.Path]++
		mu.Unlock()

		// Surah 5 does not exist on this server; everything else has one ayah.
		if r.URL.Path == "/v1/surah/5/editions/quran-uthmani,en.asad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, quranPayload([]string{"a"}, []string{"one"}))
	}))
	defer server.Close()

	client := newTestQuranClient(server.URL)
	records, err := client.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() unexpected error: %v", err)
	}

	if len(records) != TotalSurahs-1 {
		t.Errorf("FetchAll() returned %d records, want %d", len(records), TotalSurahs-1)
	}

	// Terminal 404 must not be retried.
	if n := requests["/v1/surah/5/editions/quran-uthmani,en.asad"]; n != 1 {
		t.Errorf("surah 5 requested %d times, want 1", n)
	}

	// The failed surah's records are absent, the rest are present.
	for _, record := range records {
		if record.Surah == 5 {
			t.Errorf("FetchAll() included record for skipped surah 5")
		}
	}
}
