// Package corpus converts fetched source records into the fixed plain-text
// document layout the index is built from. The layout must stay stable:
// retrieval quality depends on fields appearing in a consistent, labeled
// order so the model can parse citations back out of retrieved chunks.
package corpus

import (
	"fmt"
	"strings"

	"islamqa-ai/internal/sources"
)

// Source identifies where a document came from.
type Source string

const (
	SourceQuran  Source = "quran"
	SourceHadith Source = "hadith"
)

// Document is a self-describing plain-text block, one per source record.
type Document struct {
	Source    Source
	Reference string // e.g. "Quran 2:153" or "Sahih Bukhari 6114"
	Text      string
}

// FromVerse formats one Quranic verse. Pure, no I/O.
func FromVerse(v sources.VerseRecord) Document {
	ref := fmt.Sprintf("Quran %d:%d", v.Surah, v.Ayah)
	text := fmt.Sprintf("%s\nArabic: %s\nEnglish: %s", ref, v.Arabic, v.English)
	return Document{
		Source:    SourceQuran,
		Reference: ref,
		Text:      text,
	}
}

// FromHadith formats one hadith. Pure, no I/O. Empty optional fields keep
// their labels so the layout never shifts.
func FromHadith(h sources.HadithRecord) Document {
	ref := strings.TrimSpace(fmt.Sprintf("%s %s", h.BookName, h.HadithNumber))

	var b strings.Builder
	fmt.Fprintf(&b, "Hadith: %s\n", h.BookName)
	fmt.Fprintf(&b, "Writer: %s\n", orNA(h.WriterName))
	fmt.Fprintf(&b, "Grade: %s\n", orNA(h.Grade))
	fmt.Fprintf(&b, "Volume: %s\n", orNA(h.Volume))
	fmt.Fprintf(&b, "Number: %s\n", orNA(h.HadithNumber))
	fmt.Fprintf(&b, "Chapter: %s - %s\n", orNA(h.ChapterNumber), orNA(h.ChapterEnglish))
	fmt.Fprintf(&b, "Chapter (Arabic): %s\n", orNA(h.ChapterArabic))
	fmt.Fprintf(&b, "Heading: %s\n", h.HeadingEnglish)
	fmt.Fprintf(&b, "Heading (Arabic): %s\n", h.HeadingArabic)
	fmt.Fprintf(&b, "Narrator: %s\n", h.Narrator)
	fmt.Fprintf(&b, "Arabic: %s\n", h.Arabic)
	fmt.Fprintf(&b, "English: %s\n", h.English)
	fmt.Fprintf(&b, "Reference: %s Volume %s, Hadith %s", h.BookName, orNA(h.Volume), orNA(h.HadithNumber))

	return Document{
		Source:    SourceHadith,
		Reference: ref,
		Text:      b.String(),
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
