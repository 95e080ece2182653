package sources

// VerseRecord is a single Quranic ayah paired with its English translation.
// Immutable once fetched.
type VerseRecord struct {
	Surah   int
	Ayah    int
	Arabic  string
	English string
}

// HadithRecord is a single hadith with its book, chapter and grading metadata.
// Immutable once fetched.
type HadithRecord struct {
	Collection     string
	BookName       string
	WriterName     string
	ChapterNumber  string
	ChapterEnglish string
	ChapterArabic  string
	HeadingEnglish string
	HeadingArabic  string
	Narrator       string
	HadithNumber   string
	Volume         string
	Grade          string
	Arabic         string
	English        string
}
