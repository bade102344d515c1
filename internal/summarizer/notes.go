package summarizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Notes bundles the export artifact paths for one meeting.
type Notes struct {
	MarkdownPath   string
	DocxPath       string
	TranscriptPath string
}

// ExportNotes writes the summary as markdown and docx, and the raw
// transcript as docx, into destDir. The docx renders are best-effort:
// the markdown file is the canonical artifact.
func ExportNotes(title, summary, transcript, destDir string) (Notes, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return Notes{}, fmt.Errorf("create notes dir: %w", err)
	}

	base := sanitizeName(title)
	md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
		title,
		time.Now().Format("2006-01-02 15:04"),
		strings.TrimSpace(summary),
	)

	notes := Notes{
		MarkdownPath:   filepath.Join(destDir, base+".md"),
		DocxPath:       filepath.Join(destDir, base+".docx"),
		TranscriptPath: filepath.Join(destDir, base+"_transcript.docx"),
	}

	if err := os.WriteFile(notes.MarkdownPath, []byte(md), 0644); err != nil {
		return Notes{}, fmt.Errorf("write notes markdown: %w", err)
	}

	if err := markdownToDocx(title, summary, notes.DocxPath); err != nil {
		notes.DocxPath = ""
	}
	if transcript != "" {
		if err := transcriptToDocx(title+" Transcript", transcript, notes.TranscriptPath); err != nil {
			notes.TranscriptPath = ""
		}
	} else {
		notes.TranscriptPath = ""
	}

	return notes, nil
}

func sanitizeName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "meeting"
	}
	return b.String()
}
