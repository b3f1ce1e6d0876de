// package formatter renders conversion reports in various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/playlistor/playlistor/internal/models"
)

// MissedToCSV renders the missed tracks of a conversion as CSV with columns: ID, Name, Artists
func MissedToCSV(result *models.ConversionResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Artists"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range result.MissedTracks {
		record := []string{
			track.ID,
			track.Name,
			track.ArtistLine(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown renders a conversion summary as Markdown with optional cover image
func ReportToMarkdown(playlist models.SourcePlaylist, result *models.ConversionResult, imageFilename string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if playlist.Creator != "" {
		buf.WriteString(fmt.Sprintf("**Curator**: %s\n", playlist.Creator))
	}
	buf.WriteString(fmt.Sprintf("**Converted**: %s → %s\n", result.Source, result.Destination))
	buf.WriteString(fmt.Sprintf("**Matched**: %d tracks\n", result.MatchedCount()))
	buf.WriteString(fmt.Sprintf("**Missed**: %d tracks\n\n", len(result.MissedTracks)))

	if result.PlaylistURL != "" {
		buf.WriteString(fmt.Sprintf("[Open destination playlist](%s)\n\n", result.PlaylistURL))
	}

	if len(result.MissedTracks) > 0 {
		buf.WriteString("## Missed tracks\n\n")
		for i, track := range result.MissedTracks {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.ArtistLine(), track.Name))
		}
	}

	return buf.Bytes()
}

// ReportToText renders a conversion summary as plain text
func ReportToText(playlist models.SourcePlaylist, result *models.ConversionResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Title))
	buf.WriteString(fmt.Sprintf("Conversion: %s -> %s\n", result.Source, result.Destination))
	buf.WriteString(fmt.Sprintf("Matched: %d\n", result.MatchedCount()))
	buf.WriteString(fmt.Sprintf("Missed: %d\n", len(result.MissedTracks)))
	if result.PlaylistURL != "" {
		buf.WriteString(fmt.Sprintf("Destination: %s\n", result.PlaylistURL))
	}

	if len(result.MissedTracks) > 0 {
		buf.WriteString("\nMissed tracks:\n")
		for i, track := range result.MissedTracks {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.ArtistLine(), track.Name))
		}
	}

	return buf.Bytes()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownReportResult contains information about files created by WriteMarkdownReport
type MarkdownReportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownReport writes a conversion report to a dedicated directory.
//
// Directory name defaults to the playlist title.
// If the playlist has artwork, attempts to download it as the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownReport(playlist models.SourcePlaylist, result *models.ConversionResult, outputDir string) (*MarkdownReportResult, error) {
	if outputDir == "" {
		outputDir = playlist.Title
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	report := &MarkdownReportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if playlist.ArtworkURL != "" {
		imageData, err := DownloadImage(playlist.ArtworkURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				report.CoverImage = coverImagePath
				report.Files = append(report.Files, coverImagePath)
			}
		}
	}

	mdData := ReportToMarkdown(playlist, result, coverImageFilename)

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	report.Files = append(report.Files, mdFile)

	return report, nil
}

// WriteMissedCSV writes the missed tracks of a conversion to a CSV file.
//
// Defaults to missed_tracks.csv as the filename.
func WriteMissedCSV(result *models.ConversionResult, filepath string) (string, error) {
	if filepath == "" {
		filepath = "missed_tracks.csv"
	}

	csvData, err := MissedToCSV(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}
