// Package diff renders unified diffs between theme versions so history
// inspection can show what a save actually changed.
package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/forgesites/themekit/internal/theme"
)

const (
	maxDiffLines    = 10000
	truncateMessage = "... (diff truncated, exceeds 10,000 lines) ..."
)

// Themes renders a unified diff between two theme versions. Timestamps and
// the version counter are excluded so the diff shows only token changes.
// Returns an empty string when the versions are identical.
func Themes(before, after theme.Theme) (string, error) {
	beforeDoc, err := marshalForDiff(before)
	if err != nil {
		return "", err
	}
	afterDoc, err := marshalForDiff(after)
	if err != nil {
		return "", err
	}
	beforeLabel := before.ID + "@" + versionLabel(before)
	afterLabel := after.ID + "@" + versionLabel(after)
	return Unified(beforeDoc, afterDoc, beforeLabel, afterLabel), nil
}

// Unified generates unified-diff output comparing two documents. Returns an
// empty string if the content is identical; output beyond 10,000 lines is
// truncated with a marker.
func Unified(before, after []byte, beforeLabel, afterLabel string) string {
	if bytes.Equal(before, after) {
		return ""
	}

	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s\n", beforeLabel)
	fmt.Fprintf(&buf, "+++ %s\n", afterLabel)

	lineCount := 0
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			if lineCount >= maxDiffLines {
				buf.WriteString(truncateMessage + "\n")
				return buf.String()
			}
			buf.WriteString(prefix)
			buf.WriteString(line)
			buf.WriteString("\n")
			lineCount++
		}
	}
	return buf.String()
}

func marshalForDiff(t theme.Theme) ([]byte, error) {
	normalized := theme.Clone(t)
	normalized.CreatedAt = time.Time{}
	normalized.UpdatedAt = time.Time{}
	delete(normalized.Metadata, "version")
	return json.MarshalIndent(normalized, "", "  ")
}

func versionLabel(t theme.Theme) string {
	if v, ok := t.Metadata["version"]; ok && v != "" {
		return "v" + v
	}
	return "unversioned"
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" && strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}
