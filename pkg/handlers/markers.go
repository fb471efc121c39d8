package handlers

import "strings"

// Markers are the delimiters of a package's block in a shared text file
type Markers struct {
	Start string
	End   string
}

// BlockMarkers returns the "###> pkg ###" / "###< pkg ###" pair used in
// dotenv and ignore files
func BlockMarkers(pkg string) Markers {
	return Markers{Start: "###> " + pkg + " ###", End: "###< " + pkg + " ###"}
}

// Block wraps body (newline-terminated lines) in the markers
func (m Markers) Block(body string) string {
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return m.Start + "\n" + body + m.End + "\n"
}

// find returns the byte range of the block, including the newline that
// follows the end marker
func (m Markers) find(content string) (int, int, bool) {
	start := strings.Index(content, m.Start)
	if start < 0 {
		return 0, 0, false
	}
	rel := strings.Index(content[start:], m.End)
	if rel < 0 {
		return 0, 0, false
	}
	end := start + rel + len(m.End)
	if end < len(content) && content[end] == '\n' {
		end++
	}
	return start, end, true
}

// Contains reports whether content holds the block
func (m Markers) Contains(content string) bool {
	_, _, ok := m.find(content)
	return ok
}

// Upsert replaces the block in place, or appends it after a blank line
func (m Markers) Upsert(content, body string) string {
	block := m.Block(body)
	if start, end, ok := m.find(content); ok {
		return content[:start] + block + content[end:]
	}
	if content == "" {
		return block
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + block
}

// Remove deletes the block and the blank line Upsert put before it
func (m Markers) Remove(content string) (string, bool) {
	start, end, ok := m.find(content)
	if !ok {
		return content, false
	}
	before := content[:start]
	if strings.HasSuffix(before, "\n\n") {
		before = before[:len(before)-1]
	}
	return before + content[end:], true
}
