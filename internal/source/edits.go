package source

import (
	"fmt"
	"sort"
	"strings"
)

// Edit replaces the bytes covered by Span with New. An empty New deletes the
// span. Edits are expressed against the file text current at creation time
// and must be applied before the file mutates again.
type Edit struct {
	Span Span
	New  string
}

// Remove builds a deletion edit for the given span.
func Remove(s Span) Edit {
	return Edit{Span: s}
}

// Replace builds a replacement edit for the given span.
func Replace(s Span, text string) Edit {
	return Edit{Span: s, New: text}
}

// applyEdits splices a set of non-overlapping edits into text. Edits are
// applied back to front so earlier spans stay valid.
func applyEdits(text []byte, edits []Edit) ([]byte, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Span.Start > sorted[j].Span.Start
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Span.End > sorted[i-1].Span.Start {
			return nil, fmt.Errorf("overlapping edits at byte %d", sorted[i].Span.Start)
		}
	}

	out := text
	for _, e := range sorted {
		if int(e.Span.End) > len(out) || e.Span.Start > e.Span.End {
			return nil, fmt.Errorf("edit span [%d,%d) out of range (len %d)", e.Span.Start, e.Span.End, len(out))
		}
		var b []byte
		b = append(b, out[:e.Span.Start]...)
		b = append(b, e.New...)
		b = append(b, out[e.Span.End:]...)
		out = b
	}
	return out, nil
}

// statementSpan widens a statement's span to cover whole lines: leading
// indentation when the statement starts its line, and the trailing
// whitespace plus one line break.
func statementSpan(text []byte, s Span) Span {
	start := int(s.Start)
	lineStart := start
	for lineStart > 0 && text[lineStart-1] != '\n' {
		lineStart--
	}
	if strings.TrimSpace(string(text[lineStart:start])) == "" {
		start = lineStart
	}

	end := int(s.End)
	for end < len(text) && (text[end] == ' ' || text[end] == '\t' || text[end] == ';') {
		end++
	}
	if end < len(text) && text[end] == '\r' {
		end++
	}
	if end < len(text) && text[end] == '\n' {
		end++
	}

	return Span{Start: uint(start), End: uint(end)}
}

// TrimEntry builds the edit that drops entry idx from a specifier or
// declarator list, consuming the separating comma. It must not be called for
// single-entry lists; removing the last entry is a whole-statement removal.
func TrimEntry(spans []Span, idx int) Edit {
	if idx == len(spans)-1 {
		// Last entry: remove from the end of the previous entry through this
		// one ("prev, last" -> "prev").
		return Remove(Span{Start: spans[idx-1].End, End: spans[idx].End})
	}
	// Otherwise remove through the start of the next entry ("this, next" ->
	// "next").
	return Remove(Span{Start: spans[idx].Start, End: spans[idx+1].Start})
}

// appendDecl appends declText to the end of a file as its own paragraph.
func appendDecl(text []byte, declText string) []byte {
	trimmed := strings.TrimRight(string(text), "\n")
	declText = strings.TrimRight(declText, "\n")
	if trimmed == "" {
		return []byte(declText + "\n")
	}
	return []byte(trimmed + "\n\n" + declText + "\n")
}
