// Package parser normalizes and parses the lightweight Markdown the backend
// produces for meeting notes.
package parser

import (
	"bufio"
	"regexp"
	"strings"
)

var (
	boldHeadingRe = regexp.MustCompile(`(?m)^[ \t]*\*\*([^*\n]+?):?\*\*[ \t]*:?[ \t]*$`)
	headingLineRe = regexp.MustCompile(`(?m)^(#{2,6} .+)$`)
	bulletRe      = regexp.MustCompile(`(?m)^[ \t]*[-*•](?:[ \t]+|([^-*\s]))`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	trailingWSRe  = regexp.MustCompile(`(?m)[ \t]+$`)
	headingRe     = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	numberedRe    = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)
	boldSpanRe    = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
)

// NormalizeMarkdown rewrites common irregularities into a canonical form:
// lines that are only bold text become "## " headings, headings get a blank
// line around them, bullet markers become "- ", runs of blank lines collapse
// to one, and surrounding whitespace is trimmed.
func NormalizeMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	md = strings.ReplaceAll(md, "\r\n", "\n")
	md = boldHeadingRe.ReplaceAllString(md, "## $1")
	md = headingLineRe.ReplaceAllString(md, "\n$1\n")
	md = bulletRe.ReplaceAllString(md, "- $1")
	md = trailingWSRe.ReplaceAllString(md, "")
	md = blankRunRe.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md)
}

// BlockKind classifies a rendered line.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockBullet
	BlockNumbered
)

// Block is one renderable line of a note.
type Block struct {
	Kind  BlockKind
	Level int // heading level; 0 otherwise
	// Number is the list marker for numbered items, e.g. "3."
	Number string
	Text   string
}

// ParseBlocks splits normalized Markdown into blocks, skipping blank lines.
func ParseBlocks(md string) []Block {
	var blocks []Block

	scanner := bufio.NewScanner(strings.NewReader(md))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case headingRe.MatchString(line):
			m := headingRe.FindStringSubmatch(line)
			blocks = append(blocks, Block{Kind: BlockHeading, Level: len(m[1]), Text: strings.TrimSpace(m[2])})
		case strings.HasPrefix(line, "- "):
			blocks = append(blocks, Block{Kind: BlockBullet, Text: strings.TrimSpace(line[2:])})
		case numberedRe.MatchString(line):
			m := numberedRe.FindStringSubmatch(line)
			blocks = append(blocks, Block{Kind: BlockNumbered, Number: m[1] + ".", Text: strings.TrimSpace(m[2])})
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: line})
		}
	}
	return blocks
}

// Span is a run of inline text.
type Span struct {
	Text string
	Bold bool
}

// Spans splits text on **bold** and __bold__ markers.
func Spans(text string) []Span {
	var spans []Span
	last := 0
	for _, loc := range boldSpanRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			spans = append(spans, Span{Text: text[last:loc[0]]})
		}
		start, end := loc[2], loc[3]
		if start < 0 {
			start, end = loc[4], loc[5]
		}
		spans = append(spans, Span{Text: text[start:end], Bold: true})
		last = loc[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:]})
	}
	return spans
}

// PlainText strips inline emphasis markers.
func PlainText(text string) string {
	var b strings.Builder
	for _, s := range Spans(text) {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Section represents a heading and its content.
type Section struct {
	Level   int    // 1-6 for h1-h6
	Heading string // The heading text
	Path    string // Full path like "## Decisions > ### Budget"
	Content string // Content under this heading
	Start   int    // Line number where section starts
	End     int    // Line number where section ends
}

// ParseSections extracts heading sections from Markdown content.
func ParseSections(content string) []Section {
	var sections []Section

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	var currentPath []string
	var currentLevels []int

	var currentSection *Section
	var contentBuilder strings.Builder

	flushSection := func(endLine int) {
		if currentSection != nil {
			currentSection.Content = strings.TrimSpace(contentBuilder.String())
			currentSection.End = endLine
			sections = append(sections, *currentSection)
			contentBuilder.Reset()
		}
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if match := headingRe.FindStringSubmatch(strings.TrimSpace(line)); len(match) > 0 {
			flushSection(lineNum - 1)

			level := len(match[1])
			heading := strings.TrimSpace(match[2])

			for len(currentLevels) > 0 && currentLevels[len(currentLevels)-1] >= level {
				currentPath = currentPath[:len(currentPath)-1]
				currentLevels = currentLevels[:len(currentLevels)-1]
			}
			currentPath = append(currentPath, match[1]+" "+heading)
			currentLevels = append(currentLevels, level)

			currentSection = &Section{
				Level:   level,
				Heading: heading,
				Path:    strings.Join(currentPath, " > "),
				Start:   lineNum,
			}
		} else if currentSection != nil {
			contentBuilder.WriteString(line)
			contentBuilder.WriteString("\n")
		}
	}

	flushSection(lineNum)

	return sections
}
