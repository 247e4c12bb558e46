package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/notescribe/internal/doctree"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// sectionHeader matches the upper-case headings dictated notes use, such as
// "HISTORY OF PRESENT ILLNESS:" or "PLAN: follow up in 2 weeks".
var sectionHeader = regexp.MustCompile(`^([A-Z][A-Z /&()-]{2,60}):\s*(.*)$`)

// TextParser handles plain text notes. Blank lines separate paragraphs and
// upper-case "HEADING:" lines open sections.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	s := newSections()
	var para strings.Builder
	endPara := func() {
		s.paragraph(para.String())
		para.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			endPara()
			continue
		}
		if m := sectionHeader.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			endPara()
			s.heading(titleCase(m[1]), 1)
			para.WriteString(m[2])
			continue
		}
		if para.Len() > 0 {
			para.WriteString("\n")
		}
		para.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	endPara()

	return s.tree(baseTitle(filename)), nil
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}
