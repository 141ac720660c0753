package faq

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	markdownCategory = regexp.MustCompile(`^##\s+(\d+)\.\s+(.+)$`)
	markdownQuestion = regexp.MustCompile(`^\*\*(\d+\.\d+)\s+(.+?)\*\*`)
)

// ParseMarkdown reads an FAQ.md document made of "## N. Category" headers followed by
// "**N.M Question**" lines and free-form answers. Questions before the first header are
// reported as warnings and dropped.
func ParseMarkdown(r io.Reader) ([]DatasetEntry, []string, error) {
	var (
		entries    []DatasetEntry
		warnings   []string
		category   string
		categoryID = defaultCategoryID
		current    *DatasetEntry
		answer     []string
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Answer = strings.TrimSpace(strings.Join(answer, "\n"))
		entries = append(entries, *current)
		current, answer = nil, nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if m := markdownCategory.FindStringSubmatch(line); m != nil {
			flush()
			id, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, warnings, fmt.Errorf("category id %q: %w", m[1], err)
			}
			categoryID, category = id, strings.TrimSpace(m[2])
			continue
		}
		if m := markdownQuestion.FindStringSubmatch(line); m != nil {
			flush()
			question := strings.TrimSpace(m[2])
			if category == "" {
				warnings = append(warnings, fmt.Sprintf("question %q appears before any category header", question))
				continue
			}
			id := categoryID
			current = &DatasetEntry{Category: category, CategoryID: &id, Question: question}
			continue
		}
		if line == "---" {
			flush()
			continue
		}
		if current != nil && line != "" {
			answer = append(answer, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, err
	}
	flush()
	return entries, warnings, nil
}
