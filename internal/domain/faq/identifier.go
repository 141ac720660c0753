package faq

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedIdentifier marks identifiers that do not follow the Q<category>.<sequence> shape.
var ErrMalformedIdentifier = errors.New("malformed faq identifier")

var (
	identifierPattern     = regexp.MustCompile(`^Q(\d+)\.(\d+)$`)
	categoryPrefixPattern = regexp.MustCompile(`^Q(\d+)\.`)
)

// Identifier is the parsed form of a record identifier such as "Q3.12".
type Identifier struct {
	Category int
	Sequence int
}

func (id Identifier) String() string {
	return fmt.Sprintf("Q%d.%d", id.Category, id.Sequence)
}

// ParseIdentifier strictly parses Q<digits>.<digits>.
func ParseIdentifier(raw string) (Identifier, error) {
	m := identifierPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, raw)
	}
	category, err := strconv.Atoi(m[1])
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, raw)
	}
	sequence, err := strconv.Atoi(m[2])
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, raw)
	}
	return Identifier{Category: category, Sequence: sequence}, nil
}

// NextIdentifier allocates the next identifier for category over the given records.
// Identifiers with a malformed sequence never extend a category, but their Q<N>. prefix still
// reserves category number N.
func NextIdentifier(records []Record, category string) string {
	target := strings.ToLower(strings.TrimSpace(category))

	var (
		categoryNum = -1
		maxSeq      int
	)
	for _, rec := range records {
		if strings.ToLower(strings.TrimSpace(rec.Category)) != target {
			continue
		}
		id, err := ParseIdentifier(rec.Identifier)
		if err != nil {
			continue
		}
		if categoryNum < 0 {
			categoryNum = id.Category
		}
		if id.Sequence > maxSeq {
			maxSeq = id.Sequence
		}
	}
	if categoryNum >= 0 {
		return Identifier{Category: categoryNum, Sequence: maxSeq + 1}.String()
	}

	maxCategory := 0
	for _, rec := range records {
		if n, ok := categoryPrefix(rec.Identifier); ok && n > maxCategory {
			maxCategory = n
		}
	}
	return Identifier{Category: maxCategory + 1, Sequence: 1}.String()
}

// categoryPrefix reads the leading Q<N>. of an identifier whatever follows the dot.
func categoryPrefix(raw string) (int, bool) {
	m := categoryPrefixPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
