// Package useragent turns raw User-Agent headers into device, browser and
// platform labels and counts how often each label occurs.
package useragent

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
)

// Agent holds the raw fields a Parser extracts from a user agent string.
// Any field may be empty.
type Agent struct {
	Device   string
	Browser  string
	Platform string
}

// Parser extracts device type, browser name and OS name from a user agent.
type Parser interface {
	Parse(raw string) (Agent, error)
}

// Classification is the normalized labels of one user agent.
type Classification struct {
	Device   string `json:"device"`
	Browser  string `json:"browser"`
	Platform string `json:"platform"`
}

// Tallies groups the per-dimension counts of a batch of classifications.
type Tallies struct {
	Device   *domain.CategoryTally
	Browser  *domain.CategoryTally
	Platform *domain.CategoryTally
}

type Classifier struct {
	parser Parser
}

func NewClassifier(parser Parser) *Classifier {
	return &Classifier{parser: parser}
}

// Classify parses raw and normalizes every dimension. An empty string is
// Unknown everywhere and never reaches the parser.
func (c *Classifier) Classify(raw string) (Classification, error) {
	if strings.TrimSpace(raw) == "" {
		return Classification{
			Device:   domain.UnknownCategory,
			Browser:  domain.UnknownCategory,
			Platform: domain.UnknownCategory,
		}, nil
	}

	agent, err := c.parser.Parse(raw)
	if err != nil {
		return Classification{}, fmt.Errorf("parse user agent: %w", err)
	}

	return Classification{
		Device:   Normalize(agent.Device),
		Browser:  Normalize(agent.Browser),
		Platform: Normalize(agent.Platform),
	}, nil
}

// Normalize maps an empty value to Unknown and upper-cases the first
// character of anything else.
func Normalize(value string) string {
	if value == "" {
		return domain.UnknownCategory
	}
	r, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(r)) + value[size:]
}

// Tally counts every classification, then sorts each dimension once by
// descending count.
func Tally(classifications []Classification) Tallies {
	t := Tallies{
		Device:   domain.NewCategoryTally(),
		Browser:  domain.NewCategoryTally(),
		Platform: domain.NewCategoryTally(),
	}
	for _, c := range classifications {
		t.Device.Add(c.Device)
		t.Browser.Add(c.Browser)
		t.Platform.Add(c.Platform)
	}
	t.Device.Sort()
	t.Browser.Sort()
	t.Platform.Sort()
	return t
}
