// Package suggest proposes a library category for an incoming model, first by fuzzy matching
// against existing categories and optionally by asking an LLM.
package suggest

import (
	"context"
	"go.uber.org/zap"
	"print-vault/utils"
	"regexp"
	"strings"
	"unicode"
)

const Uncategorized = "Uncategorized"

type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

type Source string

const (
	SourceExact     Source = "exact"
	SourceName      Source = "name"
	SourceSecondary Source = "secondary"
	SourceHint      Source = "hint"
	SourceDefault   Source = "default"
	SourceLLM       Source = "llm"
)

// Params tunes the fuzzy tier. Zero values are replaced by DefaultParams.
type Params struct {
	HighConfidence       float64
	SecondaryCap         float64
	TextCap              int
	NoiseWords           []string
	SynonymGroups        [][]string
	PhraseOnlyCategories []string
}

func DefaultParams() Params {
	return Params{
		HighConfidence: 0.8,
		SecondaryCap:   0.79,
		TextCap:        2000,
	}
}

// Input is everything known about one item waiting to be filed.
type Input struct {
	Name      string   `json:"name"`
	Filenames []string `json:"filenames,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Designer  string   `json:"designer,omitempty"`
	Text      string   `json:"text,omitempty"`
	Readme    string   `json:"readme,omitempty"`
}

type Suggestion struct {
	Category   string     `json:"category"`
	Confidence Confidence `json:"confidence"`
	Score      float64    `json:"score"`
	Source     Source     `json:"source"`
}

type Fuzzy struct {
	params   Params
	noise    map[string]bool
	synonyms map[string][]string
	hints    HintStore
	log      *zap.SugaredLogger
}

var (
	camelBoundary    = regexp.MustCompile(`(\p{Ll}|\d)(\p{Lu})`)
	nonWordSequences = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// NewFuzzy builds the fuzzy tier. hints may be nil.
func NewFuzzy(params Params, hints HintStore, log *zap.SugaredLogger) *Fuzzy {
	defaults := DefaultParams()

	if params.HighConfidence <= 0 {
		params.HighConfidence = defaults.HighConfidence
	}

	if params.SecondaryCap <= 0 {
		params.SecondaryCap = defaults.SecondaryCap
	}

	if params.TextCap <= 0 {
		params.TextCap = defaults.TextCap
	}

	f := &Fuzzy{
		params:   params,
		noise:    map[string]bool{},
		synonyms: map[string][]string{},
		hints:    hints,
		log:      log,
	}

	for _, word := range params.NoiseWords {
		f.noise[strings.ToLower(word)] = true
	}

	for _, group := range params.SynonymGroups {
		lowered := make([]string, 0, len(group))

		for _, word := range group {
			lowered = append(lowered, strings.ToLower(word))
		}

		for _, word := range lowered {
			f.synonyms[word] = append(f.synonyms[word], lowered...)
		}
	}

	return f
}

// normalizePhrase lowercases s and reduces camelCase and separators to single spaces.
func normalizePhrase(s string) string {
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	s = nonWordSequences.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(s)
}

// Tokenize splits s into lowercase words, dropping noise words, bare numbers and single letters.
func (f *Fuzzy) Tokenize(s string) []string {
	var tokens []string

	for _, word := range strings.Fields(normalizePhrase(s)) {
		if f.noise[word] || len([]rune(word)) < 2 || isDigits(word) {
			continue
		}

		tokens = append(tokens, word)
	}

	return tokens
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

// expand returns the token set plus every synonym of its members.
func (f *Fuzzy) expand(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))

	for _, token := range tokens {
		set[token] = true

		for _, synonym := range f.synonyms[token] {
			set[synonym] = true
		}
	}

	return set
}

func containsPhrase(haystack, needle string) bool {
	if needle == "" {
		return false
	}

	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

func (f *Fuzzy) isPhraseOnly(category string) bool {
	if utils.IsInArrayFold(category, f.params.PhraseOnlyCategories) {
		return true
	}

	letters := 0

	for _, r := range category {
		if unicode.IsLetter(r) {
			letters++
		}
	}

	return letters <= 3
}

// tokenFraction is the share of category tokens found in the candidate set, matching as a
// substring in either direction.
func tokenFraction(categoryTokens []string, candidates map[string]bool) float64 {
	if len(categoryTokens) == 0 || len(candidates) == 0 {
		return 0
	}

	matched := 0

	for _, categoryToken := range categoryTokens {
		for candidate := range candidates {
			if strings.Contains(candidate, categoryToken) || strings.Contains(categoryToken, candidate) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(categoryTokens))
}

type candidate struct {
	primaryPhrase   string
	secondaryPhrase string
	primary         map[string]bool
	secondary       map[string]bool
}

func (f *Fuzzy) candidateFor(input Input) candidate {
	text := input.Text + " " + input.Readme

	if runes := []rune(text); len(runes) > f.params.TextCap {
		text = string(runes[:f.params.TextCap])
	}

	secondary := strings.Join(input.Filenames, " ") + " " + strings.Join(input.Tags, " ") + " " + text

	return candidate{
		primaryPhrase:   normalizePhrase(input.Name),
		secondaryPhrase: normalizePhrase(secondary),
		primary:         f.expand(f.Tokenize(input.Name)),
		secondary:       f.expand(f.Tokenize(secondary)),
	}
}

func (f *Fuzzy) score(category string, c candidate) (float64, Source) {
	phrase := normalizePhrase(category)

	if phrase == "" {
		return 0, ""
	}

	if containsPhrase(c.primaryPhrase, phrase) {
		return 1, SourceExact
	}

	secondaryScore := 0.0

	if containsPhrase(c.secondaryPhrase, phrase) {
		secondaryScore = f.params.SecondaryCap
	}

	if f.isPhraseOnly(category) {
		if secondaryScore > 0 {
			return secondaryScore, SourceSecondary
		}

		return 0, ""
	}

	categoryTokens := f.Tokenize(category)
	primaryScore := tokenFraction(categoryTokens, c.primary)
	secondaryScore = min(max(secondaryScore, tokenFraction(categoryTokens, c.secondary)), f.params.SecondaryCap)

	if primaryScore >= secondaryScore {
		return primaryScore, SourceName
	}

	return secondaryScore, SourceSecondary
}

// Suggest picks the best existing category for input. It never fails: without any match the
// learned hints are consulted and the last resort is Uncategorized.
func (f *Fuzzy) Suggest(ctx context.Context, input Input, categories []string) Suggestion {
	c := f.candidateFor(input)
	best := Suggestion{}

	for _, category := range categories {
		score, source := f.score(category, c)

		if score <= 0 {
			continue
		}

		// Equal scores go to the longer, more specific name
		if score > best.Score || (score == best.Score && len(category) > len(best.Category)) {
			best = Suggestion{Category: category, Score: score, Source: source}
		}
	}

	if best.Score > 0 {
		best.Confidence = Medium

		if best.Source == SourceExact || best.Score >= f.params.HighConfidence {
			best.Confidence = High
		}

		return best
	}

	if f.hints != nil {
		category, err := f.hints.Lookup(ctx, f.Tokenize(input.Name))

		if err != nil {
			f.log.Warnw("hint lookup failed", "name", input.Name, "error", err)
		} else if category != "" {
			return Suggestion{Category: category, Confidence: Low, Source: SourceHint}
		}
	}

	return Suggestion{Category: Uncategorized, Confidence: Low, Source: SourceDefault}
}
