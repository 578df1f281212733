// Package tags maps free text and file paths onto a fixed vocabulary of
// PR categories. Two classifiers satisfy the same contract: a fast
// rule-based one used during indexing, and an embedding-similarity one
// backed by the ollama embeddings client.
package tags

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"sigs.k8s.io/yaml"
)

//go:embed rules.yaml
var defaultRules []byte

type ruleFile struct {
	Vocabulary []string            `json:"vocabulary"`
	Keywords   map[string][]string `json:"keywords"`
	PathRules  map[string][]string `json:"path_rules"`
}

// RuleClassifier assigns vocabulary tags by keyword regexes over free text
// and substring rules over file paths. Output is always sorted so callers
// get deterministic tags regardless of map iteration order.
type RuleClassifier struct {
	vocabulary []string
	keywords   map[string][]*regexp.Regexp
	pathRules  map[string][]string
}

var (
	defaultOnce       sync.Once
	defaultClassifier *RuleClassifier
)

// Default returns the classifier built from the embedded rule table.
func Default() *RuleClassifier {
	defaultOnce.Do(func() {
		c, err := LoadRules(defaultRules)
		if err != nil {
			// Embedded rules are validated by tests; a failure here is a
			// broken build, not a runtime condition.
			panic(fmt.Sprintf("tags: embedded rules invalid: %v", err))
		}
		defaultClassifier = c
	})
	return defaultClassifier
}

// LoadRules parses a YAML rule table. Every keyword or path rule must refer
// to a tag present in the vocabulary.
func LoadRules(data []byte) (*RuleClassifier, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tag rules: %w", err)
	}
	if len(file.Vocabulary) == 0 {
		return nil, fmt.Errorf("tag rules: empty vocabulary")
	}

	vocab := make(map[string]struct{}, len(file.Vocabulary))
	for _, tag := range file.Vocabulary {
		vocab[tag] = struct{}{}
	}

	keywords := make(map[string][]*regexp.Regexp, len(file.Keywords))
	for tag, patterns := range file.Keywords {
		if _, ok := vocab[tag]; !ok {
			return nil, fmt.Errorf("tag rules: keyword tag %q not in vocabulary", tag)
		}
		for _, p := range patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("tag rules: pattern %q for %q: %w", p, tag, err)
			}
			keywords[tag] = append(keywords[tag], re)
		}
	}

	pathRules := make(map[string][]string, len(file.PathRules))
	for tag, needles := range file.PathRules {
		if _, ok := vocab[tag]; !ok {
			return nil, fmt.Errorf("tag rules: path rule tag %q not in vocabulary", tag)
		}
		lowered := make([]string, 0, len(needles))
		for _, n := range needles {
			lowered = append(lowered, strings.ToLower(n))
		}
		pathRules[tag] = lowered
	}

	sorted := append([]string{}, file.Vocabulary...)
	sort.Strings(sorted)
	return &RuleClassifier{vocabulary: sorted, keywords: keywords, pathRules: pathRules}, nil
}

// FromFile loads a rule table from a YAML file, overriding the embedded one.
func FromFile(path string) (*RuleClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag rules %s: %w", path, err)
	}
	return LoadRules(data)
}

// Vocabulary returns the sorted tag vocabulary.
func (c *RuleClassifier) Vocabulary() []string {
	return append([]string{}, c.vocabulary...)
}

// Classify returns the sorted set of tags whose keyword rules match the text.
func (c *RuleClassifier) Classify(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for tag, patterns := range c.keywords {
		for _, re := range patterns {
			if re.MatchString(text) {
				out = append(out, tag)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// ClassifyFiles returns the sorted set of tags implied by modified file
// paths. Matching is plain lowercase substring search, the rules name path
// segments and extensions.
func (c *RuleClassifier) ClassifyFiles(paths []string) []string {
	var out []string
	for tag, needles := range c.pathRules {
		if matchesAny(paths, needles) {
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

func matchesAny(paths, needles []string) bool {
	for _, path := range paths {
		p := strings.ToLower(path)
		for _, n := range needles {
			if strings.Contains(p, n) {
				return true
			}
		}
	}
	return false
}

// ForRecord classifies the four independent text sources of a merged record
// and unions the results. Any single source counting as evidence is
// deliberate: the signals are noisy individually but rarely wrong together.
func ForRecord(c *RuleClassifier, title string, commitMessages, fileTokens, headings []string) []string {
	union := make(map[string]struct{})
	add := func(tags []string) {
		for _, t := range tags {
			union[t] = struct{}{}
		}
	}
	add(c.Classify(title))
	add(c.Classify(strings.Join(commitMessages, "\n")))
	add(c.ClassifyFiles(fileTokens))
	add(c.Classify(strings.Join(headings, "\n")))

	out := make([]string, 0, len(union))
	for t := range union {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
