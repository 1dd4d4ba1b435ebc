package vectorizer

import (
	"regexp"
	"strings"
)

// analyzer turns a document into its ordered list of candidate terms.
type analyzer struct {
	pattern   *regexp.Regexp
	stopwords map[string]struct{}
	lowercase bool
	minN      int
	maxN      int
}

func newAnalyzer(cfg *Config) *analyzer {
	a := &analyzer{
		lowercase: cfg.Lowercase,
		minN:      cfg.NGramRange.Min,
		maxN:      cfg.NGramRange.Max,
	}
	if cfg.TokenPattern != "" {
		// validated by Config.Validate
		a.pattern = regexp.MustCompile(cfg.TokenPattern)
	}
	if len(cfg.StopWords) > 0 {
		a.stopwords = make(map[string]struct{}, len(cfg.StopWords))
		for _, w := range cfg.StopWords {
			if cfg.Lowercase {
				w = strings.ToLower(w)
			}
			a.stopwords[w] = struct{}{}
		}
	}
	return a
}

// tokens splits a document and removes stopwords.
func (a *analyzer) tokens(doc string) []string {
	if a.lowercase {
		doc = strings.ToLower(doc)
	}

	var raw []string
	if a.pattern != nil {
		raw = a.pattern.FindAllString(doc, -1)
	} else {
		raw = strings.Fields(doc)
	}

	out := raw[:0]
	for _, t := range raw {
		if t == "" {
			continue
		}
		if _, stop := a.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// terms returns all n-grams of the document: every 1-gram in order, then every
// 2-gram, and so on up to maxN. This order defines first-seen tie-breaking.
func (a *analyzer) terms(doc string) []string {
	toks := a.tokens(doc)
	if a.minN == 1 && a.maxN == 1 {
		return toks
	}

	var out []string
	for n := a.minN; n <= a.maxN; n++ {
		for i := 0; i+n <= len(toks); i++ {
			if n == 1 {
				out = append(out, toks[i])
				continue
			}
			out = append(out, strings.Join(toks[i:i+n], " "))
		}
	}
	return out
}
