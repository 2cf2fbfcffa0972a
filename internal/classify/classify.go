package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Label is one taxonomy entry: a display name plus the patterns that
// indicate it applies. Patterns are matched case-insensitively against
// the entry blob; any single match is enough to count as a hit.
type Label struct {
	Name     string
	Patterns []*regexp.Regexp
}

// Taxonomy is an ordered list of labels. Declaration order matters: it
// is the tie-breaker when sorting count tables.
type Taxonomy struct {
	Name   string
	Labels []Label
}

// NewLabel compiles the given word-boundary patterns for a label.
func NewLabel(name string, patterns ...string) (Label, error) {
	if len(patterns) == 0 {
		return Label{}, fmt.Errorf("label %q has no patterns", name)
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return Label{}, fmt.Errorf("compiling pattern %q for label %q: %w", p, name, err)
		}
		compiled = append(compiled, re)
	}
	return Label{Name: name, Patterns: compiled}, nil
}

func mustLabel(name string, patterns ...string) Label {
	label, err := NewLabel(name, patterns...)
	if err != nil {
		panic(err)
	}
	return label
}

// Blob builds the lowercased matching text for an entry: title and
// stripped description joined by a single space.
func Blob(title, description string) string {
	return strings.ToLower(title + " " + description)
}

// Match returns the names of all labels whose patterns hit the blob,
// in taxonomy declaration order. Hits are not mutually exclusive. The
// result is never nil, it serializes as [] in the artifacts.
func (t Taxonomy) Match(blob string) []string {
	hits := []string{}
	for _, label := range t.Labels {
		for _, re := range label.Patterns {
			if re.MatchString(blob) {
				hits = append(hits, label.Name)
				break
			}
		}
	}
	return hits
}

// LabelNames returns the label names in declaration order.
func (t Taxonomy) LabelNames() []string {
	names := make([]string, len(t.Labels))
	for i, label := range t.Labels {
		names[i] = label.Name
	}
	return names
}

// Languages returns the target-language taxonomy: the top spoken
// languages tracked by the radar. English is deliberately absent, it
// matches nearly every listing and drowns the signal.
func Languages() Taxonomy {
	return Taxonomy{
		Name: "languages",
		Labels: []Label{
			mustLabel("Chinese/Mandarin", `\bchinese\b`, `\bmandarin\b`),
			mustLabel("Hindi", `\bhindi\b`),
			mustLabel("Spanish", `\bspanish\b`),
			mustLabel("French", `\bfrench\b`),
			mustLabel("Arabic", `\barabic\b`, `\bmodern standard arabic\b`, `\bmsa\b`),
			mustLabel("Bengali", `\bbengali\b`, `\bbangla\b`),
			mustLabel("Portuguese", `\bportuguese\b`),
			mustLabel("Russian", `\brussian\b`),
			mustLabel("Urdu", `\burdu\b`),
			mustLabel("Indonesian", `\bindonesian\b`, `\bbahasa indonesia\b`),
			mustLabel("German", `\bgerman\b`),
			mustLabel("Japanese", `\bjapanese\b`),
			mustLabel("Korean", `\bkorean\b`),
			mustLabel("Swahili", `\bswahili\b`),
			mustLabel("Marathi", `\bmarathi\b`),
			mustLabel("Telugu", `\btelugu\b`),
			mustLabel("Turkish", `\bturkish\b`),
			mustLabel("Tamil", `\btamil\b`),
			mustLabel("Vietnamese", `\bvietnamese\b`),
		},
	}
}

// Categories returns the data-collection category taxonomy.
func Categories() Taxonomy {
	return Taxonomy{
		Name: "data_types",
		Labels: []Label{
			mustLabel("Speech/ASR/TTS",
				`\bspeech\b`, `\basr\b`, `\btts\b`, `\bvoice\b`,
				`\baccent\b`, `\bdialect\b`, `\btranscription\b`,
				`\bspeech data\b`),
			mustLabel("Text/Localization/Translation",
				`\blinguist\b`, `\blocali[sz]ation\b`, `\bi18n\b`,
				`\btranslation\b`, `\btranslator\b`, `\bterminology\b`,
				`\bmultilingual\b`, `\bcross[- ]lingual\b`),
			mustLabel("RLHF/Safety/Raters",
				`\brlhf\b`, `\bpreference\b`, `\bhuman feedback\b`,
				`\brater\b`, `\bred teaming\b`, `\bsafety\b`, `\bpolicy\b`),
		},
	}
}
