package model

import (
	"sort"
	"strings"

	"github.com/matzehuels/acknowledge/pkg/aggregate"
	"github.com/matzehuels/acknowledge/pkg/errors"
)

// Format selects the output shape.
type Format string

const (
	FormatNameAndCount Format = "name-and-count"
	FormatDepAndNames  Format = "dep-and-names"
	FormatNameAndDeps  Format = "name-and-deps"
)

// DefaultFormat is the format used when none is configured.
const DefaultFormat = FormatNameAndCount

// DefaultThreshold is the minimum contribution count when none is configured.
const DefaultThreshold = 2

// Formats lists the valid output formats.
var Formats = []Format{FormatNameAndCount, FormatDepAndNames, FormatNameAndDeps}

// ParseFormat parses an output format. Matching ignores case, hyphens and
// underscores, so "NameAndCount" and "name-and-count" are equivalent.
func ParseFormat(s string) (Format, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultFormat, nil
	}
	norm := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range Formats {
		if strings.ReplaceAll(string(f), "-", "") == norm {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"invalid format %q (valid: %s)", s, strings.Join(names, ", "))
}

// Options controls filtering and projection.
type Options struct {
	Format    Format
	Threshold int  // Minimum total contributions; sole contributors are exempt
	Mention   bool // Render GitHub logins as @-mentions
}

// Person is a retained contributor.
type Person struct {
	Identity   string `json:"identity"`
	ProfileURL string `json:"profile_url,omitempty"`
	Total      int    `json:"total"`
}

// DependencyGroup lists the retained contributors of one dependency.
type DependencyGroup struct {
	Dependency   string   `json:"dependency"`
	Contributors []Person `json:"contributors"`
}

// PersonDeps lists the dependencies one retained contributor worked on.
type PersonDeps struct {
	Person
	Dependencies []string `json:"dependencies"`
}

// Model is the rendered document's data. Exactly one of the views is
// populated, selected by Format.
type Model struct {
	Format       Format            `json:"format"`
	Mention      bool              `json:"mention"`
	NameAndCount []Person          `json:"name_and_count,omitempty"`
	DepAndNames  []DependencyGroup `json:"dep_and_names,omitempty"`
	NameAndDeps  []PersonDeps      `json:"name_and_deps,omitempty"`
	Others       int               `json:"others"` // Contributors below the threshold
}

// Empty reports whether no contributor was retained.
func (m *Model) Empty() bool {
	return len(m.NameAndCount) == 0 && len(m.DepAndNames) == 0 && len(m.NameAndDeps) == 0
}

// Retained reports whether c passes the threshold rule.
func Retained(c *aggregate.Contributor, threshold int) bool {
	return c.Total >= threshold || c.Sole
}

// Build filters res and projects it into opts.Format. An unknown format
// falls back to the default.
func Build(res *aggregate.Result, opts Options) *Model {
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		format = DefaultFormat
	}
	m := &Model{Format: format, Mention: opts.Mention}
	if res == nil {
		return m
	}

	kept := make(map[string]*aggregate.Contributor)
	var retained []*aggregate.Contributor
	for _, c := range res.Contributors {
		if Retained(c, opts.Threshold) {
			kept[c.Identity] = c
			retained = append(retained, c)
		} else {
			m.Others++
		}
	}

	switch format {
	case FormatNameAndCount:
		m.NameAndCount = nameAndCount(retained)
	case FormatDepAndNames:
		m.DepAndNames = depAndNames(res.ByDependency, kept)
	case FormatNameAndDeps:
		m.NameAndDeps = nameAndDeps(retained)
	}
	return m
}

func person(c *aggregate.Contributor) Person {
	return Person{Identity: c.Identity, ProfileURL: c.ProfileURL, Total: c.Total}
}

func nameAndCount(retained []*aggregate.Contributor) []Person {
	out := make([]Person, len(retained))
	for i, c := range retained {
		out[i] = person(c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Identity < out[j].Identity
	})
	return out
}

func depAndNames(byDep map[string][]string, kept map[string]*aggregate.Contributor) []DependencyGroup {
	out := make([]DependencyGroup, 0, len(byDep))
	for dep, identities := range byDep {
		g := DependencyGroup{Dependency: dep}
		for _, id := range identities {
			if c, ok := kept[id]; ok {
				g.Contributors = append(g.Contributors, person(c))
			}
		}
		if len(g.Contributors) == 0 {
			continue
		}
		sort.Slice(g.Contributors, func(i, j int) bool {
			return g.Contributors[i].Identity < g.Contributors[j].Identity
		})
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dependency < out[j].Dependency })
	return out
}

func nameAndDeps(retained []*aggregate.Contributor) []PersonDeps {
	out := make([]PersonDeps, len(retained))
	for i, c := range retained {
		deps := append([]string(nil), c.Dependencies...)
		sort.Strings(deps)
		out[i] = PersonDeps{Person: person(c), Dependencies: deps}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Dependencies) != len(out[j].Dependencies) {
			return len(out[i].Dependencies) > len(out[j].Dependencies)
		}
		return out[i].Identity < out[j].Identity
	})
	return out
}
