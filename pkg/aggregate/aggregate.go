package aggregate

import (
	"sort"
	"strings"

	"github.com/matzehuels/acknowledge/pkg/contrib"
	"github.com/matzehuels/acknowledge/pkg/source"
)

// IdentityKey normalizes a login for matching across repositories.
func IdentityKey(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

// Contributor is one person's merged contribution record.
type Contributor struct {
	Identity     string             `json:"identity"`              // Display login
	ProfileURL   string             `json:"profile_url,omitempty"` // Empty for unattributed authors
	Total        int                `json:"total"`                 // Sum over every merged record
	Repos        []source.Reference `json:"repos"`                 // Sorted, never empty
	Dependencies []string           `json:"dependencies"`          // Sorted union over Repos
	Sole         bool               `json:"sole,omitempty"`        // Only contributor of some repository
}

// Attributed reports whether the contributor is linked to an account.
func (c *Contributor) Attributed() bool { return c.ProfileURL != "" }

// Result is the merged view of every fetched repository.
type Result struct {
	// Contributors, sorted by identity.
	Contributors []*Contributor
	// ByDependency lists, per dependency, the identities of everyone who
	// contributed to its repository, sorted.
	ByDependency map[string][]string
}

// Lookup returns the contributor with the given identity.
func (r *Result) Lookup(identity string) (*Contributor, bool) {
	i := sort.Search(len(r.Contributors), func(i int) bool {
		return r.Contributors[i].Identity >= identity
	})
	if i < len(r.Contributors) && r.Contributors[i].Identity == identity {
		return r.Contributors[i], true
	}
	return nil, false
}

type repoRecords struct {
	target  source.Target
	records []contrib.Record
}

// bucket accumulates the records of one identity.
type bucket struct {
	logins   map[string]int    // exact login → contributions
	profiles map[string]string // exact login → profile URL
	total    int
	repos    map[source.Reference]bool
	deps     map[string]bool
}

func newBucket() *bucket {
	return &bucket{
		logins:   make(map[string]int),
		profiles: make(map[string]string),
		repos:    make(map[source.Reference]bool),
		deps:     make(map[string]bool),
	}
}

func (b *bucket) add(r contrib.Record, t source.Target) {
	b.logins[r.Login] += r.Contributions
	b.total += r.Contributions
	if p, ok := b.profiles[r.Login]; r.ProfileURL != "" && (!ok || r.ProfileURL < p) {
		b.profiles[r.Login] = r.ProfileURL
	}
	b.repos[t.Ref] = true
	for _, d := range t.Dependencies {
		b.deps[d] = true
	}
}

// displayLogin is the spelling with the most contributions, ties broken by
// the lexicographically smallest spelling.
func (b *bucket) displayLogin() string {
	best, bestN := "", -1
	for login, n := range b.logins {
		if n > bestN || (n == bestN && login < best) {
			best, bestN = login, n
		}
	}
	return best
}

// profileURL belongs to the display login when it has one, otherwise it
// is the smallest URL seen.
func (b *bucket) profileURL(login string) string {
	if p, ok := b.profiles[login]; ok {
		return p
	}
	best := ""
	for _, p := range b.profiles {
		if best == "" || p < best {
			best = p
		}
	}
	return best
}

// Aggregate merges the records of every target. Targets without records
// (failed fetches) contribute nothing. Bot accounts are ignored.
func Aggregate(targets []source.Target, records map[source.Reference][]contrib.Record) *Result {
	inputs := make([]repoRecords, 0, len(targets))
	for _, t := range targets {
		recs, ok := records[t.Ref]
		if !ok {
			continue
		}
		sorted := make([]contrib.Record, 0, len(recs))
		for _, r := range recs {
			if r.IsBot() || strings.TrimSpace(r.Login) == "" {
				continue
			}
			sorted = append(sorted, r)
		}
		sort.Slice(sorted, func(i, j int) bool { return recordLess(sorted[i], sorted[j]) })
		inputs = append(inputs, repoRecords{target: t, records: sorted})
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].target.Ref.Less(inputs[j].target.Ref) })

	// Attributed records first, so unattributed ones see every account
	// login they could join.
	attributed := make(map[string]*bucket)
	accountLogins := make(map[string]string) // exact login → attributed key
	for _, in := range inputs {
		for _, r := range in.records {
			if !r.Attributed() {
				continue
			}
			key := IdentityKey(r.Login)
			b, ok := attributed[key]
			if !ok {
				b = newBucket()
				attributed[key] = b
			}
			b.add(r, in.target)
			accountLogins[r.Login] = key
		}
	}

	unattributed := make(map[string]*bucket)
	for _, in := range inputs {
		for _, r := range in.records {
			if r.Attributed() {
				continue
			}
			if key, ok := accountLogins[r.Login]; ok {
				attributed[key].add(r, in.target)
				continue
			}
			b, ok := unattributed[r.Login]
			if !ok {
				b = newBucket()
				unattributed[r.Login] = b
			}
			b.add(r, in.target)
		}
	}

	// Sole authorship is decided on merged identities: a repository whose
	// records all fold into one bucket has a sole contributor.
	owners := make(map[source.Reference]map[*bucket]bool)
	for _, group := range []map[string]*bucket{attributed, unattributed} {
		for _, b := range group {
			for ref := range b.repos {
				if owners[ref] == nil {
					owners[ref] = make(map[*bucket]bool)
				}
				owners[ref][b] = true
			}
		}
	}

	res := &Result{ByDependency: make(map[string][]string)}
	for _, group := range []map[string]*bucket{attributed, unattributed} {
		for _, b := range group {
			login := b.displayLogin()
			c := &Contributor{
				Identity:   login,
				ProfileURL: b.profileURL(login),
				Total:      b.total,
			}
			for ref := range b.repos {
				c.Repos = append(c.Repos, ref)
				if len(owners[ref]) == 1 {
					c.Sole = true
				}
			}
			sort.Slice(c.Repos, func(i, j int) bool { return c.Repos[i].Less(c.Repos[j]) })
			for d := range b.deps {
				c.Dependencies = append(c.Dependencies, d)
			}
			sort.Strings(c.Dependencies)
			res.Contributors = append(res.Contributors, c)
		}
	}
	sort.Slice(res.Contributors, func(i, j int) bool {
		return contributorLess(res.Contributors[i], res.Contributors[j])
	})

	for _, c := range res.Contributors {
		for _, d := range c.Dependencies {
			res.ByDependency[d] = append(res.ByDependency[d], c.Identity)
		}
	}
	for d := range res.ByDependency {
		sort.Strings(res.ByDependency[d])
	}
	return res
}

func recordLess(a, b contrib.Record) bool {
	if a.Login != b.Login {
		return a.Login < b.Login
	}
	if a.ProfileURL != b.ProfileURL {
		return a.ProfileURL < b.ProfileURL
	}
	return a.Contributions < b.Contributions
}

// contributorLess orders by identity. Identities are unique within a
// Result; the remaining keys keep the order total.
func contributorLess(a, b *Contributor) bool {
	if a.Identity != b.Identity {
		return a.Identity < b.Identity
	}
	if a.ProfileURL != b.ProfileURL {
		return a.ProfileURL > b.ProfileURL
	}
	return a.Total > b.Total
}
