package contrib

import (
	"strings"

	"github.com/matzehuels/acknowledge/pkg/integrations"
)

// Record is one contributor of one repository, as the provider reports it.
// ProfileURL is empty when the provider cannot attribute the commits to an
// account.
type Record struct {
	Login         string `json:"login"`
	ProfileURL    string `json:"profile_url,omitempty"`
	Contributions int    `json:"contributions"`
	Bot           bool   `json:"bot,omitempty"`
}

// Attributed reports whether the record is linked to a provider account.
func (r Record) Attributed() bool { return r.ProfileURL != "" }

// IsBot reports whether the record belongs to an automated account.
func (r Record) IsBot() bool {
	return r.Bot || strings.HasSuffix(strings.ToLower(r.Login), "[bot]")
}

func fromContributors(list []integrations.Contributor) []Record {
	out := make([]Record, len(list))
	for i, c := range list {
		out[i] = Record{
			Login:         c.Login,
			ProfileURL:    c.ProfileURL,
			Contributions: c.Contributions,
			Bot:           c.Bot,
		}
	}
	return out
}
