package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/acknowledge/pkg/aggregate"
	"github.com/matzehuels/acknowledge/pkg/contrib"
	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/source"
)

func ref(repo string) source.Reference {
	return source.Reference{Provider: source.GitHub, Owner: "o", Repo: repo}
}

func rec(login string, n int) contrib.Record {
	return contrib.Record{Login: login, ProfileURL: "https://github.com/" + login, Contributions: n}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatNameAndCount},
		{"name-and-count", FormatNameAndCount},
		{"NameAndCount", FormatNameAndCount},
		{"dep_and_names", FormatDepAndNames},
		{"DepAndNames", FormatDepAndNames},
		{"name-and-deps", FormatNameAndDeps},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("table")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

// Scenario A: one dependency, alice (5) and bob (1), threshold 2.
func TestBuild_ScenarioA(t *testing.T) {
	targets := []source.Target{{Ref: ref("foo"), Dependencies: []string{"foo"}}}
	res := aggregate.Aggregate(targets, map[source.Reference][]contrib.Record{
		ref("foo"): {rec("alice", 5), rec("bob", 1)},
	})

	m := Build(res, Options{Format: FormatNameAndCount, Threshold: 2})
	require.Len(t, m.NameAndCount, 1)
	assert.Equal(t, "alice", m.NameAndCount[0].Identity)
	assert.Equal(t, 5, m.NameAndCount[0].Total)
	assert.Equal(t, 1, m.Others)
	assert.Nil(t, m.DepAndNames)
	assert.Nil(t, m.NameAndDeps)
}

// Scenario B: bob is also the sole contributor of "bar".
func TestBuild_ScenarioB(t *testing.T) {
	targets := []source.Target{
		{Ref: ref("foo"), Dependencies: []string{"foo"}},
		{Ref: ref("bar"), Dependencies: []string{"bar"}},
	}
	res := aggregate.Aggregate(targets, map[source.Reference][]contrib.Record{
		ref("foo"): {rec("alice", 5)},
		ref("bar"): {rec("bob", 1)},
	})

	m := Build(res, Options{Format: FormatNameAndCount, Threshold: 2})
	require.Len(t, m.NameAndCount, 2)
	assert.Equal(t, "alice", m.NameAndCount[0].Identity)
	assert.Equal(t, "bob", m.NameAndCount[1].Identity)
	assert.Zero(t, m.Others)
}

// Scenario C: two dependencies share one repository.
func TestBuild_ScenarioC(t *testing.T) {
	targets := []source.Target{
		{Ref: ref("serde"), Dependencies: []string{"serde", "serde_derive"}},
	}
	res := aggregate.Aggregate(targets, map[source.Reference][]contrib.Record{
		ref("serde"): {rec("dtolnay", 30), rec("oli-obk", 4)},
	})

	m := Build(res, Options{Format: FormatDepAndNames, Threshold: 2})
	require.Len(t, m.DepAndNames, 2)
	assert.Equal(t, "serde", m.DepAndNames[0].Dependency)
	assert.Equal(t, "serde_derive", m.DepAndNames[1].Dependency)
	assert.Equal(t, m.DepAndNames[0].Contributors, m.DepAndNames[1].Contributors)
	require.Len(t, m.DepAndNames[0].Contributors, 2)
	assert.Equal(t, "dtolnay", m.DepAndNames[0].Contributors[0].Identity)
	assert.Equal(t, "oli-obk", m.DepAndNames[0].Contributors[1].Identity)
}

func TestBuild_DropsEmptyDependencies(t *testing.T) {
	targets := []source.Target{
		{Ref: ref("a"), Dependencies: []string{"a"}},
		{Ref: ref("b"), Dependencies: []string{"b"}},
	}
	res := aggregate.Aggregate(targets, map[source.Reference][]contrib.Record{
		ref("a"): {rec("alice", 10)},
		ref("b"): {rec("bob", 1), rec("carol", 1)},
	})

	m := Build(res, Options{Format: FormatDepAndNames, Threshold: 2})
	require.Len(t, m.DepAndNames, 1)
	assert.Equal(t, "a", m.DepAndNames[0].Dependency)
	assert.Equal(t, 2, m.Others)
}

func TestBuild_NameAndDeps(t *testing.T) {
	targets := []source.Target{
		{Ref: ref("a"), Dependencies: []string{"a"}},
		{Ref: ref("b"), Dependencies: []string{"b1", "b2"}},
	}
	res := aggregate.Aggregate(targets, map[source.Reference][]contrib.Record{
		ref("a"): {rec("zed", 50), rec("amy", 3)},
		ref("b"): {rec("zed", 2), rec("bea", 9)},
	})

	m := Build(res, Options{Format: FormatNameAndDeps, Threshold: 2})
	require.Len(t, m.NameAndDeps, 3)
	assert.Equal(t, "zed", m.NameAndDeps[0].Identity)
	assert.Equal(t, []string{"a", "b1", "b2"}, m.NameAndDeps[0].Dependencies)
	assert.Equal(t, "bea", m.NameAndDeps[1].Identity)
	assert.Equal(t, []string{"b1", "b2"}, m.NameAndDeps[1].Dependencies)
	assert.Equal(t, "amy", m.NameAndDeps[2].Identity)
}

func TestBuild_NameAndCountOrdering(t *testing.T) {
	targets := []source.Target{{Ref: ref("a"), Dependencies: []string{"a"}}}
	res := aggregate.Aggregate(targets, map[source.Reference][]contrib.Record{
		ref("a"): {rec("carol", 4), rec("bob", 7), rec("alice", 4)},
	})
	m := Build(res, Options{Threshold: 0})
	require.Len(t, m.NameAndCount, 3)
	assert.Equal(t, []string{"bob", "alice", "carol"}, []string{
		m.NameAndCount[0].Identity, m.NameAndCount[1].Identity, m.NameAndCount[2].Identity,
	})
	assert.Equal(t, FormatNameAndCount, m.Format)
}

// A below-threshold contributor is kept if and only if they are the sole
// contributor of some repository.
func TestBuild_SoleContributorException(t *testing.T) {
	targets := []source.Target{
		{Ref: ref("shared"), Dependencies: []string{"shared"}},
		{Ref: ref("solo"), Dependencies: []string{"solo"}},
	}
	res := aggregate.Aggregate(targets, map[source.Reference][]contrib.Record{
		ref("shared"): {rec("alice", 1), rec("bob", 1), rec("big", 100)},
		ref("solo"):   {rec("alice", 1)},
	})

	m := Build(res, Options{Threshold: 10})
	kept := make(map[string]bool)
	for _, p := range m.NameAndCount {
		kept[p.Identity] = true
	}
	for _, c := range res.Contributors {
		if c.Total < 10 {
			assert.Equal(t, c.Sole, kept[c.Identity], c.Identity)
		}
	}
	assert.True(t, kept["alice"])
	assert.False(t, kept["bob"])
	assert.True(t, kept["big"])
	assert.Equal(t, 1, m.Others)
}

func TestBuild_EmptyAndDefaults(t *testing.T) {
	m := Build(nil, Options{Format: "bogus", Mention: true})
	assert.Equal(t, FormatNameAndCount, m.Format)
	assert.True(t, m.Mention)
	assert.True(t, m.Empty())

	m = Build(aggregate.Aggregate(nil, nil), Options{Format: "DepAndNames"})
	assert.Equal(t, FormatDepAndNames, m.Format)
	assert.True(t, m.Empty())
	assert.Zero(t, m.Others)
}
