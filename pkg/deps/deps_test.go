package deps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/acknowledge/pkg/errors"
)

func TestParseBreadth(t *testing.T) {
	tests := []struct {
		in      string
		want    Breadth
		wantErr bool
	}{
		{"", BreadthNonOpt, false},
		{"non-opt", BreadthNonOpt, false},
		{"NonOpt", BreadthNonOpt, false},
		{"all", BreadthAll, false},
		{"All", BreadthAll, false},
		{"build-and-dev", BreadthBuildAndDev, false},
		{"BuildAndDev", BreadthBuildAndDev, false},
		{"build_and_dev", BreadthBuildAndDev, false},
		{"everything", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBreadth(tt.in)
			if tt.wantErr {
				assert.Equal(t, errors.ErrCodeInvalidBreadth, errors.GetCode(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBreadthIncludes(t *testing.T) {
	tests := []struct {
		breadth Breadth
		kind    Kind
		want    bool
	}{
		{BreadthNonOpt, KindNormal, true},
		{BreadthNonOpt, KindOptional, false},
		{BreadthNonOpt, KindDev, false},
		{BreadthAll, KindOptional, true},
		{BreadthAll, KindBuild, false},
		{BreadthBuildAndDev, KindBuild, true},
		{BreadthBuildAndDev, KindDev, true},
		{Breadth("bogus"), KindNormal, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.breadth.Includes(tt.kind), "%s.Includes(%s)", tt.breadth, tt.kind)
	}
}

func TestResolve(t *testing.T) {
	entries := []Entry{
		{Name: "serde", Version: "1", Kind: KindNormal},
		{Name: "serde", Version: "1", Kind: KindDev},
		{Name: "tokio", Version: "1", Kind: KindOptional},
		{Name: "tokio", Version: "1", Kind: KindDev, Repository: "https://github.com/tokio-rs/tokio"},
		{Name: "cc", Version: "1.0", Kind: KindBuild},
		{Name: "proptest", Version: "1", Kind: KindDev},
		{Name: "", Version: "1", Kind: KindNormal},
	}

	tests := []struct {
		name    string
		breadth Breadth
		want    []Descriptor
	}{
		{
			name:    "non-opt",
			breadth: BreadthNonOpt,
			want: []Descriptor{
				{Name: "serde", Version: "1", Kind: KindNormal},
			},
		},
		{
			name:    "all",
			breadth: BreadthAll,
			want: []Descriptor{
				{Name: "serde", Version: "1", Kind: KindNormal},
				{Name: "tokio", Version: "1", Kind: KindOptional},
			},
		},
		{
			name:    "build-and-dev",
			breadth: BreadthBuildAndDev,
			want: []Descriptor{
				{Name: "cc", Version: "1.0", Kind: KindBuild},
				{Name: "proptest", Version: "1", Kind: KindDev},
				{Name: "serde", Version: "1", Kind: KindNormal},
				{Name: "tokio", Version: "1", Kind: KindOptional, Repository: "https://github.com/tokio-rs/tokio"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(entries, tt.breadth))
		})
	}
}

func TestResolveDistinctVersions(t *testing.T) {
	got := Resolve([]Entry{
		{Name: "rand", Version: "0.8", Kind: KindNormal},
		{Name: "rand", Version: "0.7", Kind: KindNormal},
	}, BreadthNonOpt)
	require.Len(t, got, 2)
	assert.Equal(t, "0.7", got[0].Version)
	assert.Equal(t, "0.8", got[1].Version)
}

func TestResolveBreadthMonotonic(t *testing.T) {
	entries := []Entry{
		{Name: "a", Kind: KindNormal},
		{Name: "b", Kind: KindOptional},
		{Name: "c", Kind: KindBuild},
		{Name: "d", Kind: KindDev},
		{Name: "a", Kind: KindDev},
	}

	names := func(ds []Descriptor) map[string]bool {
		m := make(map[string]bool)
		for _, d := range ds {
			m[d.String()] = true
		}
		return m
	}

	for i := 1; i < len(Breadths); i++ {
		narrow := names(Resolve(entries, Breadths[i-1]))
		wide := names(Resolve(entries, Breadths[i]))
		for n := range narrow {
			assert.True(t, wide[n], "%s resolves %s but %s does not", Breadths[i-1], n, Breadths[i])
		}
	}
}

func TestDescriptorString(t *testing.T) {
	assert.Equal(t, "serde@1.0", Descriptor{Name: "serde", Version: "1.0"}.String())
	assert.Equal(t, "serde", Descriptor{Name: "serde"}.String())
}
