package cases

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCases() []Case {
	return []Case{
		{
			Company:          "First National",
			Description:      "Bank inflated deposit figures",
			SourceURL:        "https://example.com/a",
			ManipulationType: []string{"accounting"},
			ReportedDate:     "2024-01-10",
		},
		{
			Company:          "Acme Retail",
			Description:      "Fake review campaign",
			SourceURL:        "https://example.com/b",
			ManipulationType: []string{"reviews", "astroturfing"},
			ReportedDate:     "2024-02-11",
		},
		{
			Company:          "Mutual Trust",
			Description:      "Regional bank hid overdraft fees",
			SourceURL:        "https://example.com/c",
			ManipulationType: []string{"pricing"},
			ReportedDate:     "2024-03-12",
		},
	}
}

func TestFilterEmptyQueryIsIdentity(t *testing.T) {
	in := sampleCases()
	assert.Equal(t, in, Filter("", in))
	assert.Empty(t, Filter("", nil))
}

func TestFilterBankScenario(t *testing.T) {
	in := sampleCases()
	got := Filter("bank", in)
	require.Len(t, got, 2)
	assert.Equal(t, "First National", got[0].Company)
	assert.Equal(t, "Mutual Trust", got[1].Company)
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	in := sampleCases()
	for _, q := range []string{"bank", "acme", "REVIEWS", "Fees", "zzz", "", "s,a"} {
		assert.Equal(t, Filter(q, in), Filter(strings.ToUpper(q), in), "query %q", q)
	}
}

func TestFilterFoldsIrregularCaseMappings(t *testing.T) {
	in := []Case{
		{Company: "Istanbul Freight"},
		{Company: "ıstanbul Lojistik"},
		{Company: "Kelvin Labs"},
	}
	for _, q := range []string{"ı", "i", "I", "ıstanbul", "\u212a"} {
		assert.Equal(t, Filter(q, in), Filter(strings.ToUpper(q), in), "query %q", q)
	}
	assert.Len(t, Filter("ıstanbul", in), 2)
	// KELVIN SIGN folds onto k
	assert.Equal(t, "Kelvin Labs", Filter("\u212aelvin", in)[0].Company)
}

func TestFilterMatchesJoinedTags(t *testing.T) {
	in := sampleCases()
	got := Filter("reviews,astro", in)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme Retail", got[0].Company)
}

func TestFilterIsOrderPreservingSubsequence(t *testing.T) {
	in := sampleCases()
	for _, q := range []string{"a", "e", "bank", "pricing", "x"} {
		got := Filter(q, in)
		j := 0
		for _, c := range got {
			for j < len(in) && in[j].Company != c.Company {
				j++
			}
			require.Less(t, j, len(in), "query %q produced a non-subsequence", q)
			j++
		}
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	in := sampleCases()
	before := append([]Case(nil), in...)
	_ = Filter("bank", in)
	assert.Equal(t, before, in)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseTags("a, b ,c"))
	assert.Equal(t, []string{"greenwashing", "pricing"}, ParseTags("greenwashing, , pricing"))
	assert.Equal(t, []string{}, ParseTags(""))
	assert.Equal(t, []string{}, ParseTags(" , ,,"))
}

func TestNewCaseStampsLocalDate(t *testing.T) {
	now := time.Date(2025, 7, 4, 23, 30, 0, 0, time.Local)
	c := NewCase(FormInput{
		Company:          "Acme",
		ManipulationType: "greenwashing, , pricing",
	}, now)

	assert.Equal(t, "Acme", c.Company)
	assert.Equal(t, "", c.Description)
	assert.Equal(t, []string{"greenwashing", "pricing"}, c.ManipulationType)
	assert.Equal(t, "2025-07-04", c.ReportedDate)
}

func TestStorePrependAndReplace(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0, s.Len())

	s.Replace(sampleCases())
	assert.Equal(t, 3, s.Len())

	s.Prepend(Case{Company: "Newest"})
	all := s.All()
	require.Len(t, all, 4)
	assert.Equal(t, "Newest", all[0].Company)
	assert.Equal(t, "First National", all[1].Company)

	// snapshots are detached from the store
	all[0].Company = "changed"
	assert.Equal(t, "Newest", s.All()[0].Company)
}

func TestCloneDetachesTags(t *testing.T) {
	c := Case{ManipulationType: []string{"a"}}
	d := c.Clone()
	d.ManipulationType[0] = "b"
	assert.Equal(t, "a", c.ManipulationType[0])
	assert.Nil(t, Case{}.Clone().ManipulationType)
}

func TestStoreDetachesTags(t *testing.T) {
	in := sampleCases()
	s := NewStore()
	s.Replace(in)
	in[0].ManipulationType[0] = "changed"
	all := s.All()
	assert.Equal(t, "accounting", all[0].ManipulationType[0])

	all[1].ManipulationType[0] = "changed"
	assert.Equal(t, "reviews", s.All()[1].ManipulationType[0])
}
