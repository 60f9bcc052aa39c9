package search

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/starford/modelexplorer/internal/models"
)

func refs(names ...string) []models.ElementRef {
	out := make([]models.ElementRef, len(names))
	for i, n := range names {
		out[i] = models.ElementRef{UUID: "id-" + n, Name: n}
	}
	return out
}

func names(rs []models.ElementRef) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestFilterOperationalCapabilities(t *testing.T) {
	instances := refs("Patrol", "Rescue", "Escort")
	got := names(Filter(instances, "es"))
	want := []string{"Escort", "Rescue"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterEmptyTextSortsAll(t *testing.T) {
	got := names(Filter(refs("b", "C", "a"), "   "))
	want := []string{"C", "a", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterAndSemantics(t *testing.T) {
	instances := refs("Border Patrol", "Sea Patrol", "Border Escort")
	got := names(Filter(instances, "PATROL border"))
	if diff := cmp.Diff([]string{"Border Patrol"}, got); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterEmptyNameNeverMatches(t *testing.T) {
	instances := refs("", "x")
	if got := names(Filter(instances, "x")); !cmp.Equal(got, []string{"x"}) {
		t.Errorf("got %v", got)
	}
	if got := Filter(instances, ""); len(got) != 2 {
		t.Errorf("empty search must list every element: %v", got)
	}
}

func TestFilterStableForDuplicateNames(t *testing.T) {
	in := []models.ElementRef{{UUID: "2", Name: "Dup"}, {UUID: "1", Name: "Dup"}}
	got := Filter(in, "")
	if got[0].UUID != "2" || got[1].UUID != "1" {
		t.Errorf("sort is not stable: %v", got)
	}
}

func TestFilterProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	nameList := gen.SliceOf(gen.AlphaString())
	word := gen.AlphaString()

	properties.Property("result is a subset of the unfiltered list", prop.ForAll(
		func(ns []string, s string) bool {
			all := Filter(refs(ns...), "")
			seen := make(map[string]int)
			for _, r := range all {
				seen[r.UUID+"\x00"+r.Name]++
			}
			for _, r := range Filter(refs(ns...), s) {
				k := r.UUID + "\x00" + r.Name
				if seen[k] == 0 {
					return false
				}
				seen[k]--
			}
			return true
		},
		nameList, word,
	))

	properties.Property("token order does not matter", prop.ForAll(
		func(ns []string, a, b string) bool {
			l := refs(ns...)
			return cmp.Equal(Filter(l, a+" "+b), Filter(l, b+" "+a))
		},
		nameList, word, word,
	))

	properties.Property("empty search returns every element sorted", prop.ForAll(
		func(ns []string) bool {
			got := names(Filter(refs(ns...), ""))
			want := append([]string(nil), ns...)
			sort.Strings(want)
			return cmp.Equal(got, want, cmpopts.EquateEmpty())
		},
		nameList,
	))

	properties.TestingRun(t)
}
