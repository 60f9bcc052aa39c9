package cachekey

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/starford/modelexplorer/internal/apperr"
)

func TestComputeMissingEnvironment(t *testing.T) {
	_, err := Compute("tmpl", "")
	var eu *apperr.EnvironmentUnavailableError
	if !errors.As(err, &eu) {
		t.Fatalf("err = %v, want EnvironmentUnavailableError", err)
	}
}

type staticVersion struct {
	v   string
	err error
}

func (s staticVersion) RenderEnvironmentVersion() (string, error) { return s.v, s.err }

func TestForTemplatePropagatesUnavailable(t *testing.T) {
	want := &apperr.EnvironmentUnavailableError{}
	_, err := ForTemplate(staticVersion{err: want}, "t")
	if !errors.Is(err, want) {
		t.Fatalf("err = %v", err)
	}
	k, err := ForTemplate(staticVersion{v: "v1"}, "t")
	if err != nil {
		t.Fatal(err)
	}
	direct, _ := Compute("t", "v1")
	if k != direct {
		t.Errorf("ForTemplate = %s, Compute = %s", k, direct)
	}
}

func TestKeyProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	nonEmpty := gen.AlphaString().SuchThat(func(s string) bool { return s != "" })

	properties.Property("different environments yield different keys", prop.ForAll(
		func(tmpl, v1, v2 string) bool {
			if v1 == v2 {
				return true
			}
			k1, err1 := Compute(tmpl, v1)
			k2, err2 := Compute(tmpl, v2)
			return err1 == nil && err2 == nil && k1 != k2
		},
		gen.AlphaString(), nonEmpty, nonEmpty,
	))

	properties.Property("compute is idempotent", prop.ForAll(
		func(tmpl, v string) bool {
			k1, _ := Compute(tmpl, v)
			k2, _ := Compute(tmpl, v)
			return k1 == k2
		},
		gen.AlphaString(), nonEmpty,
	))

	properties.Property("different templates yield different keys", prop.ForAll(
		func(t1, t2, v string) bool {
			if t1 == t2 {
				return true
			}
			k1, _ := Compute(t1, v)
			k2, _ := Compute(t2, v)
			return k1 != k2
		},
		gen.AlphaString(), gen.AlphaString(), nonEmpty,
	))

	properties.TestingRun(t)
}
