package patchstream

import (
	"encoding/json"
	"errors"
	"iter"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/livequery/gql"
	"github.com/signadot/livequery/libdiff"
)

func seqOf(results ...*gql.Result) iter.Seq2[*gql.Result, error] {
	return func(yield func(*gql.Result, error) bool) {
		for _, r := range results {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func envelopes(envs ...*Envelope) iter.Seq2[*Envelope, error] {
	return func(yield func(*Envelope, error) bool) {
		for _, e := range envs {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func live(data any) *gql.Result {
	return &gql.Result{Data: data, IsLive: true}
}

func collect[T any](t *testing.T, s iter.Seq2[T, error]) []T {
	t.Helper()
	var res []T
	for v, err := range s {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res = append(res, v)
	}
	return res
}

func TestGenerateSuppression(t *testing.T) {
	data := map[string]any{"foo": "queried"}
	envs := collect(t, Generate(seqOf(live(data), live(map[string]any{"foo": "queried"}))))
	if len(envs) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(envs))
	}
	if envs[0].Revision != 1 {
		t.Errorf("expected revision 1, got %d", envs[0].Revision)
	}
	if diff := cmp.Diff(any(data), envs[0].Data); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestGenerateSequence(t *testing.T) {
	a := map[string]any{"n": 1.0}
	b := map[string]any{"n": 2.0}
	c := map[string]any{"n": 3.0}
	envs := collect(t, Generate(seqOf(
		live(a),
		live(b),
		live(b),
		&gql.Result{Data: c},
		live(c),
		live(a),
	)))
	type summary struct {
		Revision int
		Data     any
		Patch    any
	}
	var got []summary
	for _, e := range envs {
		got = append(got, summary{e.Revision, e.Data, e.Patch})
	}
	want := []summary{
		{Revision: 1, Data: a},
		{Revision: 2, Patch: map[string]any{"n": []any{1.0, 2.0}}},
		{Revision: 0, Data: c},
		{Revision: 1, Data: c},
		{Revision: 2, Patch: map[string]any{"n": []any{3.0, 1.0}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestGenerateCarriesErrorsAndExtensions(t *testing.T) {
	r1 := live(map[string]any{"a": 1.0})
	r2 := live(map[string]any{"a": 2.0})
	r2.Extensions = map[string]any{"k": "v"}
	r2.Errors = gql.ErrorResult(errors.New("partial")).Errors
	envs := collect(t, Generate(seqOf(r1, r2)))
	if len(envs) != 2 {
		t.Fatalf("expected 2 envelopes, got %d", len(envs))
	}
	if envs[1].Extensions["k"] != "v" || len(envs[1].Errors) != 1 {
		t.Errorf("expected errors and extensions on revision 2, got %+v", envs[1])
	}
}

func TestApplyInvertsGenerate(t *testing.T) {
	inputs := []*gql.Result{
		live(map[string]any{"todos": []any{map[string]any{"id": "1"}, map[string]any{"id": "2"}}}),
		live(map[string]any{"todos": []any{map[string]any{"id": "2"}, map[string]any{"id": "1", "done": true}}}),
		live(map[string]any{"todos": []any{map[string]any{"id": "3"}}}),
		{Data: map[string]any{"plain": true}},
		live(map[string]any{"todos": []any{}}),
		live(map[string]any{"todos": []any{"x"}}),
	}
	hash := libdiff.ObjectHash(func(item any, _ int) (string, bool) {
		m, ok := item.(map[string]any)
		if !ok {
			return "", false
		}
		id, ok := m["id"].(string)
		return id, ok
	})
	got := collect(t, Apply(Generate(seqOf(inputs...), hash)))
	if diff := cmp.Diff(inputs, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestApplyThroughJSON(t *testing.T) {
	inputs := []*gql.Result{
		live(map[string]any{"a": []any{1.0, 2.0, 3.0}}),
		live(map[string]any{"a": []any{3.0, 1.0}}),
		live(nil),
		live(map[string]any{"b": "x"}),
	}
	var wire [][]byte
	for env, err := range Generate(seqOf(inputs...)) {
		if err != nil {
			t.Fatal(err)
		}
		d, err := json.Marshal(env)
		if err != nil {
			t.Fatal(err)
		}
		wire = append(wire, d)
	}
	decoded := func(yield func(*Envelope, error) bool) {
		for _, d := range wire {
			env := &Envelope{}
			if !yield(env, json.Unmarshal(d, env)) {
				return
			}
		}
	}
	got := collect(t, Apply(decoded))
	if diff := cmp.Diff(inputs, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEnvelopeJSON(t *testing.T) {
	tests := []struct {
		env  *Envelope
		want string
	}{
		{&Envelope{Data: map[string]any{"a": 1.0}, HasData: true, Revision: 1}, `{"data":{"a":1},"revision":1}`},
		{&Envelope{Data: nil, HasData: true, Revision: 1}, `{"data":null,"revision":1}`},
		{&Envelope{Patch: map[string]any{"a": []any{1.0, 2.0}}, HasPatch: true, Revision: 2}, `{"patch":{"a":[1,2]},"revision":2}`},
		{&Envelope{Extensions: map[string]any{"x": true}}, `{"extensions":{"x":true}}`},
	}
	for _, tt := range tests {
		d, err := json.Marshal(tt.env)
		if err != nil {
			t.Fatal(err)
		}
		if string(d) != tt.want {
			t.Errorf("expected %s, got %s", tt.want, d)
		}
		back := &Envelope{}
		if err := json.Unmarshal(d, back); err != nil {
			t.Fatal(err)
		}
		if back.hasData() != tt.env.hasData() || back.hasPatch() != tt.env.hasPatch() {
			t.Errorf("%s: presence not preserved", tt.want)
		}
	}
}

func TestApplyProtocolErrors(t *testing.T) {
	first := &Envelope{Data: map[string]any{"a": 1.0}, HasData: true, Revision: 1}
	tests := []struct {
		name string
		envs []*Envelope
		err  error
	}{
		{
			name: "missing data",
			envs: []*Envelope{{Revision: 1}},
			err:  ErrMissingData,
		},
		{
			name: "missing patch",
			envs: []*Envelope{first, {Revision: 2}},
			err:  ErrMissingPatch,
		},
		{
			name: "patch without start",
			envs: []*Envelope{{Patch: map[string]any{"a": []any{2.0}}, Revision: 2}},
			err:  &RevisionMismatchError{Expected: 1, Got: 2},
		},
		{
			name: "gap",
			envs: []*Envelope{first, {Patch: map[string]any{"a": []any{1.0, 2.0}}, Revision: 3}},
			err:  &RevisionMismatchError{Expected: 2, Got: 3},
		},
		{
			name: "reset forgets revisions",
			envs: []*Envelope{first, {Data: "plain"}, {Patch: map[string]any{"a": []any{1.0, 2.0}}, Revision: 2}},
			err:  &RevisionMismatchError{Expected: 1, Got: 2},
		},
		{
			name: "malformed patch",
			envs: []*Envelope{first, {Patch: []any{1.0, 2.0, 99.0}, Revision: 2}},
			err:  libdiff.ErrMalformedDelta,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got error
			n := 0
			for _, err := range Apply(envelopes(tt.envs...)) {
				if err != nil {
					got = err
					continue
				}
				n++
			}
			if got == nil {
				t.Fatal("expected an error")
			}
			var rm *RevisionMismatchError
			if want, ok := tt.err.(*RevisionMismatchError); ok {
				if !errors.As(got, &rm) {
					t.Fatalf("expected RevisionMismatchError, got %v", got)
				}
				if diff := cmp.Diff(want, rm); diff != "" {
					t.Errorf("(-want +got):\n%s", diff)
				}
			} else if !errors.Is(got, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, got)
			}
			if n != len(tt.envs)-1 {
				t.Errorf("expected %d results before the error, got %d", len(tt.envs)-1, n)
			}
		})
	}
}

func TestGenerateStopsSource(t *testing.T) {
	pulled := 0
	stopped := false
	src := func(yield func(*gql.Result, error) bool) {
		for i := range 10 {
			pulled++
			if !yield(live(map[string]any{"i": float64(i)}), nil) {
				stopped = true
				return
			}
		}
	}
	for env := range Generate(src) {
		if env.Revision == 2 {
			break
		}
	}
	if !stopped || pulled != 2 {
		t.Errorf("expected source to stop after 2 results, pulled %d stopped %v", pulled, stopped)
	}
}

func TestGenerateSourceError(t *testing.T) {
	boom := errors.New("boom")
	src := func(yield func(*gql.Result, error) bool) {
		if !yield(live(1.0), nil) {
			return
		}
		yield(nil, boom)
	}
	var errs []error
	n := 0
	for env, err := range Generate(src) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if env != nil {
			n++
		}
	}
	if n != 1 || len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Errorf("expected 1 envelope then boom, got %d envelopes and %v", n, errs)
	}
}
