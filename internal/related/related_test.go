package related

import (
	"reflect"
	"testing"
	"time"

	"github.com/starford/relyaml/internal/models"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		t.Fatalf("bad fixture time %q: %v", s, err)
	}
	return ts
}

func note(t *testing.T, path, created, modified string, md models.Metadata) models.Document {
	t.Helper()
	return models.Document{
		Path:       path,
		Name:       models.DisplayName(path),
		Metadata:   md,
		CreatedAt:  at(t, created),
		ModifiedAt: at(t, modified),
	}
}

func paths(docs []models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Path
	}
	return out
}

func findGroup(t *testing.T, res Result, key, value string) Group {
	t.Helper()
	for _, g := range res.Groups {
		if g.Key == key && g.Value == value {
			return g
		}
	}
	t.Fatalf("no group (%s, %s) in %+v", key, value, res.Groups)
	return Group{}
}

func groupKeys(res Result) [][2]string {
	out := make([][2]string, len(res.Groups))
	for i, g := range res.Groups {
		out[i] = [2]string{g.Key, g.Value}
	}
	return out
}

func TestCompute_Scenario(t *testing.T) {
	n1 := note(t, "n1.md", "2024-01-01 09:00", "2024-02-01 10:00", models.Metadata{
		{Key: "tags", Value: models.Sequence("x", "y")},
	})
	n2 := note(t, "n2.md", "2024-01-01 18:00", "2024-03-01 10:00", models.Metadata{
		{Key: "tags", Value: models.Scalar("x")},
	})
	n3 := note(t, "n3.md", "2023-05-05 10:00", "2024-02-01 23:00", models.Metadata{
		{Key: "tags", Value: models.Sequence("y", "z")},
	})
	n4 := note(t, "n4.md", "2024-01-01 00:00", "2024-04-04 10:00", nil)

	res := New(WithLocation(time.UTC)).Compute(n1, []models.Document{n1, n2, n3, n4})

	want := [][2]string{
		{"tags", "x"},
		{"tags", "y"},
		{KeyDateCreated, "2024-01-01"},
		{KeyDateModified, "2024-02-01"},
	}
	if got := groupKeys(res); !reflect.DeepEqual(got, want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}

	if got := paths(findGroup(t, res, "tags", "x").Documents); !reflect.DeepEqual(got, []string{"n1.md", "n2.md"}) {
		t.Errorf("tags=x -> %v", got)
	}
	if got := paths(findGroup(t, res, "tags", "y").Documents); !reflect.DeepEqual(got, []string{"n1.md", "n3.md"}) {
		t.Errorf("tags=y -> %v", got)
	}
	created := findGroup(t, res, KeyDateCreated, "2024-01-01")
	if !created.Synthetic {
		t.Error("date created group should be synthetic")
	}
	if got := paths(created.Documents); !reflect.DeepEqual(got, []string{"n1.md", "n2.md", "n4.md"}) {
		t.Errorf("date created -> %v", got)
	}
	if got := paths(findGroup(t, res, KeyDateModified, "2024-02-01").Documents); !reflect.DeepEqual(got, []string{"n1.md", "n3.md"}) {
		t.Errorf("date modified -> %v", got)
	}

	for _, g := range res.Groups {
		if g.Key != "tags" {
			continue
		}
		for _, d := range g.Documents {
			if d.Path == "n4.md" {
				t.Errorf("n4 has no metadata but appears in %s=%s", g.Key, g.Value)
			}
		}
	}
}

func TestCompute_CaseInsensitive(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "project", Value: models.Scalar("Project")},
	})
	b := note(t, "b.md", "2024-01-02 00:00", "2024-01-02 00:00", models.Metadata{
		{Key: "project", Value: models.Scalar("project")},
	})
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a, b})

	g := findGroup(t, res, "project", "Project")
	if got := paths(g.Documents); !reflect.DeepEqual(got, []string{"a.md", "b.md"}) {
		t.Errorf("project -> %v, want [a.md b.md]", got)
	}
}

func TestCompute_ArrayDedupe(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "tags", Value: models.Sequence("a", "b", "a", "B")},
	})
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a})

	var tagGroups []string
	for _, g := range res.Groups {
		if g.Key == "tags" {
			tagGroups = append(tagGroups, g.Value)
			if len(g.Documents) != 1 {
				t.Errorf("tags=%s has %d documents, want 1", g.Value, len(g.Documents))
			}
		}
	}
	if !reflect.DeepEqual(tagGroups, []string{"a", "b"}) {
		t.Errorf("tag groups = %v, want [a b]", tagGroups)
	}
}

func TestCompute_PositionNeverSurfaced(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "position", Value: models.Scalar("top")},
		{Key: "status", Value: models.Scalar("open")},
	})
	b := note(t, "b.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "position", Value: models.Scalar("top")},
	})
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a, b})

	for _, g := range res.Groups {
		if g.Key == KeyPosition {
			t.Fatalf("position surfaced as group %+v", g)
		}
	}
	if _, ok := res.Other[KeyPosition]; ok {
		t.Error("position should not be compared at all")
	}
	findGroup(t, res, "status", "open")
}

func TestCompute_SelfInclusion(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "status", Value: models.Scalar("done")},
	})
	b := note(t, "b.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "status", Value: models.Scalar("done")},
	})
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a, b})

	if got := paths(findGroup(t, res, "status", "done").Documents); !reflect.DeepEqual(got, []string{"a.md", "b.md"}) {
		t.Errorf("status=done -> %v, want the active note included", got)
	}
}

func TestCompute_SyntheticTemporalFallback(t *testing.T) {
	a := note(t, "a.md", "2024-06-10 08:00", "2024-06-11 08:00", nil)
	b := note(t, "b.md", "2024-06-10 20:00", "2024-07-01 08:00", nil)
	c := note(t, "c.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "Date Created", Value: models.Scalar("2024-06-10")},
	})
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a, b, c})

	g := findGroup(t, res, KeyDateCreated, "2024-06-10")
	if got := paths(g.Documents); !reflect.DeepEqual(got, []string{"a.md", "b.md", "c.md"}) {
		t.Errorf("date created -> %v", got)
	}
	findGroup(t, res, KeyDateModified, "2024-06-11")
}

func TestCompute_RealDateFieldAppendsFileTimestamp(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 12:00", "2024-01-05 12:00", models.Metadata{
		{Key: "date created", Value: models.Scalar("2023-12-25")},
	})
	b := note(t, "b.md", "2022-01-01 00:00", "2022-01-01 00:00", models.Metadata{
		{Key: "date created", Value: models.Scalar("December 25, 2023")},
	})
	c := note(t, "c.md", "2024-01-01 03:00", "2024-02-01 00:00", nil)
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a, b, c})

	want := [][2]string{
		{"date created", "2023-12-25"},
		{"date created", "2024-01-01"},
		{KeyDateModified, "2024-01-05"},
	}
	if got := groupKeys(res); !reflect.DeepEqual(got, want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
	if findGroup(t, res, "date created", "2023-12-25").Synthetic {
		t.Error("a real date field must not be marked synthetic")
	}
	if got := paths(findGroup(t, res, "date created", "2023-12-25").Documents); !reflect.DeepEqual(got, []string{"a.md", "b.md"}) {
		t.Errorf("2023-12-25 -> %v", got)
	}
	if got := paths(findGroup(t, res, "date created", "2024-01-01").Documents); !reflect.DeepEqual(got, []string{"c.md"}) {
		t.Errorf("2024-01-01 -> %v", got)
	}
}

func TestCompute_UpdatedAliasSuppressesSyntheticModified(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-02 00:00", models.Metadata{
		{Key: "Date Updated", Value: models.Scalar("2024-01-02")},
	})
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a})
	for _, g := range res.Groups {
		if g.Key == KeyDateModified {
			t.Fatalf("unexpected synthetic %q group: %+v", KeyDateModified, g)
		}
	}
	findGroup(t, res, "Date Updated", "2024-01-02")
}

func TestCompute_MalformedDateKeptVerbatim(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "date modified", Value: models.Scalar("someday")},
	})
	b := note(t, "b.md", "2024-03-01 00:00", "2024-03-01 00:00", models.Metadata{
		{Key: "date modified", Value: models.Scalar("Someday")},
	})
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a, b})

	if got := paths(findGroup(t, res, "date modified", "someday").Documents); !reflect.DeepEqual(got, []string{"a.md", "b.md"}) {
		t.Errorf("someday -> %v", got)
	}
	if got := paths(findGroup(t, res, "date modified", "2024-01-01").Documents); len(got) != 0 {
		t.Errorf("2024-01-01 -> %v, want no matches", got)
	}
}

func TestCompute_DifferentMalformedDatesDoNotMatch(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "date created", Value: models.Scalar("a,b")},
	})
	b := note(t, "b.md", "2024-03-01 00:00", "2024-03-01 00:00", models.Metadata{
		{Key: "date created", Value: models.Scalar("1/")},
	})
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a, b})

	if got := paths(findGroup(t, res, "date created", "a,b").Documents); !reflect.DeepEqual(got, []string{"a.md"}) {
		t.Errorf("a,b -> %v, want [a.md]", got)
	}
	for _, g := range res.Groups {
		if g.Value == "0000-01-01" {
			t.Errorf("malformed date normalized to %q", g.Value)
		}
	}
}

func TestCompute_LocationAffectsDay(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 23:30", "2024-01-01 23:30", nil)
	plus2 := time.FixedZone("UTC+2", 2*60*60)

	res := New(WithLocation(plus2)).Compute(a, []models.Document{a})
	findGroup(t, res, KeyDateCreated, "2024-01-02")

	res = New(WithLocation(time.UTC)).Compute(a, []models.Document{a})
	findGroup(t, res, KeyDateCreated, "2024-01-01")
}

func TestCompute_NullAndMissingPlainValuesSkipped(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "empty", Value: models.Null()},
		{Key: "kind", Value: models.Scalar("book")},
	})
	b := note(t, "b.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "kind", Value: models.Null()},
	})
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a, b})

	for _, g := range res.Groups {
		if g.Key == "empty" {
			t.Errorf("null field produced group %+v", g)
		}
	}
	if got := paths(findGroup(t, res, "kind", "book").Documents); !reflect.DeepEqual(got, []string{"a.md"}) {
		t.Errorf("kind=book -> %v", got)
	}
}

func TestCompute_OtherAccumulator(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "tags", Value: models.Scalar("x")},
	})
	b := note(t, "b.md", "2024-01-01 00:00", "2024-01-01 00:00", models.Metadata{
		{Key: "tags", Value: models.Sequence("x", "z")},
	})
	res := New(WithLocation(time.UTC)).Compute(a, []models.Document{a, b})

	want := []Unmatched{{Value: "z", Path: "b.md"}}
	if got := res.Other["tags"]; !reflect.DeepEqual(got, want) {
		t.Errorf("other[tags] = %+v, want %+v", got, want)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-03 00:00", models.Metadata{
		{Key: "tags", Value: models.Sequence("q", "r")},
		{Key: "status", Value: models.Scalar("open")},
	})
	b := note(t, "b.md", "2024-01-01 00:00", "2024-01-02 00:00", models.Metadata{
		{Key: "tags", Value: models.Sequence("r")},
		{Key: "status", Value: models.Scalar("OPEN")},
	})
	corpus := []models.Document{b, a}
	e := New(WithLocation(time.UTC))

	first := e.Compute(a, corpus)
	second := e.Compute(a, corpus)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated compute differs:\n%+v\n%+v", first, second)
	}
}

func TestCompute_DoesNotMutateInputs(t *testing.T) {
	md := models.Metadata{
		{Key: "tags", Value: models.Sequence("a", "A")},
		{Key: "date created", Value: models.Scalar("March 3, 2024")},
	}
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-01 00:00", md)
	snapshot := models.Metadata{
		{Key: "tags", Value: models.Sequence("a", "A")},
		{Key: "date created", Value: models.Scalar("March 3, 2024")},
	}

	_ = New(WithLocation(time.UTC)).Compute(a, []models.Document{a})
	if !reflect.DeepEqual(a.Metadata, snapshot) {
		t.Errorf("metadata mutated: %+v", a.Metadata)
	}
}

func TestCompute_EmptyCorpus(t *testing.T) {
	a := note(t, "a.md", "2024-01-01 00:00", "2024-01-01 00:00", nil)
	res := New(WithLocation(time.UTC)).Compute(a, nil)
	if len(res.Groups) != 2 {
		t.Fatalf("groups = %v, want the two synthetic date groups", groupKeys(res))
	}
	for _, g := range res.Groups {
		if g.Documents == nil || len(g.Documents) != 0 {
			t.Errorf("group %s=%s documents = %v, want empty", g.Key, g.Value, g.Documents)
		}
	}
}
