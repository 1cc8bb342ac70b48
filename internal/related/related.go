// Package related correlates one note's front-matter with the rest of the
// vault: for every value of every field of the active note it collects the
// notes that carry the same value under the same field.
//
// Creation and modification dates are always comparable. A note without a
// "date created" or "date modified" field gets its file-system timestamp
// in place of the missing value, formatted as YYYY-MM-DD.
package related

import (
	"time"

	"github.com/starford/relyaml/internal/models"
)

// Group is the set of notes sharing Value under Key with the active note.
type Group struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	// Synthetic is set when Key is not in the active note's front-matter
	// and was derived from its file timestamps.
	Synthetic bool              `json:"synthetic,omitempty"`
	Documents []models.Document `json:"documents"`
}

// Unmatched records a value a note holds under a key that did not match
// the group seed it was compared with.
type Unmatched struct {
	Value string `json:"value"`
	Path  string `json:"path"`
}

// Result is the output of one correlation pass.
type Result struct {
	Path   string  `json:"path"`
	Groups []Group `json:"groups"`
	// Other holds, per key, every non-matching comparison of the pass.
	// Nothing renders it today.
	Other map[string][]Unmatched `json:"other,omitempty"`
}

// Engine computes related groups. The zero value is not usable; call New.
type Engine struct {
	loc *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the time zone used to render dates. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// New returns an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute correlates active against corpus using the local time zone.
func Compute(active models.Document, corpus []models.Document) Result {
	return New().Compute(active, corpus)
}

type effectiveKey struct {
	name      string
	class     fieldClass
	synthetic bool
}

// Compute correlates active against corpus. It never fails and does not
// modify its inputs; corpus may contain active itself.
func (e *Engine) Compute(active models.Document, corpus []models.Document) Result {
	res := Result{
		Path:   active.Path,
		Groups: []Group{},
		Other:  map[string][]Unmatched{},
	}

	for _, key := range effectiveKeys(active.Metadata) {
		seeds := dedupeFold(e.activeValues(active, key))
		if len(seeds) == 0 {
			continue
		}

		// Each corpus note is resolved once per key, not once per seed.
		resolved := make([][]string, len(corpus))
		for i, doc := range corpus {
			resolved[i] = dedupeFold(e.corpusValues(doc, key))
		}

		for _, seed := range seeds {
			g := Group{
				Key:       key.name,
				Value:     seed,
				Synthetic: key.synthetic,
				Documents: []models.Document{},
			}
			want := foldKey(seed)
			for i, doc := range corpus {
				for _, v := range resolved[i] {
					if foldKey(v) == want {
						g.Documents = append(g.Documents, doc)
						continue
					}
					res.Other[key.name] = append(res.Other[key.name], Unmatched{Value: v, Path: doc.Path})
				}
			}
			res.Groups = append(res.Groups, g)
		}
	}

	return res
}

// effectiveKeys lists the active note's fields in order, without position,
// followed by the synthetic date fields it lacks.
func effectiveKeys(md models.Metadata) []effectiveKey {
	keys := make([]effectiveKey, 0, len(md)+2)
	var hasCreated, hasModified bool
	for _, f := range md {
		class := classify(f.Key)
		switch class {
		case classCreated:
			hasCreated = true
		case classModified:
			hasModified = true
		}
		if f.Key == KeyPosition {
			continue
		}
		keys = append(keys, effectiveKey{name: f.Key, class: class})
	}
	if !hasCreated {
		keys = append(keys, effectiveKey{name: KeyDateCreated, class: classCreated, synthetic: true})
	}
	if !hasModified {
		keys = append(keys, effectiveKey{name: KeyDateModified, class: classModified, synthetic: true})
	}
	return keys
}

// activeValues resolves the seeds of one key. A real date field keeps its
// own values and additionally gets the file timestamp appended.
func (e *Engine) activeValues(doc models.Document, key effectiveKey) []string {
	if key.synthetic {
		return []string{e.timestamp(doc, key.class)}
	}
	v, _ := doc.Metadata.Get(key.name)
	values := normalize(v.Strings(), key.class, e.loc)
	if key.class.temporal() {
		values = append(values, e.timestamp(doc, key.class))
	}
	return values
}

// corpusValues resolves what a corpus note holds for key. Date fields fall
// back to the note's own timestamp; plain fields have no fallback.
func (e *Engine) corpusValues(doc models.Document, key effectiveKey) []string {
	var raw []string
	if key.class.temporal() {
		for _, f := range doc.Metadata {
			if classify(f.Key) == key.class {
				raw = f.Value.Strings()
				break
			}
		}
		if len(raw) == 0 {
			return []string{e.timestamp(doc, key.class)}
		}
		return normalize(raw, key.class, e.loc)
	}
	v, ok := doc.Metadata.Get(key.name)
	if !ok || v.IsNull() {
		return nil
	}
	return v.Strings()
}

func (e *Engine) timestamp(doc models.Document, class fieldClass) string {
	if class == classCreated {
		return formatDate(doc.CreatedAt, e.loc)
	}
	return formatDate(doc.ModifiedAt, e.loc)
}
