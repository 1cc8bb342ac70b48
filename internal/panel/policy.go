package panel

import (
	"github.com/starford/relyaml/internal/checksum"
	"github.com/starford/relyaml/internal/models"
)

// BuildKey identifies the input of a build: which note was active and
// what its front-matter looked like.
type BuildKey struct {
	Path         string `json:"path"`
	MetadataHash string `json:"metadata_hash"`
}

// KeyOf returns the BuildKey for doc.
func KeyOf(doc models.Document) BuildKey {
	return BuildKey{Path: doc.Path, MetadataHash: checksum.Metadata(doc.Metadata)}
}

// Policy remembers the last build and answers whether an event needs a new one.
type Policy struct {
	last  BuildKey
	built bool
}

// Built reports whether any build has been recorded since the last Reset.
func (p *Policy) Built() bool { return p.built }

// Last returns the key of the most recent build.
func (p *Policy) Last() BuildKey { return p.last }

// Record marks k as built.
func (p *Policy) Record(k BuildKey) {
	p.last = k
	p.built = true
}

// Reset forgets the last build.
func (p *Policy) Reset() {
	p.last = BuildKey{}
	p.built = false
}

// Stale reports whether k differs from the last build.
func (p *Policy) Stale(k BuildKey) bool {
	return !p.built || p.last != k
}

// Decision is the outcome of applying the policy to one event.
type Decision int

const (
	Skip Decision = iota
	Build
	Clear
)

func (d Decision) String() string {
	switch d {
	case Build:
		return "build"
	case Clear:
		return "clear"
	default:
		return "skip"
	}
}

// State is the panel state the policy decides on.
type State struct {
	Active string
	Height int
}

// Visible reports whether the panel takes up any room.
func (s State) Visible() bool { return s.Height > 0 }

// Decide applies ev to st and returns the updated state and what to do.
// For metadata events resolved is the freshly resolved document, or nil
// when it could not be loaded.
func (p *Policy) Decide(st State, ev Event, resolved *models.Document) (State, Decision) {
	switch ev.Kind {
	case KindShown:
		st.Height = ev.Height
		if st.Active == "" || p.built {
			return st, Skip
		}
		return st, Build

	case KindOpened:
		st.Active = ev.Path
		if st.Active == "" {
			return st, Skip
		}
		return st, Build

	case KindMetadataResolved:
		if st.Active == "" || !st.Visible() || ev.Path != st.Active || resolved == nil {
			return st, Skip
		}
		if !p.Stale(KeyOf(*resolved)) {
			return st, Skip
		}
		return st, Build

	case KindLayoutChanged:
		st.Height = ev.Height
		if st.Active == "" || !st.Visible() {
			return st, Skip
		}
		return st, Build

	case KindDeleted:
		if st.Active == "" || ev.Path != st.Active {
			return st, Skip
		}
		st.Active = ""
		return st, Clear
	}
	return st, Skip
}
