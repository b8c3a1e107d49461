package patchstream

import (
	"encoding/json"

	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/signadot/livequery/gql"
	"github.com/signadot/livequery/libdiff"
)

// Envelope is one element of a patch stream.
//
// Revision 1 carries Data, later revisions carry Patch, and Revision 0 is a
// non-live result.  HasData and HasPatch distinguish an explicit null from
// an absent member.
type Envelope struct {
	Data       any
	Patch      libdiff.Delta
	Revision   int
	Errors     []gqlerrors.FormattedError
	Extensions map[string]any

	HasData  bool
	HasPatch bool
}

type wireEnvelope struct {
	Data       json.RawMessage            `json:"data,omitempty"`
	Patch      json.RawMessage            `json:"patch,omitempty"`
	Revision   int                        `json:"revision,omitempty"`
	Errors     []gqlerrors.FormattedError `json:"errors,omitempty"`
	Extensions map[string]any             `json:"extensions,omitempty"`
}

var jsonNull = json.RawMessage("null")

func (e *Envelope) hasData() bool  { return e.HasData || e.Data != nil }
func (e *Envelope) hasPatch() bool { return e.HasPatch || e.Patch != nil }

func (e *Envelope) MarshalJSON() ([]byte, error) {
	w := wireEnvelope{
		Revision:   e.Revision,
		Errors:     e.Errors,
		Extensions: e.Extensions,
	}
	var err error
	if e.hasData() {
		if w.Data, err = json.Marshal(e.Data); err != nil {
			return nil, err
		}
	}
	if e.hasPatch() {
		if w.Patch, err = json.Marshal(e.Patch); err != nil {
			return nil, err
		}
	}
	return json.Marshal(&w)
}

func (e *Envelope) UnmarshalJSON(d []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(d, &w); err != nil {
		return err
	}
	*e = Envelope{
		Revision:   w.Revision,
		Errors:     w.Errors,
		Extensions: w.Extensions,
	}
	if w.Data != nil {
		e.HasData = true
		if err := json.Unmarshal(w.Data, &e.Data); err != nil {
			return err
		}
	}
	if w.Patch != nil {
		e.HasPatch = true
		if err := json.Unmarshal(w.Patch, &e.Patch); err != nil {
			return err
		}
	}
	return nil
}

func passThrough(r *gql.Result) *Envelope {
	return &Envelope{
		Data:       r.Data,
		HasData:    r.Data != nil,
		Errors:     r.Errors,
		Extensions: r.Extensions,
	}
}
