package ainb

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestJSONRoundTrip checks that marshaling an AINB to its JSON interchange
// form and back keeps the filename, category and node names, and that the
// result still encodes with its direct input source intact.
func TestJSONRoundTrip(t *testing.T) {
	want := minimalAINB(0x407)

	data, err := want.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed, reason: %v", err)
	}

	got := &AINB{}
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON failed, reason: %v", err)
	}

	opts := cmp.AllowUnexported(PropertySet{}, Node{})
	if diff := cmp.Diff(want.Filename, got.Filename); diff != "" {
		t.Errorf("Filename mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Category, got.Category); diff != "" {
		t.Errorf("Category mismatch (-want +got):\n%s", diff)
	}
	if len(got.Nodes) != len(want.Nodes) {
		t.Fatalf("got %d nodes, want %d", len(got.Nodes), len(want.Nodes))
	}
	for i := range want.Nodes {
		if diff := cmp.Diff(want.Nodes[i].Name, got.Nodes[i].Name, opts); diff != "" {
			t.Errorf("node %d name mismatch (-want +got):\n%s", i, diff)
		}
	}

	// A JSON-sourced AINB never populates ParamSource.Flags directly (only
	// Kind); Encode must still derive the correct discriminant bits.
	child := got.Nodes[1]
	in := child.Params.Inputs[ParamInt]
	if len(in) != 1 {
		t.Fatalf("expected 1 input param, got %d", len(in))
	}
	if in[0].Source.Flags.Raw != 0 {
		t.Fatalf("expected JSON-sourced Flags to be zero before encode, got %#x", in[0].Source.Flags.Raw)
	}

	encoded, err := Encode(got)
	if err != nil {
		t.Fatalf("Encode of JSON-sourced AINB failed, reason: %v", err)
	}
	redecoded, err := NewBytes(encoded, nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	redecodedIn := redecoded.Nodes[1].Params.Inputs[ParamInt]
	if len(redecodedIn) != 1 || redecodedIn[0].Source.Kind != SourceDirect {
		t.Errorf("source kind lost across JSON->Encode round trip: %+v", redecodedIn)
	}
}
