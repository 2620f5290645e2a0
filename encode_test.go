package ainb

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// minimalAINB builds a small but structurally representative AINB value,
// exercising a property, a node-owned input/output pair, an attachment, a
// blackboard param, and a direct-source cross-node reference.
func minimalAINB(version uint32) *AINB {
	root := &Node{
		Type:  NodeElementSequential,
		Index: 0,
		Name:  "Root",
		Flags: nodeFlagRootNode,
		Attachments: []Attachment{
			{
				Name: "EventFlag",
				Properties: PropertySet{properties: func() [paramTypeCount][]Property {
					var p [paramTypeCount][]Property
					p[ParamString] = []Property{{Name: "FlagName", Default: ParamValue{Str: "Cleared"}}}
					return p
				}()},
			},
		},
	}
	root.Params.Outputs[ParamInt] = []OutputParam{{Name: "Result"}}

	child := &Node{
		Type:  NodeUserDefined,
		Index: 1,
		Name:  "Child",
	}
	child.Params.Inputs[ParamInt] = []InputParam{
		{
			Name: "Value",
			Source: ParamSource{
				Kind:           SourceDirect,
				SrcNodeIndex:   0,
				SrcOutputIndex: 0,
			},
		},
	}

	bb := &Blackboard{}
	bb.SetParams(BBParamS32, []BBParam{{Name: "Counter", Default: BBParamValue{S32: 3}}})

	return &AINB{
		Version:      version,
		Filename:     "Test.module.ainb",
		Category:     "AI",
		Blackboard:   bb,
		Nodes:        []*Node{root, child},
		MultiSources: nil,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []uint32{0x404, 0x407}

	for _, version := range tests {
		t.Run(versionName(version), func(t *testing.T) {
			want := minimalAINB(version)

			data, err := Encode(want)
			if err != nil {
				t.Fatalf("Encode failed, reason: %v", err)
			}

			got, err := NewBytes(data, nil)
			if err != nil {
				t.Fatalf("NewBytes failed, reason: %v", err)
			}

			if got.Filename != want.Filename {
				t.Errorf("Filename = %q, want %q", got.Filename, want.Filename)
			}
			if got.Category != want.Category {
				t.Errorf("Category = %q, want %q", got.Category, want.Category)
			}
			if len(got.Nodes) != len(want.Nodes) {
				t.Fatalf("got %d nodes, want %d", len(got.Nodes), len(want.Nodes))
			}

			for i := range want.Nodes {
				if got.Nodes[i].Name != want.Nodes[i].Name {
					t.Errorf("node %d Name = %q, want %q", i, got.Nodes[i].Name, want.Nodes[i].Name)
				}
				if got.Nodes[i].Index != int16(i) {
					t.Errorf("node %d Index = %d, want %d", i, got.Nodes[i].Index, i)
				}
			}

			root := got.Nodes[0]
			if len(root.Attachments) != 1 || root.Attachments[0].Name != "EventFlag" {
				t.Fatalf("root attachment not round-tripped:\n%s", spew.Sdump(root.Attachments))
			}
			flagProp := root.Attachments[0].Properties.Properties(ParamString)
			if len(flagProp) != 1 || flagProp[0].Default.Str != "Cleared" {
				t.Fatalf("attachment property not round-tripped:\n%s", spew.Sdump(flagProp))
			}

			child := got.Nodes[1]
			in := child.Params.Inputs[ParamInt]
			if len(in) != 1 {
				t.Fatalf("expected 1 input param, got %d", len(in))
			}
			if in[0].Source.Kind != SourceDirect || in[0].Source.SrcNodeIndex != 0 {
				t.Errorf("input param source = %+v, want Direct from node 0", in[0].Source)
			}

			if got.Blackboard == nil {
				t.Fatal("blackboard not round-tripped")
			}
			counters := got.Blackboard.Params(BBParamS32)
			if len(counters) != 1 || counters[0].Name != "Counter" || counters[0].Default.S32 != 3 {
				t.Errorf("blackboard param = %+v, want Counter=3", counters)
			}
		})
	}
}

func versionName(v uint32) string {
	switch v {
	case 0x404:
		return "v0x404"
	case 0x407:
		return "v0x407"
	default:
		return "unknown"
	}
}

// TestEncodeQueryRegistryRoundTrip checks that a node flagged Is Query gets
// a registry slot the encoder rebuilds, and that a second node's Queries
// list still resolves to the same node index after a round trip.
func TestEncodeQueryRegistryRoundTrip(t *testing.T) {
	target := &Node{Type: NodeUserDefined, Index: 0, Name: "Target", Flags: nodeFlagQuery}
	caller := &Node{Type: NodeUserDefined, Index: 1, Name: "Caller", Queries: []int32{0}}

	a := &AINB{Version: 0x407, Filename: "Query.module.ainb", Category: "Logic", Nodes: []*Node{target, caller}}

	data, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode failed, reason: %v", err)
	}
	got, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}

	if len(got.Nodes[1].Queries) != 1 || got.Nodes[1].Queries[0] != 0 {
		t.Errorf("caller Queries = %v, want [0]", got.Nodes[1].Queries)
	}
}

// TestEncodeTransitionDedup checks that two nodes carrying an identical
// transition still resolve to the same transition value after the
// encoder's deduplicating pass and a decode.
func TestEncodeTransitionDedup(t *testing.T) {
	tr := Transition{Type: TransitionGeneric}

	a := &Node{Type: NodeElementStateEnd, Index: 0, Name: "A"}
	b := &Node{Type: NodeElementStateEnd, Index: 1, Name: "B"}
	a.plugs[PlugTransition] = []Plug{TransitionPlug{plugBase: plugBase{NodeIndex: -1}, Transition: tr}}
	b.plugs[PlugTransition] = []Plug{TransitionPlug{plugBase: plugBase{NodeIndex: -1}, Transition: tr}}

	ainb := &AINB{Version: 0x407, Filename: "Trans.module.ainb", Category: "Sequence", Nodes: []*Node{a, b}}

	data, err := Encode(ainb)
	if err != nil {
		t.Fatalf("Encode failed, reason: %v", err)
	}
	got, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}

	pa := got.Nodes[0].Plugs(PlugTransition)
	pb := got.Nodes[1].Plugs(PlugTransition)
	if len(pa) != 1 || len(pb) != 1 {
		t.Fatalf("expected 1 transition plug per node, got %d and %d", len(pa), len(pb))
	}
	ta := pa[0].(TransitionPlug).Transition
	tb := pb[0].(TransitionPlug).Transition
	if ta != tb {
		t.Errorf("transitions diverged after round trip: %+v vs %+v", ta, tb)
	}
	if ta.Type != TransitionGeneric {
		t.Errorf("transition Type = %v, want TransitionGeneric", ta.Type)
	}
}
