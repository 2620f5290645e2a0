package ainb

import "fmt"

// NodeType enumerates the node kinds a file can contain. The numeric
// values are the ones actually emitted by retail titles; an unrecognized
// but otherwise well-formed value round-trips through NodeType's numeric
// underlying type instead of failing decode, since newer titles are free
// to introduce kinds this port has never seen.
type NodeType int32

const (
	NodeUserDefined                NodeType = 0
	NodeElementS32Selector         NodeType = 1
	NodeElementSequential          NodeType = 2
	NodeElementSimultaneous        NodeType = 3
	NodeElementF32Selector         NodeType = 4
	NodeElementStringSelector      NodeType = 5
	NodeElementRandomSelector      NodeType = 6
	NodeElementBoolSelector        NodeType = 7
	NodeElementFork                NodeType = 8
	NodeElementJoin                NodeType = 9
	NodeElementAlert               NodeType = 10
	NodeElementExpression          NodeType = 20
	NodeElementModuleIFInputS32    NodeType = 100
	NodeElementModuleIFInputF32    NodeType = 101
	NodeElementModuleIFInputVec3f  NodeType = 102
	NodeElementModuleIFInputString NodeType = 103
	NodeElementModuleIFInputBool   NodeType = 104
	NodeElementModuleIFInputPtr    NodeType = 105
	NodeElementModuleIFOutputS32   NodeType = 200
	NodeElementModuleIFOutputF32   NodeType = 201
	NodeElementModuleIFOutputVec3f NodeType = 202
	NodeElementModuleIFOutputStr   NodeType = 203
	NodeElementModuleIFOutputBool  NodeType = 204
	NodeElementModuleIFOutputPtr   NodeType = 205
	NodeElementModuleIFChild       NodeType = 300
	NodeElementStateEnd            NodeType = 400
	NodeElementSplitTiming         NodeType = 500
)

var nodeTypeNames = map[NodeType]string{
	NodeUserDefined:                "UserDefined",
	NodeElementS32Selector:         "Element_S32Selector",
	NodeElementSequential:          "Element_Sequential",
	NodeElementSimultaneous:        "Element_Simultaneous",
	NodeElementF32Selector:         "Element_F32Selector",
	NodeElementStringSelector:      "Element_StringSelector",
	NodeElementRandomSelector:      "Element_RandomSelector",
	NodeElementBoolSelector:        "Element_BoolSelector",
	NodeElementFork:                "Element_Fork",
	NodeElementJoin:                "Element_Join",
	NodeElementAlert:               "Element_Alert",
	NodeElementExpression:          "Element_Expression",
	NodeElementModuleIFInputS32:    "Element_ModuleIF_Input_S32",
	NodeElementModuleIFInputF32:    "Element_ModuleIF_Input_F32",
	NodeElementModuleIFInputVec3f:  "Element_ModuleIF_Input_Vec3f",
	NodeElementModuleIFInputString: "Element_ModuleIF_Input_String",
	NodeElementModuleIFInputBool:   "Element_ModuleIF_Input_Bool",
	NodeElementModuleIFInputPtr:    "Element_ModuleIF_Input_Ptr",
	NodeElementModuleIFOutputS32:   "Element_ModuleIF_Output_S32",
	NodeElementModuleIFOutputF32:   "Element_ModuleIF_Output_F32",
	NodeElementModuleIFOutputVec3f: "Element_ModuleIF_Output_Vec3f",
	NodeElementModuleIFOutputStr:   "Element_ModuleIF_Output_String",
	NodeElementModuleIFOutputBool:  "Element_ModuleIF_Output_Bool",
	NodeElementModuleIFOutputPtr:   "Element_ModuleIF_Output_Ptr",
	NodeElementModuleIFChild:       "Element_ModuleIF_Child",
	NodeElementStateEnd:            "Element_StateEnd",
	NodeElementSplitTiming:         "Element_SplitTiming",
}

func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("NodeType(%d)", int32(t))
}

// NodeFlag is the bitfield overlaid on a node's single flag byte.
type NodeFlag uint8

const (
	nodeFlagQuery          = 1 << 0
	nodeFlagModule         = 1 << 1
	nodeFlagRootNode       = 1 << 2
	nodeFlagMultiParamType2 = 1 << 3
)

func (f NodeFlag) IsQuery() bool          { return f&nodeFlagQuery != 0 }
func (f NodeFlag) IsModule() bool         { return f&nodeFlagModule != 0 }
func (f NodeFlag) IsRootNode() bool       { return f&nodeFlagRootNode != 0 }
func (f NodeFlag) UseMultiParamType2() bool { return f&nodeFlagMultiParamType2 != 0 }

// Names returns the flag's set bits as the JSON view's flag-name list.
func (f NodeFlag) Names() []string {
	var out []string
	if f.IsQuery() {
		out = append(out, "Is Query")
	}
	if f.IsModule() {
		out = append(out, "Is Module")
	}
	if f.IsRootNode() {
		out = append(out, "Is Root Node")
	}
	if f.UseMultiParamType2() {
		out = append(out, "Use MultiParam Type 2")
	}
	return out
}

// nodeFlagFromNames rebuilds a NodeFlag from its JSON flag-name list.
func nodeFlagFromNames(names []string) NodeFlag {
	var f NodeFlag
	for _, n := range names {
		switch n {
		case "Is Query":
			f |= nodeFlagQuery
		case "Is Module":
			f |= nodeFlagModule
		case "Is Root Node":
			f |= nodeFlagRootNode
		case "Use MultiParam Type 2":
			f |= nodeFlagMultiParamType2
		}
	}
	return f
}

// Node is the central aggregator: every other table is ultimately sliced
// into a node's fields via (base_index, count) pairs recorded in its
// on-disk record.
type Node struct {
	Type  NodeType
	Index int16
	Name  string
	GUID  [16]byte
	Flags NodeFlag

	// Queries holds canonical node indices after the post-decode
	// fix-up pass; during decode it temporarily holds indices into the
	// query-node registry.
	Queries []int32

	Attachments []Attachment
	Properties  PropertySet
	Params      ParamSet
	Actions     []Action
	StateInfo   *StateInfo

	plugs [plugTypeCount][]Plug
}

// Plugs returns the ordered plug list for slot t.
func (n *Node) Plugs(t PlugType) []Plug { return n.plugs[t] }

type plugSlotInfo struct {
	count     uint8
	baseIndex uint8
}

// readNode decodes one node record per §4.7. attachments/properties/
// ioParams/transitions/modules are the file-level tables already decoded
// by the container; queries is the not-yet-fixed-up query registry list;
// actions is keyed by node index.
func readNode(r *Reader, version uint32, index int, attachments []Attachment, attachmentIndices []uint32,
	properties *PropertySet, ioParams *ParamSet, transitions []Transition, queries []int32,
	actions map[int32][]Action, modules []Module, sink DiagnosticSink) (*Node, error) {

	kind, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	node := &Node{Type: NodeType(kind)}

	nodeIndex, err := r.ReadS16()
	if err != nil {
		return nil, err
	}
	node.Index = nodeIndex
	if int(nodeIndex) != index {
		warnInconsistentNodeIndex(sink, int64(r.Tell()), int(nodeIndex), index)
	}

	attachmentCount, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	flags, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	node.Flags = NodeFlag(flags)
	if _, err := r.ReadU8(); err != nil { // padding
		return nil, err
	}
	name, err := r.ReadStringOffset()
	if err != nil {
		return nil, err
	}
	node.Name = name
	if node.Flags.IsModule() && !hasModule(modules, node.Name) {
		warnMissingModule(sink, node.Name)
	}

	if version >= 0x407 {
		if _, err := r.ReadU32(); err != nil { // murmur3 hash of the node name
			return nil, err
		}
	}
	if _, err := r.ReadU32(); err != nil { // unknown dword
		return nil, err
	}
	nodeParamOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadU16(); err != nil { // expression count (informational)
		return nil, err
	}
	if _, err := r.ReadU16(); err != nil { // expression I/O memory size (informational)
		return nil, err
	}
	if _, err := r.ReadU16(); err != nil { // multi-param count (informational)
		return nil, err
	}
	if _, err := r.ReadU16(); err != nil { // padding
		return nil, err
	}
	baseAttachmentIndex, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	baseQueryIndex, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	queryCount, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	stateInfoOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if version < 0x407 {
		err := r.TempSeek(int(stateInfoOffset), func() error {
			s, err := readStateInfo(r)
			if err != nil {
				return err
			}
			node.StateInfo = &s
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else if stateInfoOffset != 0 {
		warnUnexpectedStateInfo(sink, version)
	}

	guid, err := r.ReadGUID()
	if err != nil {
		return nil, err
	}
	node.GUID = guid

	if int(baseQueryIndex)+int(queryCount) > len(queries) {
		return nil, outOfBounds(int(baseQueryIndex), int(queryCount), len(queries))
	}
	node.Queries = append([]int32(nil), queries[baseQueryIndex:int(baseQueryIndex)+int(queryCount)]...)

	if int(baseAttachmentIndex)+int(attachmentCount) > len(attachmentIndices) {
		return nil, outOfBounds(int(baseAttachmentIndex), int(attachmentCount), len(attachmentIndices))
	}
	node.Attachments = make([]Attachment, attachmentCount)
	for i := range node.Attachments {
		node.Attachments[i] = attachments[attachmentIndices[int(baseAttachmentIndex)+i]]
	}

	err = r.TempSeek(int(nodeParamOffset), func() error {
		for t := 0; t < paramTypeCount; t++ {
			rng, err := readParamRange(r)
			if err != nil {
				return err
			}
			if int(rng.baseIndex)+int(rng.count) > len(properties.properties[t]) {
				return outOfBounds(int(rng.baseIndex), int(rng.count), len(properties.properties[t]))
			}
			node.Properties.properties[t] = append([]Property(nil), properties.properties[t][rng.baseIndex:rng.baseIndex+rng.count]...)
		}

		for t := 0; t < paramTypeCount; t++ {
			inRng, err := readParamRange(r)
			if err != nil {
				return err
			}
			if int(inRng.baseIndex)+int(inRng.count) > len(ioParams.Inputs[t]) {
				return outOfBounds(int(inRng.baseIndex), int(inRng.count), len(ioParams.Inputs[t]))
			}
			node.Params.Inputs[t] = append([]InputParam(nil), ioParams.Inputs[t][inRng.baseIndex:inRng.baseIndex+inRng.count]...)

			outRng, err := readParamRange(r)
			if err != nil {
				return err
			}
			if int(outRng.baseIndex)+int(outRng.count) > len(ioParams.Outputs[t]) {
				return outOfBounds(int(outRng.baseIndex), int(outRng.count), len(ioParams.Outputs[t]))
			}
			node.Params.Outputs[t] = append([]OutputParam(nil), ioParams.Outputs[t][outRng.baseIndex:outRng.baseIndex+outRng.count]...)
		}

		var slotInfo [plugTypeCount]plugSlotInfo
		for i := range slotInfo {
			count, err := r.ReadU8()
			if err != nil {
				return err
			}
			base, err := r.ReadU8()
			if err != nil {
				return err
			}
			slotInfo[i] = plugSlotInfo{count: count, baseIndex: base}
		}
		plugBlockBase := r.Tell()

		for slot := 0; slot < plugTypeCount; slot++ {
			info := slotInfo[slot]
			if info.count == 0 {
				continue
			}
			var offsets []uint32
			err := r.TempSeek(plugBlockBase+int(info.baseIndex)*4, func() error {
				offsets = make([]uint32, info.count)
				for i := range offsets {
					off, err := r.ReadU32()
					if err != nil {
						return err
					}
					offsets[i] = off
				}
				return nil
			})
			if err != nil {
				return err
			}
			plugs := make([]Plug, len(offsets))
			for i, off := range offsets {
				p, err := readPlug(r, int(off), PlugType(slot), node, i == len(offsets)-1, transitions, version)
				if err != nil {
					return err
				}
				plugs[i] = p
			}
			node.plugs[slot] = plugs
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	node.Actions = actions[int32(node.Index)]

	return node, nil
}
