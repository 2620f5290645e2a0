package ainb

import "fmt"

// Encode serialises a into the on-disk container format. The physical
// layout it produces need not match the byte positions of any original
// file the AINB was decoded from: every section is addressed through the
// same offset and derived-length conventions decode relies on, so the
// result decodes back to an equal value regardless of where Encode chose
// to place things.
func Encode(a *AINB) ([]byte, error) {
	e := &encoder{a: a, pool: NewStringPool(), w: NewWriter()}
	return e.run()
}

type encoder struct {
	a    *AINB
	pool *StringPool
	w    *Writer

	// flattened global tables, built once in plan() and then only read
	globalProps  [paramTypeCount][]Property
	globalInputs [paramTypeCount][]InputParam
	globalOutput [paramTypeCount][]OutputParam
	flatAtt      []Attachment

	attPropBase  []map[ParamType]uint32 // per attachment, per type base index
	nodePropBase []map[ParamType]uint32
	nodeInBase   []map[ParamType]uint32
	nodeOutBase  []map[ParamType]uint32
	nodeAttBase  []uint32
	nodeQueryIdx [][]uint16 // per node, registry indices of its own queries

	flatQueries []uint16 // concatenated registry-index entries across all nodes, in node order

	transitions   []Transition
	transitionIdx map[Transition]int
}

// plan flattens every per-node/per-attachment table into the global arrays
// the container format slices base/count ranges out of, recording each
// owner's own range up front so the later write pass never has to revisit
// an earlier decision.
func (e *encoder) plan() {
	a := e.a

	e.nodePropBase = make([]map[ParamType]uint32, len(a.Nodes))
	e.nodeInBase = make([]map[ParamType]uint32, len(a.Nodes))
	e.nodeOutBase = make([]map[ParamType]uint32, len(a.Nodes))
	e.nodeAttBase = make([]uint32, len(a.Nodes))
	e.attPropBase = nil

	// Attachment-owned property entries come first in each type's global
	// array, in node/attachment declaration order.
	for i, n := range a.Nodes {
		e.nodeAttBase[i] = uint32(len(e.flatAtt))
		for _, att := range n.Attachments {
			bases := make(map[ParamType]uint32, paramTypeCount)
			for t := 0; t < paramTypeCount; t++ {
				pt := ParamType(t)
				bases[pt] = uint32(len(e.globalProps[t]))
				e.globalProps[t] = append(e.globalProps[t], att.Properties.properties[t]...)
			}
			e.attPropBase = append(e.attPropBase, bases)
			e.flatAtt = append(e.flatAtt, att)
		}
	}

	// Node-owned property and parameter entries follow, in node order.
	for i, n := range a.Nodes {
		propBases := make(map[ParamType]uint32, paramTypeCount)
		inBases := make(map[ParamType]uint32, paramTypeCount)
		outBases := make(map[ParamType]uint32, paramTypeCount)
		for t := 0; t < paramTypeCount; t++ {
			pt := ParamType(t)
			propBases[pt] = uint32(len(e.globalProps[t]))
			e.globalProps[t] = append(e.globalProps[t], n.Properties.properties[t]...)
			inBases[pt] = uint32(len(e.globalInputs[t]))
			e.globalInputs[t] = append(e.globalInputs[t], n.Params.Inputs[t]...)
			outBases[pt] = uint32(len(e.globalOutput[t]))
			e.globalOutput[t] = append(e.globalOutput[t], n.Params.Outputs[t]...)
		}
		e.nodePropBase[i] = propBases
		e.nodeInBase[i] = inBases
		e.nodeOutBase[i] = outBases
	}

	// Query registry: every node flagged Is Query, in node order, gives
	// its position in the registry that node.Queries entries address.
	registry := make(map[int32]uint16)
	for i, n := range a.Nodes {
		if n.Flags.IsQuery() {
			registry[int32(i)] = uint16(len(registry))
		}
	}
	e.nodeQueryIdx = make([][]uint16, len(a.Nodes))
	for i, n := range a.Nodes {
		entries := make([]uint16, len(n.Queries))
		for j, q := range n.Queries {
			entries[j] = registry[q]
		}
		e.nodeQueryIdx[i] = entries
		e.flatQueries = append(e.flatQueries, entries...)
	}

	// Distinct transitions, in first-seen order across every Transition
	// plug in every node.
	e.transitionIdx = make(map[Transition]int)
	for _, n := range a.Nodes {
		for _, p := range n.Plugs(PlugTransition) {
			tp := p.(TransitionPlug)
			if _, ok := e.transitionIdx[tp.Transition]; !ok {
				e.transitionIdx[tp.Transition] = len(e.transitions)
				e.transitions = append(e.transitions, tp.Transition)
			}
		}
	}
}

func (e *encoder) run() ([]byte, error) {
	e.plan()
	w := e.w
	a := e.a

	w.WriteBytes([]byte("AIB "))
	w.WriteU32(a.Version)

	filenameOff := e.pool.Offset(a.Filename)
	commandCount := uint32(len(a.Commands))
	nodeCount := uint32(len(a.Nodes))
	queryCount := uint32(len(e.transitionsQueryCount()))
	attachmentCount := uint32(len(e.flatAtt))
	outputCount := uint32(0)
	for t := 0; t < paramTypeCount; t++ {
		outputCount += uint32(len(e.globalOutput[t]))
	}

	w.WriteU32(filenameOff)
	w.WriteU32(commandCount)
	w.WriteU32(nodeCount)
	w.WriteU32(queryCount)
	w.WriteU32(attachmentCount)
	w.WriteU32(outputCount)
	blackboardOffsetTok := w.ReserveU32()
	stringPoolOffsetTok := w.ReserveU32()
	enumResolveOffsetTok := w.ReserveU32()
	propertyOffsetTok := w.ReserveU32()
	transitionOffsetTok := w.ReserveU32()
	ioParamOffsetTok := w.ReserveU32()
	multiParamOffsetTok := w.ReserveU32()
	attachmentOffsetTok := w.ReserveU32()
	attachmentIndexOffsetTok := w.ReserveU32()
	expressionOffsetTok := w.ReserveU32()
	replacementOffsetTok := w.ReserveU32()
	queryOffsetTok := w.ReserveU32()
	x50Tok := w.ReserveU32()
	x54Tok := w.ReserveU32()
	x58Tok := w.ReserveU32()
	moduleOffsetTok := w.ReserveU32()
	categoryNameOffsetTok := w.ReserveU32()
	categoryTok := w.ReserveU32()
	actionOffsetTok := w.ReserveU32()
	x6cTok := w.ReserveU32()
	blackboardIDOffsetTok := w.ReserveU32()

	categoryNameOff := e.pool.Offset(a.Category)
	w.Patch(categoryNameOffsetTok, categoryNameOff)
	var category int32
	if a.Version > 0x404 {
		category = int32(categoryFromString(a.Category))
	}
	w.Patch(categoryTok, uint32(category))
	w.Patch(x54Tok, 0)
	w.Patch(x6cTok, 0)

	if err := e.writeCommands(); err != nil {
		return nil, err
	}

	nodeStateOffsets := make([]DeferredU32, len(a.Nodes))
	if err := e.writeNodes(nodeStateOffsets); err != nil {
		return nil, err
	}

	w.Patch(enumResolveOffsetTok, uint32(w.Len()))
	w.WriteU32(0) // enum patch table: patches are already applied on decode, so a re-encode carries none

	w.Patch(blackboardOffsetTok, uint32(w.Len()))
	e.writeBlackboard()

	w.Patch(propertyOffsetTok, uint32(w.Len()))
	e.writeGlobalProperties()

	w.Patch(ioParamOffsetTok, uint32(w.Len()))
	e.writeGlobalParams()

	w.Patch(multiParamOffsetTok, uint32(w.Len()))
	for _, m := range a.MultiSources {
		w.WriteS16(m.SrcNodeIndex)
		w.WriteS16(m.SrcOutputIndex)
		w.WriteU32(m.Flags.Raw)
	}

	w.Patch(transitionOffsetTok, uint32(w.Len()))
	w.Patch(x50Tok, uint32(w.Len()))
	if len(e.transitions) > 0 {
		e.writeTransitions()
	}

	w.Patch(queryOffsetTok, uint32(w.Len()))
	for _, q := range e.flatQueries {
		w.WriteU16(q)
		w.WriteU16(0)
	}

	if a.Expressions != nil {
		w.Patch(expressionOffsetTok, uint32(w.Len()))
		e.writeExpressionModule()
	} else {
		w.Patch(expressionOffsetTok, 0)
	}

	w.Patch(moduleOffsetTok, uint32(w.Len()))
	w.WriteU32(uint32(len(a.Modules)))
	for _, m := range a.Modules {
		w.WriteU32(e.pool.Offset(m.Path))
		w.WriteU32(e.pool.Offset(m.Category))
		w.WriteU32(m.InstanceCount)
	}

	w.Patch(actionOffsetTok, uint32(w.Len()))
	e.writeActions()

	w.Patch(attachmentIndexOffsetTok, uint32(w.Len()))
	for i := range e.flatAtt {
		w.WriteU32(uint32(i))
	}
	w.Patch(attachmentOffsetTok, uint32(w.Len()))
	if err := e.writeAttachments(); err != nil {
		return nil, err
	}

	w.Patch(blackboardIDOffsetTok, uint32(w.Len()))
	w.WriteU32(a.BlackboardID)
	w.WriteU32(a.ParentBlackboardID)

	if a.Version >= 0x407 {
		w.Patch(replacementOffsetTok, uint32(w.Len()))
		w.WriteU8(0) // replaced: this output has never had a runtime replacement pass applied
		w.WriteU8(0)
		w.WriteU16(uint16(len(a.ReplacementTable)))
		w.WriteU16(0)
		w.WriteU16(0)
		for _, r := range a.ReplacementTable {
			w.WriteU8(uint8(r.Type))
			w.WriteU8(0)
			w.WriteS16(r.NodeIndex)
			w.WriteS16(r.ReplaceIndex)
			w.WriteS16(r.NewIndex)
		}
	} else {
		w.Patch(replacementOffsetTok, 0)
	}

	if a.UnknownSection0x58 != nil {
		w.Patch(x58Tok, uint32(w.Len()))
		w.WriteU32(e.pool.Offset(a.UnknownSection0x58.Description))
		w.WriteU32(a.UnknownSection0x58.Unk04)
		w.WriteU32(a.UnknownSection0x58.Unk08)
		w.WriteU32(a.UnknownSection0x58.Unk0C)
	} else {
		w.Patch(x58Tok, 0)
	}

	for i, n := range a.Nodes {
		if a.Version < 0x407 {
			w.Patch(nodeStateOffsets[i], uint32(w.Len()))
			info := n.StateInfo
			if info == nil {
				info = &StateInfo{}
			}
			w.WriteU32(e.pool.Offset(info.DesiredState))
			w.WriteU32(info.Unk04)
			w.WriteU32(info.Unk08)
			w.WriteU32(info.Unk0C)
			w.WriteU32(info.Unk10)
		}
	}

	w.Patch(stringPoolOffsetTok, uint32(w.Len()))
	w.WriteBytes(e.pool.Bytes())

	return w.Bytes(), nil
}

// transitionsQueryCount returns the registry this AINB's query_count header
// field counts: every node flagged Is Query.
func (e *encoder) transitionsQueryCount() []int32 {
	var out []int32
	for i, n := range e.a.Nodes {
		if n.Flags.IsQuery() {
			out = append(out, int32(i))
		}
	}
	return out
}

func categoryFromString(s string) FileCategory {
	switch s {
	case "AI":
		return CategoryAI
	case "Logic":
		return CategoryLogic
	case "Sequence":
		return CategorySequence
	case "UniqueSequence":
		return CategoryUniqueSequence
	case "UniqueSequenceSPL":
		return CategoryUniqueSequenceSPL
	default:
		return CategoryAI
	}
}

func (e *encoder) writeCommands() error {
	w := e.w
	for _, c := range e.a.Commands {
		w.WriteU32(e.pool.Offset(c.Name))
		w.WriteGUID(c.GUID)
		w.WriteGUID(c.ExtraGUID)
		w.WriteS32(c.LeftNodeIndex)
	}
	return nil
}

func (e *encoder) writeParamValue(t ParamType, v ParamValue) {
	w := e.w
	switch t {
	case ParamInt:
		w.WriteS32(v.Int)
	case ParamBool:
		b := uint32(0)
		if v.Bool {
			b = 1
		}
		w.WriteU32(b)
	case ParamFloat:
		w.WriteF32(v.Float)
	case ParamString:
		w.WriteU32(e.pool.Offset(v.Str))
	case ParamVector3F:
		w.WriteVec3(v.Vec3)
	case ParamPointer:
		// absent on disk
	}
}

func (e *encoder) writeGlobalProperties() {
	w := e.w
	offsetToks := make([]DeferredU32, paramTypeCount)
	for t := range offsetToks {
		offsetToks[t] = w.ReserveU32()
	}
	for t := 0; t < paramTypeCount; t++ {
		w.PatchHere(offsetToks[t])
		for _, p := range e.globalProps[t] {
			w.WriteU32(e.pool.Offset(p.Name))
			if ParamType(t) == ParamPointer {
				w.WriteU32(e.pool.Offset(p.Classname))
			}
			w.WriteU32(p.Flags.Raw)
			e.writeParamValue(ParamType(t), p.Default)
		}
	}
}

func (e *encoder) writeInputParam(t ParamType, p InputParam) {
	w := e.w
	w.WriteU32(e.pool.Offset(p.Name))
	e.writeParamValue(t, p.Default)

	src := p.Source
	switch src.Kind {
	case SourceMulti:
		w.WriteS16(src.MultiBase)
		w.WriteS16(src.MultiCount)
		w.WriteU32(src.Flags.Raw | 0x4)
	case SourceBlackboard:
		w.WriteS16(src.BlackboardIndex)
		w.WriteS16(0)
		w.WriteU32(src.Flags.Raw | 0x1)
	case SourceExpression:
		w.WriteS16(src.ExpressionIndex)
		w.WriteS16(src.SrcNodeIndex)
		w.WriteU32(src.Flags.Raw | 0x2)
	case SourceDirect:
		w.WriteS16(src.SrcNodeIndex)
		w.WriteS16(src.SrcOutputIndex)
		w.WriteU32(src.Flags.Raw)
	default:
		w.WriteS16(-1)
		w.WriteS16(0)
		w.WriteU32(src.Flags.Raw)
	}
}

func (e *encoder) writeOutputParam(t ParamType, p OutputParam) {
	w := e.w
	w.WriteU32(e.pool.Offset(p.Name))
	if t == ParamPointer {
		w.WriteU32(e.pool.Offset(p.Classname))
	}
	w.WriteU32(p.Flags.Raw)
}

func (e *encoder) writeGlobalParams() {
	w := e.w
	inToks := make([]DeferredU32, paramTypeCount)
	outToks := make([]DeferredU32, paramTypeCount)
	for t := range inToks {
		inToks[t] = w.ReserveU32()
	}
	for t := range outToks {
		outToks[t] = w.ReserveU32()
	}
	for t := 0; t < paramTypeCount; t++ {
		w.PatchHere(inToks[t])
		for _, p := range e.globalInputs[t] {
			e.writeInputParam(ParamType(t), p)
		}
	}
	for t := 0; t < paramTypeCount; t++ {
		w.PatchHere(outToks[t])
		for _, p := range e.globalOutput[t] {
			e.writeOutputParam(ParamType(t), p)
		}
	}
}

func (e *encoder) writeTransitions() {
	w := e.w
	toks := make([]DeferredU32, len(e.transitions))
	for i := range toks {
		toks[i] = w.ReserveU32()
	}
	for i, t := range e.transitions {
		w.PatchHere(toks[i])
		flags := uint32(t.Type) & 0xff
		if t.PostCalcUpdate {
			flags |= 1 << 0x1f
		}
		w.WriteU32(flags)
		if t.Type == TransitionStateEnd {
			w.WriteU32(e.pool.Offset(t.CommandName))
		}
	}
}

func (e *encoder) writeActions() {
	w := e.w
	var total uint32
	for _, n := range e.a.Nodes {
		total += uint32(len(n.Actions))
	}
	w.WriteU32(total)
	for i, n := range e.a.Nodes {
		for _, act := range n.Actions {
			w.WriteS32(int32(i))
			w.WriteU32(e.pool.Offset(act.Slot))
			w.WriteU32(e.pool.Offset(act.Action))
		}
	}
}

func (e *encoder) writeAttachments() error {
	w := e.w
	version := e.a.Version
	subToks := make([]DeferredU32, len(e.flatAtt))
	for i, att := range e.flatAtt {
		w.WriteU32(e.pool.Offset(att.Name))
		subToks[i] = w.ReserveU32()
		w.WriteU16(att.ExpressionCount)
		w.WriteU16(att.ExpressionIOSize)
		if version >= 0x407 {
			w.WriteU32(0) // murmur3 hash of the attachment name: never validated on decode
		}
	}
	for i := range e.flatAtt {
		w.PatchHere(subToks[i])
		w.WriteU32(0) // unknown leading dword
		bases := e.attPropBase[i]
		for t := 0; t < paramTypeCount; t++ {
			pt := ParamType(t)
			w.WriteU32(bases[pt])
			w.WriteU32(uint32(len(e.flatAtt[i].Properties.properties[t])))
		}
		w.Pad(0x30)
	}
	return nil
}

func (e *encoder) writeBlackboard() {
	w := e.w
	bb := e.a.Blackboard
	if bb == nil {
		bb = &Blackboard{}
	}

	headerStart := w.Len()
	for t := 0; t < bbParamTypeCount; t++ {
		params := bb.Params(BBParamType(t))
		w.WriteU16(uint16(len(params)))
		w.WriteU16(0) // baseIndex: never used by decode
		w.WriteU16(0) // offset: patched once the default-value blocks are laid out
		w.WriteU16(0)
	}

	// Offsets are 16-bit, so they're patched directly rather than through
	// the 32-bit DeferredU32 helper.
	offsetFieldPos := make([]int, bbParamTypeCount)
	base := headerStart
	for t := 0; t < bbParamTypeCount; t++ {
		offsetFieldPos[t] = base + t*8 + 4
	}

	var fileRefs []string
	type paramInfo struct {
		nameOff      uint32
		notesOff     uint32
		flags        uint8
		fileRefIndex int32
	}
	infos := make([][]paramInfo, bbParamTypeCount)
	for t := 0; t < bbParamTypeCount; t++ {
		params := bb.Params(BBParamType(t))
		infos[t] = make([]paramInfo, len(params))
		for i, p := range params {
			pi := paramInfo{
				nameOff:  e.pool.Offset(p.Name),
				notesOff: e.pool.Offset(p.Notes),
				flags:    p.Flags & 3,
			}
			if p.FileRef != "" {
				pi.fileRefIndex = int32(len(fileRefs))
				fileRefs = append(fileRefs, p.FileRef)
			} else {
				pi.fileRefIndex = -1
			}
			infos[t][i] = pi
		}
	}
	for t := 0; t < bbParamTypeCount; t++ {
		for _, pi := range infos[t] {
			flags := pi.nameOff & 0x3fffff
			flags |= uint32(pi.flags) << 0x16
			if pi.fileRefIndex != -1 {
				flags |= 1 << 0x1f
				flags |= uint32(pi.fileRefIndex&0x7f) << 0x18
			}
			w.WriteU32(flags)
			w.WriteU32(pi.notesOff)
		}
	}

	defaultsStart := w.Len()
	for t := 0; t < bbParamTypeCount; t++ {
		offset := uint16(w.Len() - defaultsStart)
		buf := w.Bytes()
		putU16(buf, offsetFieldPos[t], offset)
		params := bb.Params(BBParamType(t))
		for _, p := range params {
			switch BBParamType(t) {
			case BBParamString:
				w.WriteU32(e.pool.Offset(p.Default.Str))
			case BBParamS32:
				w.WriteS32(p.Default.S32)
			case BBParamF32:
				w.WriteF32(p.Default.F32)
			case BBParamBool:
				b := uint32(0)
				if p.Default.Bool {
					b = 1
				}
				w.WriteU32(b)
			case BBParamVec3f:
				w.WriteVec3(p.Default.Vec3)
			case BBParamVoidPtr:
				// no on-disk value
			}
		}
	}

	for _, ref := range fileRefs {
		w.WriteU32(e.pool.Offset(ref))
		w.WriteU32(0) // path hash: never validated on decode
		w.WriteU32(0) // filename hash
		w.WriteU32(0) // extension hash
	}
}

func putU16(buf []byte, pos int, v uint16) {
	buf[pos] = byte(v)
	buf[pos+1] = byte(v >> 8)
}

func (e *encoder) writeExpressionModule() {
	m := e.a.Expressions
	sub := NewWriter()
	pool := NewStringPool()

	sub.WriteBytes([]byte("EXB "))
	sub.WriteU32(m.Version)
	sub.WriteU32(m.GlobalMemSize)
	sub.WriteU32(m.InstanceCount)
	sub.WriteU32(m.Local32MemSize)
	sub.WriteU32(m.Local64MemSize)
	exprOffTok := sub.ReserveU32()
	instOffTok := sub.ReserveU32()
	sigOffTok := sub.ReserveU32()
	sub.WriteU32(0) // param table offset: addressed directly by instruction operands, never interpreted here
	poolOffTok := sub.ReserveU32()

	sub.PatchHere(sigOffTok)
	sub.WriteU32(uint32(len(m.Signatures)))
	for _, s := range m.Signatures {
		sub.WriteU32(pool.Offset(s))
	}

	var instructions []Instruction
	type span struct{ base, count int32 }
	spans := make([]struct{ setup, main span }, len(m.Expressions))
	for i, ex := range m.Expressions {
		var sp struct{ setup, main span }
		if len(ex.SetupCommand) > 0 {
			sp.setup = span{int32(len(instructions)), int32(len(ex.SetupCommand))}
			instructions = append(instructions, ex.SetupCommand...)
		} else {
			sp.setup = span{-1, 0}
		}
		sp.main = span{int32(len(instructions)), int32(len(ex.MainCommand))}
		instructions = append(instructions, ex.MainCommand...)
		spans[i] = sp
	}

	sub.PatchHere(instOffTok)
	sub.WriteU32(uint32(len(instructions)))
	for _, inst := range instructions {
		sub.WriteU8(uint8(inst.Opcode))
		sub.WriteBytes(inst.Operand[:])
	}

	sub.PatchHere(exprOffTok)
	sub.WriteU32(uint32(len(m.Expressions)))
	for i, ex := range m.Expressions {
		sp := spans[i]
		sub.WriteS32(sp.setup.base)
		sub.WriteU32(uint32(sp.setup.count))
		sub.WriteS32(sp.main.base)
		sub.WriteU32(uint32(sp.main.count))
		sub.WriteU32(ex.GlobalMemUsage)
		sub.WriteU16(ex.Local32MemUsage)
		sub.WriteU16(ex.Local64MemUsage)
		sub.WriteU16(uint16(ex.InputDataType))
		sub.WriteU16(uint16(ex.OutputDataType))
	}

	sub.PatchHere(poolOffTok)
	sub.WriteBytes(pool.Bytes())

	e.w.WriteBytes(sub.Bytes())
}

func (e *encoder) writeNodes(stateTok []DeferredU32) error {
	w := e.w
	a := e.a
	version := a.Version

	paramOffToks := make([]DeferredU32, len(a.Nodes))
	for i, n := range a.Nodes {
		w.WriteU16(uint16(n.Type))
		w.WriteS16(int16(i))
		w.WriteU16(uint16(len(n.Attachments)))
		w.WriteU8(uint8(n.Flags))
		w.WriteU8(0)
		w.WriteU32(e.pool.Offset(n.Name))
		if version >= 0x407 {
			w.WriteU32(0) // murmur3 hash of the node name: never validated on decode
		}
		w.WriteU32(0) // unknown dword
		paramOffToks[i] = w.ReserveU32()
		w.WriteU16(0) // expression count: informational, re-derivable
		w.WriteU16(0) // expression I/O memory size: informational
		w.WriteU16(0) // multi-param count: informational
		w.WriteU16(0)
		w.WriteU32(e.nodeAttBase[i])
		queryBase := uint32(0)
		for j := 0; j < i; j++ {
			queryBase += uint32(len(e.nodeQueryIdx[j]))
		}
		w.WriteU16(uint16(queryBase))
		w.WriteU16(uint16(len(n.Queries)))
		if version < 0x407 {
			stateTok[i] = w.ReserveU32()
		} else {
			w.WriteU32(0)
		}
		w.WriteGUID(n.GUID)
	}

	// Each node's parameter and plug block follows the whole node table:
	// decode reads the node records back-to-back and reaches these blocks
	// only through each record's parameter offset.
	for i, n := range a.Nodes {
		w.PatchHere(paramOffToks[i])
		for t := 0; t < paramTypeCount; t++ {
			pt := ParamType(t)
			w.WriteU32(e.nodePropBase[i][pt])
			w.WriteU32(uint32(len(n.Properties.properties[t])))
		}
		for t := 0; t < paramTypeCount; t++ {
			pt := ParamType(t)
			w.WriteU32(e.nodeInBase[i][pt])
			w.WriteU32(uint32(len(n.Params.Inputs[t])))
			w.WriteU32(e.nodeOutBase[i][pt])
			w.WriteU32(uint32(len(n.Params.Outputs[t])))
		}

		type slot struct {
			count, base uint8
		}
		slots := make([]slot, plugTypeCount)
		var flat []Plug
		for s := 0; s < plugTypeCount; s++ {
			plugs := n.Plugs(PlugType(s))
			if len(plugs) == 0 {
				continue
			}
			slots[s] = slot{count: uint8(len(plugs)), base: uint8(len(flat))}
			flat = append(flat, plugs...)
		}
		for _, s := range slots {
			w.WriteU8(s.count)
			w.WriteU8(s.base)
		}

		offTok := make([]DeferredU32, len(flat))
		for k := range offTok {
			offTok[k] = w.ReserveU32()
		}
		k := 0
		for s := 0; s < plugTypeCount; s++ {
			plugs := n.Plugs(PlugType(s))
			for j, p := range plugs {
				w.PatchHere(offTok[k])
				if err := e.writePlug(p, n, j == len(plugs)-1, version); err != nil {
					return fmt.Errorf("node %d: %w", i, err)
				}
				k++
			}
		}
	}
	return nil
}

func (e *encoder) writePlug(p Plug, owner *Node, isLast bool, version uint32) error {
	w := e.w
	switch v := p.(type) {
	case GenericPlug:
		w.WriteS32(v.NodeIndex)
		w.WriteU32(e.pool.Offset(v.Name))
	case ChildPlug:
		w.WriteS32(v.NodeIndex)
		w.WriteU32(e.pool.Offset(v.Name))
	case S32SelectorPlug:
		w.WriteS32(v.NodeIndex)
		w.WriteU32(e.pool.Offset(v.Name))
		if v.BlackboardIndex != -1 {
			w.WriteS16(v.BlackboardIndex)
			w.WriteU16(1 << 0xf)
		} else {
			w.WriteS16(0)
			w.WriteU16(0)
		}
		if isLast {
			w.WriteS32(0)
		} else {
			w.WriteS32(v.Condition)
		}
	case F32SelectorPlug:
		w.WriteS32(v.NodeIndex)
		w.WriteU32(e.pool.Offset(v.Name))
		if isLast {
			w.WriteU32(e.pool.Offset(f32SelectorDefaultString))
			return nil
		}
		writeBound := func(val float32, bb int16) {
			if bb != -1 {
				w.WriteS16(bb)
				w.WriteU16(1 << 0xf)
				w.WriteF32(0)
			} else {
				w.WriteS16(-1)
				w.WriteU16(0)
				w.WriteF32(val)
			}
		}
		writeBound(v.ConditionMin, v.BlackboardIndexMin)
		writeBound(v.ConditionMax, v.BlackboardIndexMax)
	case StringSelectorPlug:
		w.WriteS32(v.NodeIndex)
		w.WriteU32(e.pool.Offset(v.Name))
		if v.BlackboardIndex != -1 {
			w.WriteS16(v.BlackboardIndex)
			w.WriteU16(1 << 0xf)
		} else {
			w.WriteS16(0)
			w.WriteU16(0)
		}
		if isLast {
			w.WriteU32(e.pool.Offset(f32SelectorDefaultString))
		} else {
			w.WriteU32(e.pool.Offset(v.Condition))
		}
	case RandomSelectorPlug:
		w.WriteS32(v.NodeIndex)
		w.WriteU32(e.pool.Offset(v.Name))
		w.WriteF32(v.Weight)
	case BSASelectorUpdaterPlug:
		w.WriteS32(v.NodeIndex)
		w.WriteU32(e.pool.Offset(v.Name))
		w.WriteU32(v.Unk0)
		w.WriteU32(v.Unk1)
	case TransitionPlug:
		w.WriteS32(v.NodeIndex)
		w.WriteU32(uint32(e.transitionIdx[v.Transition]))
	case StringInputPlug:
		w.WriteS32(v.NodeIndex)
		w.WriteU32(e.pool.Offset(v.Name))
		if version > 0x404 {
			w.WriteU32(v.Unknown)
			w.WriteU32(e.pool.Offset(v.DefaultValue))
		}
	case IntInputPlug:
		w.WriteS32(v.NodeIndex)
		w.WriteU32(e.pool.Offset(v.Name))
		if version > 0x404 {
			w.WriteU32(v.Unknown)
			w.WriteS32(v.DefaultValue)
		}
	default:
		return fmt.Errorf("%w: unrecognised plug type in slot for node %q", ErrInvalidEnumValue, owner.Name)
	}
	return nil
}
