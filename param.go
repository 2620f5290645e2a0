package ainb

// ParamSourceFlags is the bitfield overlaid on a parameter's source word.
// Layout (low to high): bit 0 is_blackboard, bit 1 is_expression, bit 2
// is_multi, bits 8-15 combine operator, bits 16-23 arity. Only
// is_blackboard/is_expression/is_multi are given by name in the core
// specification; the operator/arity packing is this port's own choice,
// recorded in the design ledger, and is never interpreted beyond being
// round-tripped verbatim.
type ParamSourceFlags struct {
	Raw uint32
}

func (f ParamSourceFlags) IsBlackboard() bool { return f.Raw&0x1 != 0 }
func (f ParamSourceFlags) IsExpression() bool { return f.Raw&0x2 != 0 }
func (f ParamSourceFlags) IsMulti() bool      { return f.Raw&0x4 != 0 }
func (f ParamSourceFlags) Operator() uint8    { return uint8(f.Raw >> 8) }
func (f ParamSourceFlags) Arity() uint8       { return uint8(f.Raw >> 16) }

// ParamSourceKind classifies how an InputParam obtains its runtime value.
type ParamSourceKind int

const (
	// SourceLiteral means the parameter's Default field is used as-is.
	SourceLiteral ParamSourceKind = iota
	// SourceBlackboard means the value comes from a BBParam, addressed by
	// BlackboardIndex.
	SourceBlackboard
	// SourceExpression means the value is transformed through an
	// expression, addressed by ExpressionIndex, with SrcNodeIndex as its
	// source node; SrcOutputIndex is not populated for this kind.
	SourceExpression
	// SourceDirect means the value is read straight from another node's
	// output, addressed by SrcNodeIndex/SrcOutputIndex.
	SourceDirect
	// SourceMulti means the value combines several sub-sources found in
	// the multi-source table, combined per Flags.Operator()/Arity().
	SourceMulti
)

// ParamSource describes where an InputParam's runtime value comes from.
type ParamSource struct {
	Kind  ParamSourceKind
	Flags ParamSourceFlags

	BlackboardIndex int16
	ExpressionIndex int16
	SrcNodeIndex    int16 // sentinel -1 means "no source node"
	SrcOutputIndex  int16

	MultiBase  int16
	MultiCount int16
}

// MultiSourceEntry is one sub-source in the file-level multi-source
// table, 8 bytes on disk.
type MultiSourceEntry struct {
	SrcNodeIndex   int16
	SrcOutputIndex int16
	Flags          ParamSourceFlags
}

func readMultiSourceTable(r *Reader, entryCount int) ([]MultiSourceEntry, error) {
	entries := make([]MultiSourceEntry, entryCount)
	for i := range entries {
		n, err := r.ReadS16()
		if err != nil {
			return nil, err
		}
		o, err := r.ReadS16()
		if err != nil {
			return nil, err
		}
		f, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		entries[i] = MultiSourceEntry{SrcNodeIndex: n, SrcOutputIndex: o, Flags: ParamSourceFlags{Raw: f}}
	}
	return entries, nil
}

// InputParam is a typed slot that conveys data into a node, sourced
// either literally, from the blackboard, from another node's output
// (optionally transformed by an expression), or from several such sources
// combined.
type InputParam struct {
	Name    string
	Type    ParamType
	Default ParamValue // absent (IsNull) for Pointer
	Source  ParamSource
}

func readInputParam(r *Reader, t ParamType) (InputParam, error) {
	p := InputParam{Type: t}
	name, err := r.ReadStringOffset()
	if err != nil {
		return p, err
	}
	p.Name = name
	def, err := readParamValue(r, t)
	if err != nil {
		return p, err
	}
	p.Default = def

	a, err := r.ReadS16()
	if err != nil {
		return p, err
	}
	b, err := r.ReadS16()
	if err != nil {
		return p, err
	}
	flags, err := r.ReadU32()
	if err != nil {
		return p, err
	}
	sf := ParamSourceFlags{Raw: flags}
	src := ParamSource{Flags: sf, SrcNodeIndex: -1}
	switch {
	case sf.IsMulti():
		src.Kind = SourceMulti
		src.MultiBase = a
		src.MultiCount = b
	case sf.IsBlackboard():
		src.Kind = SourceBlackboard
		src.BlackboardIndex = a
	case sf.IsExpression():
		src.Kind = SourceExpression
		src.ExpressionIndex = a
		src.SrcNodeIndex = b
	case a != -1:
		src.Kind = SourceDirect
		src.SrcNodeIndex = a
		src.SrcOutputIndex = b
	default:
		src.Kind = SourceLiteral
	}
	p.Source = src
	return p, nil
}

// OutputParam is a typed slot a node exposes for other nodes to read.
type OutputParam struct {
	Name string
	Type ParamType
	// Classname is populated only when Type == ParamPointer.
	Classname string
	Flags     ParamFlag
}

func readOutputParam(r *Reader, t ParamType) (OutputParam, error) {
	p := OutputParam{Type: t}
	name, err := r.ReadStringOffset()
	if err != nil {
		return p, err
	}
	p.Name = name
	if t == ParamPointer {
		cn, err := r.ReadStringOffset()
		if err != nil {
			return p, err
		}
		p.Classname = cn
	}
	flags, err := r.ReadU32()
	if err != nil {
		return p, err
	}
	p.Flags = ParamFlag{Raw: flags}
	return p, nil
}

// ParamSet is the twelve file-level tables (six input types, six output
// types) that node parameter blocks slice into via (base_index, count).
type ParamSet struct {
	Inputs  [paramTypeCount][]InputParam
	Outputs [paramTypeCount][]OutputParam
}

type paramRange struct {
	baseIndex uint32
	count     uint32
}

func readParamRange(r *Reader) (paramRange, error) {
	base, err := r.ReadU32()
	if err != nil {
		return paramRange{}, err
	}
	count, err := r.ReadU32()
	if err != nil {
		return paramRange{}, err
	}
	return paramRange{baseIndex: base, count: count}, nil
}

// readParamSet decodes the file-level ParamSet occupying [start, end):
// six input-table offsets followed by six output-table offsets, one per
// ParamType, each range running to the next declared offset (or end for
// the very last table). Entries are variable-sized (the default value
// and source fields both vary by type and by which kind of source is
// present), so each range is read by cursor position rather than by
// dividing a fixed record size, stopping once the cursor reaches the
// range's end offset.
func readParamSet(r *Reader, end int) (*ParamSet, error) {
	var inOffsets, outOffsets [paramTypeCount]uint32
	for i := range inOffsets {
		off, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		inOffsets[i] = off
	}
	for i := range outOffsets {
		off, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		outOffsets[i] = off
	}

	ps := &ParamSet{}
	for t := 0; t < paramTypeCount; t++ {
		t := t
		rangeEnd := end
		switch {
		case t+1 < paramTypeCount:
			rangeEnd = int(inOffsets[t+1])
		default:
			rangeEnd = int(outOffsets[0])
		}
		var params []InputParam
		err := r.TempSeek(int(inOffsets[t]), func() error {
			for r.Tell() < rangeEnd {
				p, err := readInputParam(r, ParamType(t))
				if err != nil {
					return err
				}
				params = append(params, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		ps.Inputs[t] = params
	}
	for t := 0; t < paramTypeCount; t++ {
		t := t
		rangeEnd := end
		if t+1 < paramTypeCount {
			rangeEnd = int(outOffsets[t+1])
		}
		var params []OutputParam
		err := r.TempSeek(int(outOffsets[t]), func() error {
			for r.Tell() < rangeEnd {
				p, err := readOutputParam(r, ParamType(t))
				if err != nil {
					return err
				}
				params = append(params, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		ps.Outputs[t] = params
	}
	return ps, nil
}
