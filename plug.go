package ainb

import "fmt"

// NullNodeIndex is the sentinel plug target meaning "no node", the
// all-ones 15-bit value the format reserves for an unconnected plug.
const NullNodeIndex int32 = 0x7fff

// PlugType selects one of the ten kind-indexed plug slots a node carries.
// Slots 1, 6, 7, 8 and 9 are reserved and observed empty in every known
// file; they still round-trip as empty lists.
type PlugType int

const (
	PlugGeneric    PlugType = 0
	plugReserved01 PlugType = 1
	PlugChild      PlugType = 2
	PlugTransition PlugType = 3
	PlugString     PlugType = 4
	PlugInt        PlugType = 5
	plugReserved06 PlugType = 6
	plugReserved07 PlugType = 7
	plugReserved08 PlugType = 8
	plugReserved09 PlugType = 9

	plugTypeCount = int(plugReserved09) + 1
)

func (t PlugType) String() string {
	switch t {
	case PlugGeneric:
		return "Generic"
	case PlugChild:
		return "Child"
	case PlugTransition:
		return "Transition"
	case PlugString:
		return "String"
	case PlugInt:
		return "Int"
	default:
		return fmt.Sprintf("_%02d", int(t))
	}
}

// Plug is the common shape of every plug variant: a target node index
// plus a class-specific payload. Concrete variants are resolved at decode
// time from the owning node's kind and the plug's position in its block
// (the last child plug of a selector is always the default).
type Plug interface {
	Kind() PlugType
	TargetNodeIndex() int32
}

type plugBase struct {
	NodeIndex int32
}

func (p plugBase) TargetNodeIndex() int32 { return p.NodeIndex }

func readPlugBase(r *Reader) (plugBase, error) {
	idx, err := r.ReadS32()
	return plugBase{NodeIndex: idx}, err
}

// GenericPlug carries only a name; used for value inputs/outputs.
type GenericPlug struct {
	plugBase
	Name string
}

func (GenericPlug) Kind() PlugType { return PlugGeneric }

func readGenericPlug(r *Reader) (GenericPlug, error) {
	base, err := readPlugBase(r)
	if err != nil {
		return GenericPlug{}, err
	}
	name, err := r.ReadStringOffset()
	if err != nil {
		return GenericPlug{}, err
	}
	return GenericPlug{plugBase: base, Name: name}, nil
}

// ChildPlug is the plain control-flow plug used by every node kind that
// isn't a specialised selector.
type ChildPlug struct {
	plugBase
	Name string
}

func (ChildPlug) Kind() PlugType { return PlugChild }

func readChildPlug(r *Reader) (ChildPlug, error) {
	base, err := readPlugBase(r)
	if err != nil {
		return ChildPlug{}, err
	}
	name, err := r.ReadStringOffset()
	if err != nil {
		return ChildPlug{}, err
	}
	return ChildPlug{plugBase: base, Name: name}, nil
}

// S32SelectorPlug is a Child plug under an Element_S32Selector parent:
// either an integer condition (optionally backed by a blackboard index)
// or, for the last plug in the block, the selector's default case.
type S32SelectorPlug struct {
	plugBase
	Name            string
	Condition       int32
	IsDefault       bool
	BlackboardIndex int16 // -1 when the condition is literal
}

func (S32SelectorPlug) Kind() PlugType { return PlugChild }

func readS32SelectorPlug(r *Reader, isLast bool) (S32SelectorPlug, error) {
	base, err := readPlugBase(r)
	if err != nil {
		return S32SelectorPlug{}, err
	}
	name, err := r.ReadStringOffset()
	if err != nil {
		return S32SelectorPlug{}, err
	}
	index, err := r.ReadS16()
	if err != nil {
		return S32SelectorPlug{}, err
	}
	flag, err := r.ReadU16()
	if err != nil {
		return S32SelectorPlug{}, err
	}
	p := S32SelectorPlug{plugBase: base, Name: name, BlackboardIndex: -1}
	if flag>>0xf != 0 {
		p.BlackboardIndex = index
	}
	if isLast {
		p.IsDefault = true
		pad, err := r.ReadS32()
		if err != nil {
			return S32SelectorPlug{}, err
		}
		if pad != 0 {
			return S32SelectorPlug{}, fmt.Errorf("%w: S32 selector default padding was %d, want 0", ErrInvalidDefaultCase, pad)
		}
	} else {
		cond, err := r.ReadS32()
		if err != nil {
			return S32SelectorPlug{}, err
		}
		p.Condition = cond
	}
	return p, nil
}

// F32SelectorPlug is a Child plug under an Element_F32Selector parent: a
// (min, max) bound pair, each independently literal or blackboard-backed,
// or for the last plug in the block, the selector's default case
// (signalled on disk by the literal string "その他").
type F32SelectorPlug struct {
	plugBase
	Name                string
	ConditionMin        float32
	BlackboardIndexMin  int16
	ConditionMax        float32
	BlackboardIndexMax  int16
	IsDefault           bool
}

func (F32SelectorPlug) Kind() PlugType { return PlugChild }

const f32SelectorDefaultString = "その他"

func readF32SelectorPlug(r *Reader, isLast bool) (F32SelectorPlug, error) {
	base, err := readPlugBase(r)
	if err != nil {
		return F32SelectorPlug{}, err
	}
	name, err := r.ReadStringOffset()
	if err != nil {
		return F32SelectorPlug{}, err
	}
	p := F32SelectorPlug{plugBase: base, Name: name, BlackboardIndexMin: -1, BlackboardIndexMax: -1}
	if isLast {
		p.IsDefault = true
		s, err := r.ReadStringOffset()
		if err != nil {
			return F32SelectorPlug{}, err
		}
		if s != f32SelectorDefaultString {
			return F32SelectorPlug{}, fmt.Errorf("%w: F32 selector default string was %q", ErrInvalidDefaultCase, s)
		}
		return p, nil
	}
	readBound := func() (float32, int16, error) {
		index, err := r.ReadS16()
		if err != nil {
			return 0, 0, err
		}
		flag, err := r.ReadU16()
		if err != nil {
			return 0, 0, err
		}
		if flag>>0xf != 0 {
			if _, err := r.ReadF32(); err != nil { // unused bound slot, still occupies bytes
				return 0, 0, err
			}
			return 0, index, nil
		}
		f, err := r.ReadF32()
		return f, -1, err
	}
	min, minBB, err := readBound()
	if err != nil {
		return F32SelectorPlug{}, err
	}
	max, maxBB, err := readBound()
	if err != nil {
		return F32SelectorPlug{}, err
	}
	p.ConditionMin, p.BlackboardIndexMin = min, minBB
	p.ConditionMax, p.BlackboardIndexMax = max, maxBB
	return p, nil
}

// StringSelectorPlug is a Child plug under an Element_StringSelector
// parent, shaped exactly like S32SelectorPlug but string-typed.
type StringSelectorPlug struct {
	plugBase
	Name            string
	Condition       string
	IsDefault       bool
	BlackboardIndex int16
}

func (StringSelectorPlug) Kind() PlugType { return PlugChild }

func readStringSelectorPlug(r *Reader, isLast bool) (StringSelectorPlug, error) {
	base, err := readPlugBase(r)
	if err != nil {
		return StringSelectorPlug{}, err
	}
	name, err := r.ReadStringOffset()
	if err != nil {
		return StringSelectorPlug{}, err
	}
	index, err := r.ReadS16()
	if err != nil {
		return StringSelectorPlug{}, err
	}
	flag, err := r.ReadU16()
	if err != nil {
		return StringSelectorPlug{}, err
	}
	p := StringSelectorPlug{plugBase: base, Name: name, BlackboardIndex: -1}
	if flag>>0xf != 0 {
		p.BlackboardIndex = index
	}
	if isLast {
		p.IsDefault = true
		s, err := r.ReadStringOffset()
		if err != nil {
			return StringSelectorPlug{}, err
		}
		if s != f32SelectorDefaultString {
			return StringSelectorPlug{}, fmt.Errorf("%w: string selector default string was %q", ErrInvalidDefaultCase, s)
		}
	} else {
		cond, err := r.ReadStringOffset()
		if err != nil {
			return StringSelectorPlug{}, err
		}
		p.Condition = cond
	}
	return p, nil
}

// RandomSelectorPlug is a Child plug under an Element_RandomSelector
// parent: a float weight, no default-case distinction.
type RandomSelectorPlug struct {
	plugBase
	Name   string
	Weight float32
}

func (RandomSelectorPlug) Kind() PlugType { return PlugChild }

func readRandomSelectorPlug(r *Reader) (RandomSelectorPlug, error) {
	base, err := readPlugBase(r)
	if err != nil {
		return RandomSelectorPlug{}, err
	}
	name, err := r.ReadStringOffset()
	if err != nil {
		return RandomSelectorPlug{}, err
	}
	w, err := r.ReadF32()
	if err != nil {
		return RandomSelectorPlug{}, err
	}
	return RandomSelectorPlug{plugBase: base, Name: name, Weight: w}, nil
}

// BSASelectorUpdaterPlug is a Child plug under a node named
// SelectorBSABrainVerbUpdater or SelectorBSAFormChangeUpdater: two
// unknown 32-bit words, preserved verbatim.
type BSASelectorUpdaterPlug struct {
	plugBase
	Name  string
	Unk0  uint32
	Unk1  uint32
}

func (BSASelectorUpdaterPlug) Kind() PlugType { return PlugChild }

func readBSASelectorUpdaterPlug(r *Reader) (BSASelectorUpdaterPlug, error) {
	base, err := readPlugBase(r)
	if err != nil {
		return BSASelectorUpdaterPlug{}, err
	}
	name, err := r.ReadStringOffset()
	if err != nil {
		return BSASelectorUpdaterPlug{}, err
	}
	u0, err := r.ReadU32()
	if err != nil {
		return BSASelectorUpdaterPlug{}, err
	}
	u1, err := r.ReadU32()
	if err != nil {
		return BSASelectorUpdaterPlug{}, err
	}
	return BSASelectorUpdaterPlug{plugBase: base, Name: name, Unk0: u0, Unk1: u1}, nil
}

// TransitionPlug references one Transition record by index into the
// file-level transition table.
type TransitionPlug struct {
	plugBase
	Transition Transition
}

func (TransitionPlug) Kind() PlugType { return PlugTransition }

func readTransitionPlug(r *Reader, transitions []Transition) (TransitionPlug, error) {
	base, err := readPlugBase(r)
	if err != nil {
		return TransitionPlug{}, err
	}
	idx, err := r.ReadU32()
	if err != nil {
		return TransitionPlug{}, err
	}
	if int(idx) >= len(transitions) {
		return TransitionPlug{}, fmt.Errorf("%w: transition plug index %d, table has %d entries", ErrInvalidReference, idx, len(transitions))
	}
	return TransitionPlug{plugBase: base, Transition: transitions[idx]}, nil
}

// StringInputPlug carries a name and, in files with version > 0x404, an
// inline default value alongside an unknown dword.
type StringInputPlug struct {
	plugBase
	Name         string
	HasDefault   bool
	Unknown      uint32
	DefaultValue string
}

func (StringInputPlug) Kind() PlugType { return PlugString }

func readStringInputPlug(r *Reader, version uint32) (StringInputPlug, error) {
	base, err := readPlugBase(r)
	if err != nil {
		return StringInputPlug{}, err
	}
	name, err := r.ReadStringOffset()
	if err != nil {
		return StringInputPlug{}, err
	}
	p := StringInputPlug{plugBase: base, Name: name}
	if version > 0x404 {
		u, err := r.ReadU32()
		if err != nil {
			return StringInputPlug{}, err
		}
		def, err := r.ReadStringOffset()
		if err != nil {
			return StringInputPlug{}, err
		}
		p.HasDefault = true
		p.Unknown = u
		p.DefaultValue = def
	}
	return p, nil
}

// IntInputPlug mirrors StringInputPlug for integer-typed inputs.
type IntInputPlug struct {
	plugBase
	Name         string
	HasDefault   bool
	Unknown      uint32
	DefaultValue int32
}

func (IntInputPlug) Kind() PlugType { return PlugInt }

func readIntInputPlug(r *Reader, version uint32) (IntInputPlug, error) {
	base, err := readPlugBase(r)
	if err != nil {
		return IntInputPlug{}, err
	}
	name, err := r.ReadStringOffset()
	if err != nil {
		return IntInputPlug{}, err
	}
	p := IntInputPlug{plugBase: base, Name: name}
	if version > 0x404 {
		u, err := r.ReadU32()
		if err != nil {
			return IntInputPlug{}, err
		}
		def, err := r.ReadS32()
		if err != nil {
			return IntInputPlug{}, err
		}
		p.HasDefault = true
		p.Unknown = u
		p.DefaultValue = def
	}
	return p, nil
}

// readPlug dispatches on (slot, owning node's kind/name) exactly as the
// format requires: the Child slot fans out into one of five specialised
// selector-child payloads depending on the parent's NodeType or, for the
// two BSA-updater nodes, its Name.
func readPlug(r *Reader, offset int, slot PlugType, owner *Node, isLast bool, transitions []Transition, version uint32) (Plug, error) {
	var plug Plug
	err := r.TempSeek(offset, func() error {
		var err error
		switch slot {
		case PlugGeneric:
			plug, err = readGenericPlug(r)
		case PlugChild:
			switch {
			case owner.Type == NodeElementS32Selector:
				plug, err = readS32SelectorPlug(r, isLast)
			case owner.Type == NodeElementF32Selector:
				plug, err = readF32SelectorPlug(r, isLast)
			case owner.Type == NodeElementStringSelector:
				plug, err = readStringSelectorPlug(r, isLast)
			case owner.Type == NodeElementRandomSelector:
				plug, err = readRandomSelectorPlug(r)
			case owner.Name == "SelectorBSABrainVerbUpdater" || owner.Name == "SelectorBSAFormChangeUpdater":
				plug, err = readBSASelectorUpdaterPlug(r)
			default:
				plug, err = readChildPlug(r)
			}
		case PlugTransition:
			plug, err = readTransitionPlug(r, transitions)
		case PlugString:
			plug, err = readStringInputPlug(r, version)
		case PlugInt:
			plug, err = readIntInputPlug(r, version)
		default:
			// Reserved slots (_01, _06..09) are observed empty; reaching
			// here means a file has a non-empty reserved slot, which this
			// port has no payload schema for.
			return fmt.Errorf("%w: non-empty reserved plug slot %s", ErrInvalidEnumValue, slot)
		}
		return err
	})
	return plug, err
}
