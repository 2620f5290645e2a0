package ainb

import "fmt"

// BBParamType enumerates the six parallel, disjoint lists a Blackboard
// holds, in on-disk declaration order.
type BBParamType int

const (
	BBParamString BBParamType = iota
	BBParamS32
	BBParamF32
	BBParamBool
	BBParamVec3f
	BBParamVoidPtr

	bbParamTypeCount = int(BBParamVoidPtr) + 1
)

func (t BBParamType) String() string {
	switch t {
	case BBParamString:
		return "String"
	case BBParamS32:
		return "S32"
	case BBParamF32:
		return "F32"
	case BBParamBool:
		return "Bool"
	case BBParamVec3f:
		return "Vec3f"
	case BBParamVoidPtr:
		return "VoidPtr"
	default:
		return fmt.Sprintf("BBParamType(%d)", int(t))
	}
}

// BBParamValue is the typed default value carried by a BBParam. Exactly
// one field is meaningful, selected by the owning BBParam's Type;
// VoidPtr-typed params never populate any field.
type BBParamValue struct {
	Str  string
	S32  int32
	F32  float32
	Bool bool
	Vec3 [3]float32
}

// BBParam is a single blackboard entry.
type BBParam struct {
	Name  string
	Type  BBParamType
	Notes string
	// FileRef is the referenced external filename, or "" when this param
	// carries no file reference.
	FileRef string
	// Flags holds the 2 bits kept on a BBParam: bit 0 is inheritability
	// between modules, bit 1 is auto-match (both zero unless inheriting).
	Flags   uint8
	Default BBParamValue
}

// Blackboard holds the six typed parameter lists, keyed by BBParamType.
type Blackboard struct {
	params [bbParamTypeCount][]BBParam
}

// Params returns the ordered list for t.
func (bb *Blackboard) Params(t BBParamType) []BBParam { return bb.params[t] }

// SetParams replaces the ordered list for t.
func (bb *Blackboard) SetParams(t BBParamType, params []BBParam) { bb.params[t] = params }

type bbParamHeader struct {
	count     uint16
	baseIndex uint16
	offset    uint16
}

type bbParamInfo struct {
	fileRefIndex int32 // -1 when absent
	name         string
	notes        string
	flags        uint8
}

func readBBParamHeader(r *Reader) (bbParamHeader, error) {
	count, err := r.ReadU16()
	if err != nil {
		return bbParamHeader{}, err
	}
	base, err := r.ReadU16()
	if err != nil {
		return bbParamHeader{}, err
	}
	off, err := r.ReadU16()
	if err != nil {
		return bbParamHeader{}, err
	}
	if _, err := r.ReadU16(); err != nil { // padding
		return bbParamHeader{}, err
	}
	return bbParamHeader{count: count, baseIndex: base, offset: off}, nil
}

func readBBParamInfo(r *Reader) (bbParamInfo, error) {
	flags, err := r.ReadU32()
	if err != nil {
		return bbParamInfo{}, err
	}
	name, err := r.GetString(flags & 0x3fffff)
	if err != nil {
		return bbParamInfo{}, err
	}
	notes, err := r.ReadStringOffset()
	if err != nil {
		return bbParamInfo{}, err
	}
	info := bbParamInfo{
		name:  name,
		notes: notes,
		flags: uint8(flags >> 0x16 & 3),
	}
	if flags>>0x1f != 0 {
		info.fileRefIndex = int32(flags >> 0x18 & 0x7f)
	} else {
		info.fileRefIndex = -1
	}
	return info, nil
}

func readBBParamValue(r *Reader, t BBParamType) (BBParamValue, error) {
	var v BBParamValue
	var err error
	switch t {
	case BBParamString:
		v.Str, err = r.ReadStringOffset()
	case BBParamS32:
		v.S32, err = r.ReadS32()
	case BBParamF32:
		v.F32, err = r.ReadF32()
	case BBParamBool:
		var u uint32
		u, err = r.ReadU32()
		v.Bool = u != 0
	case BBParamVec3f:
		v.Vec3, err = r.ReadVec3()
	case BBParamVoidPtr:
		// no on-disk value; default is implicitly absent
	default:
		return v, fmt.Errorf("%w: blackboard param type %d", ErrInvalidEnumValue, int(t))
	}
	return v, err
}

func readBBFileReference(r *Reader) (string, error) {
	filename, err := r.ReadStringOffset()
	if err != nil {
		return "", err
	}
	if _, err := r.ReadU32(); err != nil { // path hash
		return "", err
	}
	if _, err := r.ReadU32(); err != nil { // filename hash
		return "", err
	}
	if _, err := r.ReadU32(); err != nil { // extension hash
		return "", err
	}
	return filename, nil
}

// readBlackboard decodes a Blackboard per §4.3: six fixed headers, then
// per-type descriptor runs, then default-value blocks in the same order,
// then file-reference blocks addressed by index.
func readBlackboard(r *Reader) (*Blackboard, error) {
	bb := &Blackboard{}

	var headers [bbParamTypeCount]bbParamHeader
	for i := range headers {
		h, err := readBBParamHeader(r)
		if err != nil {
			return nil, err
		}
		headers[i] = h
	}

	infos := make([][]bbParamInfo, bbParamTypeCount)
	for t := 0; t < bbParamTypeCount; t++ {
		infos[t] = make([]bbParamInfo, headers[t].count)
		for i := range infos[t] {
			info, err := readBBParamInfo(r)
			if err != nil {
				return nil, err
			}
			infos[t][i] = info
		}
	}

	baseOffset := r.Tell()
	// File references come after all default values. VoidPtr stores none,
	// so the default-value region ends after the Vec3f block, whose entries
	// are 0xc bytes (three floats) each.
	vec3fHeader := headers[BBParamVec3f]
	fileRefOffset := baseOffset + int(vec3fHeader.offset) + int(vec3fHeader.count)*0xc

	for t := 0; t < bbParamTypeCount; t++ {
		t := t
		params := make([]BBParam, headers[t].count)
		err := r.TempSeek(baseOffset+int(headers[t].offset), func() error {
			for i := range params {
				info := infos[t][i]
				def, err := readBBParamValue(r, BBParamType(t))
				if err != nil {
					return err
				}
				p := BBParam{
					Name:    info.name,
					Type:    BBParamType(t),
					Notes:   info.notes,
					Flags:   info.flags,
					Default: def,
				}
				if info.fileRefIndex != -1 {
					err := r.TempSeek(fileRefOffset+0x10*int(info.fileRefIndex), func() error {
						ref, err := readBBFileReference(r)
						if err != nil {
							return err
						}
						p.FileRef = ref
						return nil
					})
					if err != nil {
						return err
					}
				}
				params[i] = p
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		bb.params[t] = params
	}

	return bb, nil
}
