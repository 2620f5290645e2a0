package ainb

import "fmt"

// ParamType enumerates the six type tags shared by properties, parameters
// and plug payload fields across the format.
type ParamType int

const (
	ParamInt ParamType = iota
	ParamBool
	ParamFloat
	ParamString
	ParamVector3F
	ParamPointer

	paramTypeCount = int(ParamPointer) + 1
)

func (t ParamType) String() string {
	switch t {
	case ParamInt:
		return "Int"
	case ParamBool:
		return "Bool"
	case ParamFloat:
		return "Float"
	case ParamString:
		return "String"
	case ParamVector3F:
		return "Vector3F"
	case ParamPointer:
		return "Pointer"
	default:
		return fmt.Sprintf("ParamType(%d)", int(t))
	}
}

// propertySize is the fixed per-record size of a Property entry of the
// given type: 0xc for every type except Vector3F, which needs the extra
// two floats.
func propertySize(t ParamType) int {
	if t == ParamVector3F {
		return 0x14
	}
	return 0xc
}

// ParamFlag is the 32-bit flag word overlaid on every Property/Parameter
// record. Only the bits the format's readers must act on are named; the
// remainder round-trips verbatim through Raw.
type ParamFlag struct {
	Raw uint32
}

// ParamValue carries the typed value read for a Property or Parameter
// default. Exactly one field is meaningful, chosen by the owning record's
// ParamType; Pointer-typed defaults are always absent.
type ParamValue struct {
	Int    int32
	Bool   bool
	Float  float32
	Str    string
	Vec3   [3]float32
	IsNull bool
}

func readParamValue(r *Reader, t ParamType) (ParamValue, error) {
	var v ParamValue
	var err error
	switch t {
	case ParamInt:
		v.Int, err = r.ReadS32()
	case ParamBool:
		var u uint32
		u, err = r.ReadU32()
		v.Bool = u != 0
	case ParamFloat:
		v.Float, err = r.ReadF32()
	case ParamString:
		v.Str, err = r.ReadStringOffset()
	case ParamVector3F:
		v.Vec3, err = r.ReadVec3()
	case ParamPointer:
		v.IsNull = true
	default:
		return v, fmt.Errorf("%w: param type %d", ErrInvalidEnumValue, int(t))
	}
	return v, err
}

// Property is a typed static value attached to a node or an attachment.
type Property struct {
	Name string
	// Classname is populated only when Type == ParamPointer.
	Classname string
	Type      ParamType
	Flags     ParamFlag
	Default   ParamValue
}

func readProperty(r *Reader, t ParamType) (Property, error) {
	p := Property{Type: t}
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
	val, err := readParamValue(r, t)
	if err != nil {
		return p, err
	}
	p.Default = val
	return p, nil
}

// PropertySet is the six ordered per-type Property lists owned by a node
// or an attachment.
type PropertySet struct {
	properties [paramTypeCount][]Property
}

// Properties returns the ordered list for t.
func (ps *PropertySet) Properties(t ParamType) []Property { return ps.properties[t] }

// readPropertySet decodes a PropertySet per §4.4: six 32-bit offsets (one
// per type), each type's range running from its own offset to the next
// type's offset, or endOffset for the last type.
func readPropertySet(r *Reader, endOffset int) (*PropertySet, error) {
	var offsets [paramTypeCount]uint32
	for i := range offsets {
		off, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		offsets[i] = off
	}

	ps := &PropertySet{}
	for t := 0; t < paramTypeCount; t++ {
		t := t
		rangeEnd := endOffset
		if t+1 < paramTypeCount {
			rangeEnd = int(offsets[t+1])
		}
		count := 0
		if size := propertySize(ParamType(t)); size > 0 {
			count = (rangeEnd - int(offsets[t])) / size
		}
		if count < 0 {
			count = 0
		}
		props := make([]Property, count)
		err := r.TempSeek(int(offsets[t]), func() error {
			for i := range props {
				p, err := readProperty(r, ParamType(t))
				if err != nil {
					return err
				}
				props[i] = p
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		ps.properties[t] = props
	}
	return ps, nil
}
