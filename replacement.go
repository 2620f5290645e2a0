package ainb

import "fmt"

// ReplacementType classifies a ReplacementEntry. Invalid marks a type that
// is not one of the three known kinds (the JSON view maps an unrecognised
// type name to it); the zero value is RemoveChild.
type ReplacementType int32

const (
	ReplacementInvalid          ReplacementType = -1
	ReplacementRemoveChild      ReplacementType = 0
	ReplacementReplaceChild     ReplacementType = 1
	ReplacementRemoveAttachment ReplacementType = 2
)

func (t ReplacementType) String() string {
	switch t {
	case ReplacementInvalid:
		return "Invalid"
	case ReplacementRemoveChild:
		return "RemoveChild"
	case ReplacementReplaceChild:
		return "ReplaceChild"
	case ReplacementRemoveAttachment:
		return "RemoveAttachment"
	default:
		return fmt.Sprintf("ReplacementType(%d)", int32(t))
	}
}

// ReplacementEntry is a runtime mutation directive, present only in files
// with version >= 0x407.
type ReplacementEntry struct {
	Type ReplacementType
	// NodeIndex is the node the directive applies to.
	NodeIndex int16
	// ReplaceIndex is a child-plug index for RemoveChild/ReplaceChild, or
	// an attachment index for RemoveAttachment.
	ReplaceIndex int16
	// NewIndex is meaningful only for ReplaceChild.
	NewIndex int16
}

func readReplacementEntry(r *Reader) (ReplacementEntry, error) {
	kind, err := r.ReadU8()
	if err != nil {
		return ReplacementEntry{}, err
	}
	if _, err := r.ReadU8(); err != nil { // padding
		return ReplacementEntry{}, err
	}
	nodeIndex, err := r.ReadS16()
	if err != nil {
		return ReplacementEntry{}, err
	}
	replaceIndex, err := r.ReadS16()
	if err != nil {
		return ReplacementEntry{}, err
	}
	newIndex, err := r.ReadS16()
	if err != nil {
		return ReplacementEntry{}, err
	}
	return ReplacementEntry{
		Type:         ReplacementType(kind),
		NodeIndex:    nodeIndex,
		ReplaceIndex: replaceIndex,
		NewIndex:     newIndex,
	}, nil
}
