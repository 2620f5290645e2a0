package ainb

// StateInfo is a Splatoon-3-specific per-node record identifying a
// desired game state, present only in version 0x404 files. A non-zero
// state-info offset in a later version is a non-fatal warning, not an
// error.
type StateInfo struct {
	DesiredState string
	Unk04        uint32
	Unk08        uint32
	Unk0C        uint32
	Unk10        uint32
}

func readStateInfo(r *Reader) (StateInfo, error) {
	var s StateInfo
	name, err := r.ReadStringOffset()
	if err != nil {
		return s, err
	}
	s.DesiredState = name
	if s.Unk04, err = r.ReadU32(); err != nil {
		return s, err
	}
	if s.Unk08, err = r.ReadU32(); err != nil {
		return s, err
	}
	if s.Unk0C, err = r.ReadU32(); err != nil {
		return s, err
	}
	if s.Unk10, err = r.ReadU32(); err != nil {
		return s, err
	}
	return s, nil
}
