package ainb

// Action is an XLink action descriptor (slot name + action name) keyed by
// node index; a node may own zero or more.
type Action struct {
	Slot   string
	Action string
}

// readActionTable reads the file-level action section: a count-prefixed
// run of (node index, slot name, action name) records. Multiple records
// may target the same node index; they accumulate in declaration order.
func readActionTable(r *Reader) (map[int32][]Action, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	actions := make(map[int32][]Action, count)
	for i := uint32(0); i < count; i++ {
		index, err := r.ReadS32()
		if err != nil {
			return nil, err
		}
		slot, err := r.ReadStringOffset()
		if err != nil {
			return nil, err
		}
		name, err := r.ReadStringOffset()
		if err != nil {
			return nil, err
		}
		actions[index] = append(actions[index], Action{Slot: slot, Action: name})
	}
	return actions, nil
}
