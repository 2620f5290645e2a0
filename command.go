package ainb

// Command is a named entry point into the node graph. Files never share a
// root node between two commands in practice, but nothing in the format
// enforces that.
type Command struct {
	Name          string
	GUID          [16]byte
	ExtraGUID     [16]byte
	LeftNodeIndex int32
}

func readCommand(r *Reader) (Command, error) {
	var c Command
	name, err := r.ReadStringOffset()
	if err != nil {
		return c, err
	}
	c.Name = name
	guid, err := r.ReadGUID()
	if err != nil {
		return c, err
	}
	c.GUID = guid
	extra, err := r.ReadGUID()
	if err != nil {
		return c, err
	}
	c.ExtraGUID = extra
	left, err := r.ReadS32()
	if err != nil {
		return c, err
	}
	c.LeftNodeIndex = left
	return c, nil
}

func readCommandTable(r *Reader, count int) ([]Command, error) {
	out := make([]Command, count)
	for i := range out {
		c, err := readCommand(r)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
