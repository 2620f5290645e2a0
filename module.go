package ainb

// Module is an external-file reference used by Is-Module nodes.
type Module struct {
	Path          string
	Category      string
	InstanceCount uint32
}

func readModule(r *Reader) (Module, error) {
	path, err := r.ReadStringOffset()
	if err != nil {
		return Module{}, err
	}
	category, err := r.ReadStringOffset()
	if err != nil {
		return Module{}, err
	}
	count, err := r.ReadU32()
	if err != nil {
		return Module{}, err
	}
	return Module{Path: path, Category: category, InstanceCount: count}, nil
}

func readModuleTable(r *Reader) ([]Module, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]Module, count)
	for i := range out {
		m, err := readModule(r)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// hasModule reports whether modules contains a path matching name+".ainb".
func hasModule(modules []Module, name string) bool {
	want := name + ".ainb"
	for _, m := range modules {
		if m.Path == want {
			return true
		}
	}
	return false
}
