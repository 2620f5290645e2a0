package ainb

// EnumDatabase maps classname -> value name -> signed 32-bit integer. It
// is supplied by the caller (typically loaded by the enumdb package from a
// game-specific JSON resource) and treated as effectively immutable once
// installed: concurrent readers are safe, concurrent writers are not and
// must be serialised externally.
type EnumDatabase map[string]map[string]int32

// Lookup resolves (class, value) against the database. ok is false when
// either the class or the value name is absent.
func (db EnumDatabase) Lookup(class, value string) (int32, bool) {
	if db == nil {
		return 0, false
	}
	values, ok := db[class]
	if !ok {
		return 0, false
	}
	v, ok := values[value]
	return v, ok
}

// EnumPatch is one late-binding patch read from an AINB file's enum
// resolution table: at decode time patch_offset is absolute within the
// file buffer.
type EnumPatch struct {
	PatchOffset int
	ClassName   string
	ValueName   string
}

// resolveEnumPatches applies every patch to r's underlying buffer. Patch
// application is a total overwrite (not a delta), so applying the same
// list twice yields identical bytes both times. Out-of-bounds offsets and
// unknown (class, value) pairs are non-fatal: they are reported to sink
// and skipped. Resolution must run before anything else reads the patched
// sites, which is why the container calls this immediately after reading
// the patch list and before any later section decode.
func resolveEnumPatches(r *Reader, patches []EnumPatch, db EnumDatabase, sink DiagnosticSink) {
	for _, p := range patches {
		if p.PatchOffset < 0 || p.PatchOffset+4 > r.Len() {
			warnEnumPatchOutOfBounds(sink, int64(p.PatchOffset))
			continue
		}
		v, ok := db.Lookup(p.ClassName, p.ValueName)
		if !ok {
			warnUnknownEnumEntry(sink, int64(p.PatchOffset), p.ClassName, p.ValueName)
			continue
		}
		// Patch errors can't happen here: the bounds check above already
		// guarantees the write fits.
		_ = r.Patch(p.PatchOffset, v)
	}
}

// readEnumPatchTable reads the enum resolution table: a count-prefixed
// list of (patch_offset, classname offset, value_name offset) records.
func readEnumPatchTable(r *Reader) ([]EnumPatch, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	patches := make([]EnumPatch, 0, count)
	for i := uint32(0); i < count; i++ {
		offset, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		class, err := r.ReadStringOffset()
		if err != nil {
			return nil, err
		}
		value, err := r.ReadStringOffset()
		if err != nil {
			return nil, err
		}
		patches = append(patches, EnumPatch{
			PatchOffset: int(offset),
			ClassName:   class,
			ValueName:   value,
		})
	}
	return patches, nil
}
