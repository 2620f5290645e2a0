package ainb

// Attachment is an auxiliary bundle of properties attached to a node. The
// expression-count/IO-size fields the format stores alongside it are
// re-derivable from the properties themselves and kept only as
// informational metadata.
type Attachment struct {
	Name             string
	ExpressionCount  uint16
	ExpressionIOSize uint16
	Properties       PropertySet
}

// readAttachment decodes one Attachment record. properties is the
// file-level PropertySet this attachment's own sets are sliced from.
func readAttachment(r *Reader, version uint32, properties *PropertySet) (Attachment, error) {
	var a Attachment
	name, err := r.ReadStringOffset()
	if err != nil {
		return a, err
	}
	a.Name = name
	offset, err := r.ReadU32()
	if err != nil {
		return a, err
	}
	exprCount, err := r.ReadU16()
	if err != nil {
		return a, err
	}
	a.ExpressionCount = exprCount
	exprIO, err := r.ReadU16()
	if err != nil {
		return a, err
	}
	a.ExpressionIOSize = exprIO
	if version >= 0x407 {
		if _, err := r.ReadU32(); err != nil { // murmur3 hash of the attachment name
			return a, err
		}
	}

	err = r.TempSeek(int(offset), func() error {
		if _, err := r.ReadU32(); err != nil { // unknown leading dword
			return err
		}
		for t := 0; t < paramTypeCount; t++ {
			rng, err := readParamRange(r)
			if err != nil {
				return err
			}
			if int(rng.baseIndex)+int(rng.count) > len(properties.properties[t]) {
				return outOfBounds(int(rng.baseIndex), int(rng.count), len(properties.properties[t]))
			}
			a.Properties.properties[t] = append([]Property(nil), properties.properties[t][rng.baseIndex:rng.baseIndex+rng.count]...)
		}
		// 0x30 bytes of unknown trailing data follow; not preserved.
		return nil
	})
	return a, err
}
