package ainb

import (
	"fmt"

	"github.com/nx-tools/ainb/log"
)

// FileCategory enumerates the closed set of graph categories a version
// >0x404 file declares through an integer; v0x404 files carry the same
// field as an unused, always-zero dword and rely on the free-string
// Category field instead.
type FileCategory int32

const (
	CategoryAI                FileCategory = 0
	CategoryLogic             FileCategory = 1
	CategorySequence          FileCategory = 2
	CategoryUniqueSequence    FileCategory = 3
	CategoryUniqueSequenceSPL FileCategory = 4
)

func (c FileCategory) String() string {
	switch c {
	case CategoryAI:
		return "AI"
	case CategoryLogic:
		return "Logic"
	case CategorySequence:
		return "Sequence"
	case CategoryUniqueSequence:
		return "UniqueSequence"
	case CategoryUniqueSequenceSPL:
		return "UniqueSequenceSPL"
	default:
		return fmt.Sprintf("FileCategory(%d)", int32(c))
	}
}

// UnknownSection0x58 is an unidentified record observed mostly in v0x404
// files; its shape is preserved verbatim because its purpose isn't known.
type UnknownSection0x58 struct {
	Description string
	Unk04       uint32
	Unk08       uint32
	Unk0C       uint32
}

// supportedAINBVersions is the set of container versions decode accepts.
var supportedAINBVersions = map[uint32]bool{0x404: true, 0x407: true}

// AINB is the decoded, fully-owned in-memory form of one .ainb file: every
// sliced sub-table (properties, attachments, parameters, plugs) is an
// independent copy, not a view into the input buffer.
type AINB struct {
	Version            uint32
	Filename           string
	Category           string
	BlackboardID       uint32
	ParentBlackboardID uint32

	Commands []Command
	Nodes    []*Node

	Blackboard  *Blackboard
	Expressions *ExpressionModule

	// MultiSources is the file-level multi-source table; an InputParam
	// whose Source.Kind is SourceMulti addresses a contiguous run of it
	// via Source.MultiBase/Source.MultiCount.
	MultiSources []MultiSourceEntry

	ReplacementTable   []ReplacementEntry
	Modules            []Module
	UnknownSection0x58 *UnknownSection0x58

	Warnings []Warning
}

// Options configures decode. A zero Options decodes with no enum database
// (patches that need one are skipped with a warning) and a nop logger.
type Options struct {
	Logger log.Logger
	EnumDB EnumDatabase
	// Mutable exists for interface parity with the source library's
	// read_only/writable distinction. Go decode always works over a
	// private, owned copy of the input regardless of this flag, so it
	// has no effect on whether patching can happen; it is reserved for a
	// future fail-fast assertion and currently unused.
	Mutable bool
	// Sink, if set, receives every warning in addition to Warnings being
	// populated. Most callers can leave this nil and just inspect
	// AINB.Warnings afterward.
	Sink DiagnosticSink
}

// New reads an AINB file from path, memory-mapping it read-only and then
// copying into a private mutable buffer before decoding (enum resolution
// needs write access; the mapping itself is never written).
func New(path string, opts *Options) (*AINB, error) {
	data, err := mmapReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewBytes(data, opts)
}

// NewBytes decodes an AINB file already held in memory. The input is
// copied internally; callers may reuse or discard data afterward.
func NewBytes(data []byte, opts *Options) (*AINB, error) {
	if opts == nil {
		opts = &Options{}
	}
	buf := append([]byte(nil), data...)
	r := NewReader(buf)

	var warnings []Warning
	sink := opts.Sink
	if sink == nil {
		sink = collectingSink{warnings: &warnings, logger: opts.Logger}
	} else {
		// Still collect into Warnings even when the caller supplies their
		// own sink, mirroring pe.Anomalies always being populated.
		userSink := sink
		sink = SinkFunc(func(w Warning) {
			warnings = append(warnings, w)
			userSink.Warn(w)
		})
	}

	ainb, err := decode(r, opts.EnumDB, sink)
	if err != nil {
		return nil, err
	}
	ainb.Warnings = warnings
	return ainb, nil
}

func decode(r *Reader, enumDB EnumDatabase, sink DiagnosticSink) (*AINB, error) {
	a := &AINB{}

	magic, err := r.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != "AIB " {
		return nil, &MagicError{Want: "AIB ", Got: magic}
	}

	a.Version, err = r.ReadU32()
	if err != nil {
		return nil, err
	}
	if !supportedAINBVersions[a.Version] {
		return nil, &VersionError{Got: a.Version}
	}

	filenameOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	commandCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	nodeCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	_, err = r.ReadU32() // query_count: number of nodes that are queries, not a table length
	if err != nil {
		return nil, err
	}
	attachmentCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	_, err = r.ReadU32() // output_count: informational, re-derivable from io_params
	if err != nil {
		return nil, err
	}
	blackboardOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	stringPoolOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	r.SetStringPool(int(stringPoolOffset), r.Len()-int(stringPoolOffset))

	filename, err := r.GetString(filenameOffset)
	if err != nil {
		return nil, err
	}
	a.Filename = filename

	enumResolveOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	propertyOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	transitionOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	ioParamOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	multiParamOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	attachmentOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	attachmentIndexOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	expressionOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	replacementOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	queryOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	x50, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	x54, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	x58, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	moduleOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	categoryNameOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	category, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	actionOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	x6c, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	blackboardIDOffset, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	categoryName, err := r.GetString(categoryNameOffset)
	if err != nil {
		return nil, err
	}
	a.Category = categoryName
	if a.Version > 0x404 {
		if a.Category != FileCategory(category).String() {
			warnCategoryMismatch(sink, int32(category), a.Category)
		}
	} else if category != 0 {
		warnReservedFieldNonZero(sink, 0, "category", category)
	}

	a.Commands, err = readCommandTable(r, int(commandCount))
	if err != nil {
		return nil, err
	}

	nodeOffset := r.Tell()

	r.Seek(int(enumResolveOffset))
	patches, err := readEnumPatchTable(r)
	if err != nil {
		return nil, err
	}
	if len(patches) > 0 {
		if len(enumDB) == 0 {
			warnEmptyEnumDatabase(sink)
		}
		resolveEnumPatches(r, patches, enumDB, sink)
	}

	r.Seek(int(blackboardOffset))
	a.Blackboard, err = readBlackboard(r)
	if err != nil {
		return nil, err
	}

	if expressionOffset != 0 {
		sub := NewReader(r.Bytes()[expressionOffset:moduleOffset])
		a.Expressions, err = readExpressionModule(sub)
		if err != nil {
			return nil, err
		}
	}

	r.Seek(int(propertyOffset))
	properties, err := readPropertySet(r, int(ioParamOffset))
	if err != nil {
		return nil, err
	}

	r.Seek(int(attachmentOffset))
	attachments := make([]Attachment, attachmentCount)
	for i := range attachments {
		att, err := readAttachment(r, a.Version, properties)
		if err != nil {
			return nil, err
		}
		attachments[i] = att
	}

	r.Seek(int(attachmentIndexOffset))
	attachmentIndices := make([]uint32, (int(attachmentOffset)-int(attachmentIndexOffset))/4)
	for i := range attachmentIndices {
		idx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		attachmentIndices[i] = idx
	}

	r.Seek(int(multiParamOffset))
	a.MultiSources, err = readMultiSourceTable(r, (int(transitionOffset)-int(multiParamOffset))/8)
	if err != nil {
		return nil, err
	}

	r.Seek(int(ioParamOffset))
	ioParams, err := readParamSet(r, int(multiParamOffset))
	if err != nil {
		return nil, err
	}

	var transitions []Transition
	if int(transitionOffset) < int(queryOffset) {
		r.Seek(int(transitionOffset))
		transitions, err = readTransitionTable(r)
		if err != nil {
			return nil, err
		}
	}

	// query_count from the header counts nodes that are queries, not the
	// length of this table, so the table's extent is inferred from the
	// next section's offset instead.
	queryTableEnd := int(expressionOffset)
	if expressionOffset == 0 {
		queryTableEnd = int(moduleOffset)
	}
	var queries []int32
	if int(queryOffset) < queryTableEnd {
		r.Seek(int(queryOffset))
		for i := 0; i < (queryTableEnd-int(queryOffset))/4; i++ {
			idx, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			if _, err := r.ReadU16(); err != nil { // padding, always 0
				return nil, err
			}
			queries = append(queries, int32(idx))
		}
	}

	r.Seek(int(actionOffset))
	actions, err := readActionTable(r)
	if err != nil {
		return nil, err
	}

	r.Seek(int(moduleOffset))
	a.Modules, err = readModuleTable(r)
	if err != nil {
		return nil, err
	}

	r.Seek(int(blackboardIDOffset))
	a.BlackboardID, err = r.ReadU32()
	if err != nil {
		return nil, err
	}
	a.ParentBlackboardID, err = r.ReadU32()
	if err != nil {
		return nil, err
	}

	// Files before 0x407 don't appear to apply replacements even though
	// the header layout is already present, so the table is only read for
	// version >= 0x407.
	if a.Version >= 0x407 {
		r.Seek(int(replacementOffset))
		replaced, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		if replaced != 0 {
			warnReplacementsReapplied(sink)
		}
		if _, err := r.ReadU8(); err != nil { // padding
			return nil, err
		}
		replaceCount, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadU16(); err != nil { // node-related entry count, re-derivable
			return nil, err
		}
		if _, err := r.ReadU16(); err != nil { // attachment-related entry count, re-derivable
			return nil, err
		}
		a.ReplacementTable = make([]ReplacementEntry, replaceCount)
		for i := range a.ReplacementTable {
			entry, err := readReplacementEntry(r)
			if err != nil {
				return nil, err
			}
			a.ReplacementTable[i] = entry
		}
	} else if replacementOffset != 0 {
		warnReplacementsPreDate407(sink, a.Version)
	}

	r.Seek(nodeOffset)
	a.Nodes = make([]*Node, nodeCount)
	for i := range a.Nodes {
		node, err := readNode(r, a.Version, i, attachments, attachmentIndices, properties, ioParams, transitions, queries, actions, a.Modules, sink)
		if err != nil {
			return nil, err
		}
		a.Nodes[i] = node
	}

	var queryIndices []int32
	for i, node := range a.Nodes {
		if node.Flags.IsQuery() {
			queryIndices = append(queryIndices, int32(i))
		}
	}
	for _, node := range a.Nodes {
		fixed := make([]int32, len(node.Queries))
		for i, q := range node.Queries {
			if int(q) < 0 || int(q) >= len(queryIndices) {
				return nil, outOfBounds(int(q), 1, len(queryIndices))
			}
			fixed[i] = queryIndices[q]
		}
		node.Queries = fixed
	}

	if x50 != transitionOffset {
		warnTrailingHeaderSection(sink, "0x50", x50)
	}
	if x54 != 0 {
		warnReservedFieldNonZero(sink, 0x54, "0x54", x54)
	}
	if x58 != 0 {
		err := r.TempSeek(int(x58), func() error {
			desc, err := r.ReadStringOffset()
			if err != nil {
				return err
			}
			u04, err := r.ReadU32()
			if err != nil {
				return err
			}
			u08, err := r.ReadU32()
			if err != nil {
				return err
			}
			u0c, err := r.ReadU32()
			if err != nil {
				return err
			}
			a.UnknownSection0x58 = &UnknownSection0x58{Description: desc, Unk04: u04, Unk08: u08, Unk0C: u0c}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if x6c != 0 {
		err := r.TempSeek(int(x6c), func() error {
			countMaybe, err := r.ReadU32()
			if err != nil {
				return err
			}
			if countMaybe != 0 {
				warnTrailingHeaderSection(sink, "0x6c", countMaybe)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return a, nil
}

// GetNode returns the node at index, or nil if out of range.
func (a *AINB) GetNode(index int) *Node {
	if index < 0 || index >= len(a.Nodes) {
		return nil
	}
	return a.Nodes[index]
}

// GetCommand returns the command at index, or nil if out of range.
func (a *AINB) GetCommand(index int) *Command {
	if index < 0 || index >= len(a.Commands) {
		return nil
	}
	return &a.Commands[index]
}

// GetCommandByName returns the first command with the given name, or nil.
func (a *AINB) GetCommandByName(name string) *Command {
	for i := range a.Commands {
		if a.Commands[i].Name == name {
			return &a.Commands[i]
		}
	}
	return nil
}
