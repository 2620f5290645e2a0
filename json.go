package ainb

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func parseHexU32(s string) uint32 {
	v, _ := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	return uint32(v)
}

// This file implements the JSON interchange form: a structural dump/load
// that mirrors every decoded field under the same section names a reader
// of a disassembly would expect, independent of the binary layout. It is
// not meant to round-trip byte-for-byte; it is meant to be editable and
// re-encodable by a caller working with Node/Plug/Property graphs instead
// of raw offsets.

func guidString(g [16]byte) string {
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hex.EncodeToString(g[0:4]), hex.EncodeToString(g[4:6]),
		hex.EncodeToString(g[6:8]), hex.EncodeToString(g[8:10]),
		hex.EncodeToString(g[10:16]))
}

func parseGUIDString(s string) ([16]byte, error) {
	var g [16]byte
	malformed := fmt.Errorf("%w: malformed GUID %q", ErrDictDecode, s)
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return g, malformed
	}
	raw := s[0:8] + s[9:13] + s[14:18] + s[19:23] + s[24:36]
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != 16 {
		return g, malformed
	}
	copy(g[:], b)
	return g, nil
}

func paramValueJSON(t ParamType, v ParamValue) interface{} {
	switch t {
	case ParamInt:
		return v.Int
	case ParamBool:
		return v.Bool
	case ParamFloat:
		return v.Float
	case ParamString:
		return v.Str
	case ParamVector3F:
		return v.Vec3
	case ParamPointer:
		return nil
	default:
		return nil
	}
}

func paramValueFromJSON(t ParamType, raw interface{}) (ParamValue, error) {
	var v ParamValue
	switch t {
	case ParamInt:
		f, ok := raw.(float64)
		if !ok {
			return v, fmt.Errorf("%w: expected number for int default", ErrDictDecode)
		}
		v.Int = int32(f)
	case ParamBool:
		b, ok := raw.(bool)
		if !ok {
			return v, fmt.Errorf("%w: expected bool for bool default", ErrDictDecode)
		}
		v.Bool = b
	case ParamFloat:
		f, ok := raw.(float64)
		if !ok {
			return v, fmt.Errorf("%w: expected number for float default", ErrDictDecode)
		}
		v.Float = float32(f)
	case ParamString:
		s, ok := raw.(string)
		if !ok {
			return v, fmt.Errorf("%w: expected string for string default", ErrDictDecode)
		}
		v.Str = s
	case ParamVector3F:
		arr, ok := raw.([]interface{})
		if !ok || len(arr) != 3 {
			return v, fmt.Errorf("%w: expected 3-element array for vector default", ErrDictDecode)
		}
		for i, e := range arr {
			f, ok := e.(float64)
			if !ok {
				return v, fmt.Errorf("%w: vector component is not a number", ErrDictDecode)
			}
			v.Vec3[i] = float32(f)
		}
	case ParamPointer:
		v.IsNull = true
	}
	return v, nil
}

func propertyJSON(p Property) map[string]interface{} {
	m := map[string]interface{}{"Name": p.Name}
	if p.Type == ParamPointer {
		m["Classname"] = p.Classname
	}
	m["Default Value"] = paramValueJSON(p.Type, p.Default)
	m["Flags"] = fmt.Sprintf("%#x", p.Flags.Raw)
	return m
}

func propertyFromJSON(t ParamType, m map[string]interface{}) (Property, error) {
	p := Property{Type: t}
	name, _ := m["Name"].(string)
	p.Name = name
	if t == ParamPointer {
		cn, _ := m["Classname"].(string)
		p.Classname = cn
	}
	def, err := paramValueFromJSON(t, m["Default Value"])
	if err != nil {
		return p, err
	}
	p.Default = def
	if flagStr, ok := m["Flags"].(string); ok {
		p.Flags = ParamFlag{Raw: parseHexU32(flagStr)}
	}
	return p, nil
}

func propertySetJSON(ps *PropertySet) map[string]interface{} {
	m := map[string]interface{}{}
	for t := 0; t < paramTypeCount; t++ {
		props := ps.properties[t]
		if len(props) == 0 {
			continue
		}
		list := make([]map[string]interface{}, len(props))
		for i, p := range props {
			p.Type = ParamType(t)
			list[i] = propertyJSON(p)
		}
		m[ParamType(t).String()] = list
	}
	return m
}

func propertySetFromJSON(raw map[string]interface{}) (*PropertySet, error) {
	ps := &PropertySet{}
	for t := 0; t < paramTypeCount; t++ {
		pt := ParamType(t)
		v, ok := raw[pt.String()]
		if !ok {
			continue
		}
		list, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an array", ErrDictDecode, pt)
		}
		props := make([]Property, len(list))
		for i, e := range list {
			em, ok := e.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: property entry is not an object", ErrDictDecode)
			}
			p, err := propertyFromJSON(pt, em)
			if err != nil {
				return nil, err
			}
			props[i] = p
		}
		ps.properties[t] = props
	}
	return ps, nil
}

func sourceJSON(s ParamSource) map[string]interface{} {
	switch s.Kind {
	case SourceBlackboard:
		return map[string]interface{}{"Kind": "Blackboard", "Blackboard Index": s.BlackboardIndex}
	case SourceExpression:
		return map[string]interface{}{"Kind": "Expression", "Expression Index": s.ExpressionIndex, "Source Node Index": s.SrcNodeIndex}
	case SourceDirect:
		return map[string]interface{}{"Kind": "Direct", "Source Node Index": s.SrcNodeIndex, "Source Output Index": s.SrcOutputIndex}
	case SourceMulti:
		return map[string]interface{}{"Kind": "Multi", "Multi Base": s.MultiBase, "Multi Count": s.MultiCount}
	default:
		return map[string]interface{}{"Kind": "Literal"}
	}
}

func sourceFromJSON(m map[string]interface{}) ParamSource {
	src := ParamSource{SrcNodeIndex: -1}
	kind, _ := m["Kind"].(string)
	switch kind {
	case "Blackboard":
		src.Kind = SourceBlackboard
		src.BlackboardIndex = int16(asFloat(m["Blackboard Index"]))
	case "Expression":
		src.Kind = SourceExpression
		src.ExpressionIndex = int16(asFloat(m["Expression Index"]))
		src.SrcNodeIndex = int16(asFloat(m["Source Node Index"]))
	case "Direct":
		src.Kind = SourceDirect
		src.SrcNodeIndex = int16(asFloat(m["Source Node Index"]))
		src.SrcOutputIndex = int16(asFloat(m["Source Output Index"]))
	case "Multi":
		src.Kind = SourceMulti
		src.MultiBase = int16(asFloat(m["Multi Base"]))
		src.MultiCount = int16(asFloat(m["Multi Count"]))
	default:
		src.Kind = SourceLiteral
	}
	return src
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func inputParamJSON(p InputParam) map[string]interface{} {
	return map[string]interface{}{
		"Name":          p.Name,
		"Default Value": paramValueJSON(p.Type, p.Default),
		"Source":        sourceJSON(p.Source),
	}
}

func outputParamJSON(p OutputParam) map[string]interface{} {
	m := map[string]interface{}{"Name": p.Name}
	if p.Type == ParamPointer {
		m["Classname"] = p.Classname
	}
	m["Flags"] = fmt.Sprintf("%#x", p.Flags.Raw)
	return m
}

func paramSetJSON(ps *ParamSet) map[string]interface{} {
	in := map[string]interface{}{}
	out := map[string]interface{}{}
	for t := 0; t < paramTypeCount; t++ {
		if len(ps.Inputs[t]) > 0 {
			list := make([]map[string]interface{}, len(ps.Inputs[t]))
			for i, p := range ps.Inputs[t] {
				list[i] = inputParamJSON(p)
			}
			in[ParamType(t).String()] = list
		}
		if len(ps.Outputs[t]) > 0 {
			list := make([]map[string]interface{}, len(ps.Outputs[t]))
			for i, p := range ps.Outputs[t] {
				list[i] = outputParamJSON(p)
			}
			out[ParamType(t).String()] = list
		}
	}
	return map[string]interface{}{"Input": in, "Output": out}
}

func attachmentJSON(a Attachment) map[string]interface{} {
	return map[string]interface{}{
		"Name":       a.Name,
		"Properties": propertySetJSON(&a.Properties),
	}
}

func actionJSON(a Action) map[string]interface{} {
	return map[string]interface{}{"Action Slot": a.Slot, "Action": a.Action}
}

func stateInfoJSON(s StateInfo) map[string]interface{} {
	return map[string]interface{}{
		"Desired State": s.DesiredState,
		"Unknown04":     s.Unk04,
		"Unknown08":     s.Unk08,
		"Unknown0C":     s.Unk0C,
		"Unknown10":     s.Unk10,
	}
}

func plugJSON(p Plug) map[string]interface{} {
	m := map[string]interface{}{"Node Index": p.TargetNodeIndex()}
	switch v := p.(type) {
	case GenericPlug:
		m["Name"] = v.Name
	case ChildPlug:
		m["Name"] = v.Name
	case S32SelectorPlug:
		m["Name"] = v.Name
		if v.IsDefault {
			m["Is Default"] = true
		} else {
			m["Condition"] = v.Condition
			if v.BlackboardIndex != -1 {
				m["Blackboard Index"] = v.BlackboardIndex
			}
		}
	case F32SelectorPlug:
		m["Name"] = v.Name
		if v.IsDefault {
			m["Is Default"] = true
		} else {
			m["Condition Min"] = v.ConditionMin
			m["Condition Max"] = v.ConditionMax
			if v.BlackboardIndexMin != -1 {
				m["Blackboard Index Min"] = v.BlackboardIndexMin
			}
			if v.BlackboardIndexMax != -1 {
				m["Blackboard Index Max"] = v.BlackboardIndexMax
			}
		}
	case StringSelectorPlug:
		m["Name"] = v.Name
		if v.IsDefault {
			m["Is Default"] = true
		} else {
			m["Condition"] = v.Condition
			if v.BlackboardIndex != -1 {
				m["Blackboard Index"] = v.BlackboardIndex
			}
		}
	case RandomSelectorPlug:
		m["Name"] = v.Name
		m["Weight"] = v.Weight
	case BSASelectorUpdaterPlug:
		m["Name"] = v.Name
		m["Unknown0"] = v.Unk0
		m["Unknown1"] = v.Unk1
	case TransitionPlug:
		m["Transition Type"] = v.Transition.Type
		m["Update Post Calc"] = v.Transition.PostCalcUpdate
		if v.Transition.Type == TransitionStateEnd {
			m["Transition Name"] = v.Transition.CommandName
		}
	case StringInputPlug:
		m["Name"] = v.Name
		if v.HasDefault {
			m["Unknown"] = v.Unknown
			m["Default Value"] = v.DefaultValue
		}
	case IntInputPlug:
		m["Name"] = v.Name
		if v.HasDefault {
			m["Unknown"] = v.Unknown
			m["Default Value"] = v.DefaultValue
		}
	}
	return m
}

func nodeJSON(n *Node) map[string]interface{} {
	m := map[string]interface{}{
		"Node Type":  n.Type.String(),
		"Node Index": n.Index,
		"Name":       n.Name,
		"GUID":       guidString(n.GUID),
		"Flags":      n.Flags.Names(),
		"Queries":    n.Queries,
	}
	attachments := make([]map[string]interface{}, len(n.Attachments))
	for i, a := range n.Attachments {
		attachments[i] = attachmentJSON(a)
	}
	m["Attachments"] = attachments
	m["Properties"] = propertySetJSON(&n.Properties)
	m["Parameters"] = paramSetJSON(&n.Params)
	actions := make([]map[string]interface{}, len(n.Actions))
	for i, a := range n.Actions {
		actions[i] = actionJSON(a)
	}
	m["XLink Actions"] = actions
	if n.StateInfo != nil {
		m["State Info"] = stateInfoJSON(*n.StateInfo)
	}
	plugs := map[string]interface{}{}
	for t := 0; t < plugTypeCount; t++ {
		list := n.Plugs(PlugType(t))
		if len(list) == 0 {
			continue
		}
		out := make([]map[string]interface{}, len(list))
		for i, p := range list {
			out[i] = plugJSON(p)
		}
		plugs[PlugType(t).String()] = out
	}
	m["Plugs"] = plugs
	return m
}

func commandJSON(c Command) map[string]interface{} {
	return map[string]interface{}{
		"Name":            c.Name,
		"GUID":            guidString(c.GUID),
		"Extra GUID":      guidString(c.ExtraGUID),
		"Left Node Index": c.LeftNodeIndex,
	}
}

func moduleJSON(m Module) map[string]interface{} {
	return map[string]interface{}{
		"Path":           m.Path,
		"Category":       m.Category,
		"Instance Count": m.InstanceCount,
	}
}

func replacementJSON(e ReplacementEntry) map[string]interface{} {
	m := map[string]interface{}{"Type": e.Type.String(), "Node Index": e.NodeIndex}
	if e.Type != ReplacementRemoveAttachment {
		m["Child Plug Index"] = e.ReplaceIndex
		if e.Type == ReplacementReplaceChild {
			m["Replacement Node Index"] = e.NewIndex
		}
	} else {
		m["Attachment Index"] = e.ReplaceIndex
	}
	return m
}

func unknownSection0x58JSON(u *UnknownSection0x58) map[string]interface{} {
	if u == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}{
		"Description": u.Description,
		"Unknown04":   u.Unk04,
		"Unknown08":   u.Unk08,
		"Unknown0C":   u.Unk0C,
	}
}

func bbParamValueJSON(t BBParamType, v BBParamValue) interface{} {
	switch t {
	case BBParamString:
		return v.Str
	case BBParamS32:
		return v.S32
	case BBParamF32:
		return v.F32
	case BBParamBool:
		return v.Bool
	case BBParamVec3f:
		return v.Vec3
	default:
		return nil
	}
}

func bbParamJSON(index int, p BBParam) map[string]interface{} {
	m := map[string]interface{}{
		"Blackboard Index": index,
		"Name":             p.Name,
		"Notes":            p.Notes,
	}
	if p.FileRef != "" {
		m["Source File"] = p.FileRef
	}
	m["Flags"] = p.Flags
	m["Default Value"] = bbParamValueJSON(p.Type, p.Default)
	return m
}

func blackboardJSON(bb *Blackboard) map[string]interface{} {
	m := map[string]interface{}{}
	for t := 0; t < bbParamTypeCount; t++ {
		params := bb.params[t]
		if len(params) == 0 {
			continue
		}
		list := make([]map[string]interface{}, len(params))
		for i, p := range params {
			list[i] = bbParamJSON(i, p)
		}
		m[BBParamType(t).String()] = list
	}
	return m
}

func instructionJSON(inst Instruction, offset int) map[string]interface{} {
	return map[string]interface{}{
		"Offset": offset,
		"Opcode": inst.Opcode.String(),
		"Operand": fmt.Sprintf("%x", inst.Operand),
	}
}

func expressionJSON(index int, e Expression) map[string]interface{} {
	m := map[string]interface{}{
		"Expression Index": index,
		"Input Type":       e.InputDataType.String(),
		"Output Type":      e.OutputDataType.String(),
	}
	if len(e.SetupCommand) > 0 {
		setup := make([]map[string]interface{}, len(e.SetupCommand))
		for i, inst := range e.SetupCommand {
			setup[i] = instructionJSON(inst, i*8)
		}
		m["Setup"] = setup
	}
	main := make([]map[string]interface{}, len(e.MainCommand))
	for i, inst := range e.MainCommand {
		main[i] = instructionJSON(inst, i*8)
	}
	m["Main"] = main
	return m
}

func expressionModuleJSON(em *ExpressionModule) map[string]interface{} {
	if em == nil {
		return map[string]interface{}{}
	}
	exprs := make([]map[string]interface{}, len(em.Expressions))
	for i, e := range em.Expressions {
		exprs[i] = expressionJSON(i, e)
	}
	return map[string]interface{}{
		"Version":     em.Version,
		"Expressions": exprs,
	}
}

// MarshalJSON implements the structural interchange form described above.
func (a *AINB) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"Version":              a.Version,
		"Filename":             a.Filename,
		"Category":             a.Category,
		"Blackboard ID":        a.BlackboardID,
		"Parent Blackboard ID": a.ParentBlackboardID,
	}
	commands := make([]map[string]interface{}, len(a.Commands))
	for i, c := range a.Commands {
		commands[i] = commandJSON(c)
	}
	m["Commands"] = commands

	nodes := make([]map[string]interface{}, len(a.Nodes))
	for i, n := range a.Nodes {
		nodes[i] = nodeJSON(n)
	}
	m["Nodes"] = nodes

	if a.Blackboard != nil {
		m["Blackboard"] = blackboardJSON(a.Blackboard)
	} else {
		m["Blackboard"] = map[string]interface{}{}
	}
	if a.Expressions != nil {
		m["Expressions"] = expressionModuleJSON(a.Expressions)
	} else {
		m["Expressions"] = map[string]interface{}{}
	}

	if a.Version >= 0x407 {
		replacements := make([]map[string]interface{}, len(a.ReplacementTable))
		for i, e := range a.ReplacementTable {
			replacements[i] = replacementJSON(e)
		}
		m["Replacement Table"] = replacements
	}

	modules := make([]map[string]interface{}, len(a.Modules))
	for i, mod := range a.Modules {
		modules[i] = moduleJSON(mod)
	}
	m["Modules"] = modules
	m["Unknown Section 0x58"] = unknownSection0x58JSON(a.UnknownSection0x58)

	return json.Marshal(m)
}

func asMap(v interface{}) (map[string]interface{}, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected object", ErrDictDecode)
	}
	return m, nil
}

func asArray(v interface{}) ([]interface{}, error) {
	a, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected array", ErrDictDecode)
	}
	return a, nil
}

func commandFromJSON(v interface{}) (Command, error) {
	var c Command
	m, err := asMap(v)
	if err != nil {
		return c, err
	}
	c.Name, _ = m["Name"].(string)
	if s, ok := m["GUID"].(string); ok {
		if c.GUID, err = parseGUIDString(s); err != nil {
			return c, err
		}
	}
	if s, ok := m["Extra GUID"].(string); ok {
		if c.ExtraGUID, err = parseGUIDString(s); err != nil {
			return c, err
		}
	}
	c.LeftNodeIndex = int32(asFloat(m["Left Node Index"]))
	return c, nil
}

func moduleFromJSON(v interface{}) (Module, error) {
	m, err := asMap(v)
	if err != nil {
		return Module{}, err
	}
	path, _ := m["Path"].(string)
	category, _ := m["Category"].(string)
	return Module{Path: path, Category: category, InstanceCount: uint32(asFloat(m["Instance Count"]))}, nil
}

func replacementFromJSON(v interface{}) (ReplacementEntry, error) {
	m, err := asMap(v)
	if err != nil {
		return ReplacementEntry{}, err
	}
	var e ReplacementEntry
	typeName, _ := m["Type"].(string)
	switch typeName {
	case "RemoveChild":
		e.Type = ReplacementRemoveChild
	case "ReplaceChild":
		e.Type = ReplacementReplaceChild
	case "RemoveAttachment":
		e.Type = ReplacementRemoveAttachment
	default:
		e.Type = ReplacementInvalid
	}
	e.NodeIndex = int16(asFloat(m["Node Index"]))
	if e.Type == ReplacementRemoveAttachment {
		e.ReplaceIndex = int16(asFloat(m["Attachment Index"]))
	} else {
		e.ReplaceIndex = int16(asFloat(m["Child Plug Index"]))
		if e.Type == ReplacementReplaceChild {
			e.NewIndex = int16(asFloat(m["Replacement Node Index"]))
		}
	}
	return e, nil
}

// UnmarshalJSON reconstructs an AINB from its structural interchange form.
// It is the inverse of MarshalJSON for data this package itself produced;
// it does not attempt to validate arbitrary hand-edited JSON beyond basic
// type checks.
func (a *AINB) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	a.Version = uint32(asFloat(m["Version"]))
	a.Filename, _ = m["Filename"].(string)
	a.Category, _ = m["Category"].(string)
	a.BlackboardID = uint32(asFloat(m["Blackboard ID"]))
	a.ParentBlackboardID = uint32(asFloat(m["Parent Blackboard ID"]))

	cmds, err := asArray(m["Commands"])
	if err != nil {
		return err
	}
	a.Commands = make([]Command, len(cmds))
	for i, c := range cmds {
		cmd, err := commandFromJSON(c)
		if err != nil {
			return err
		}
		a.Commands[i] = cmd
	}

	mods, err := asArray(m["Modules"])
	if err != nil {
		return err
	}
	a.Modules = make([]Module, len(mods))
	for i, mm := range mods {
		mod, err := moduleFromJSON(mm)
		if err != nil {
			return err
		}
		a.Modules[i] = mod
	}

	if a.Version >= 0x407 {
		reps, err := asArray(m["Replacement Table"])
		if err != nil {
			return err
		}
		a.ReplacementTable = make([]ReplacementEntry, len(reps))
		for i, r := range reps {
			entry, err := replacementFromJSON(r)
			if err != nil {
				return err
			}
			a.ReplacementTable[i] = entry
		}
	}

	if bb, ok := m["Blackboard"].(map[string]interface{}); ok && len(bb) > 0 {
		blackboard, err := blackboardFromJSON(bb)
		if err != nil {
			return err
		}
		a.Blackboard = blackboard
	}

	if em, ok := m["Expressions"].(map[string]interface{}); ok && len(em) > 0 {
		expressions, err := expressionModuleFromJSON(em)
		if err != nil {
			return err
		}
		a.Expressions = expressions
	}

	if u, ok := m["Unknown Section 0x58"].(map[string]interface{}); ok && len(u) > 0 {
		desc, _ := u["Description"].(string)
		a.UnknownSection0x58 = &UnknownSection0x58{
			Description: desc,
			Unk04:       uint32(asFloat(u["Unknown04"])),
			Unk08:       uint32(asFloat(u["Unknown08"])),
			Unk0C:       uint32(asFloat(u["Unknown0C"])),
		}
	}

	// Nodes are decoded last. Each node's plugs are rebuilt in nodeFromJSON
	// after that node's own Type and Name are set, because Child-slot plugs
	// dispatch on the owning node's kind and name.
	nodeList, err := asArray(m["Nodes"])
	if err != nil {
		return err
	}
	a.Nodes = make([]*Node, len(nodeList))
	for i, nv := range nodeList {
		n, err := nodeFromJSON(nv, i)
		if err != nil {
			return err
		}
		a.Nodes[i] = n
	}

	return nil
}

func blackboardFromJSON(m map[string]interface{}) (*Blackboard, error) {
	bb := &Blackboard{}
	for t := 0; t < bbParamTypeCount; t++ {
		pt := BBParamType(t)
		v, ok := m[pt.String()]
		if !ok {
			continue
		}
		list, err := asArray(v)
		if err != nil {
			return nil, err
		}
		params := make([]BBParam, len(list))
		for i, e := range list {
			pm, err := asMap(e)
			if err != nil {
				return nil, err
			}
			p := BBParam{Type: pt}
			p.Name, _ = pm["Name"].(string)
			p.Notes, _ = pm["Notes"].(string)
			p.FileRef, _ = pm["Source File"].(string)
			p.Flags = uint8(asFloat(pm["Flags"]))
			switch pt {
			case BBParamString:
				p.Default.Str, _ = pm["Default Value"].(string)
			case BBParamS32:
				p.Default.S32 = int32(asFloat(pm["Default Value"]))
			case BBParamF32:
				p.Default.F32 = float32(asFloat(pm["Default Value"]))
			case BBParamBool:
				p.Default.Bool, _ = pm["Default Value"].(bool)
			case BBParamVec3f:
				arr, err := asArray(pm["Default Value"])
				if err == nil && len(arr) == 3 {
					for j, c := range arr {
						p.Default.Vec3[j] = float32(asFloat(c))
					}
				}
			}
			params[i] = p
		}
		bb.params[t] = params
	}
	return bb, nil
}

func expressionModuleFromJSON(m map[string]interface{}) (*ExpressionModule, error) {
	em := &ExpressionModule{Version: uint32(asFloat(m["Version"]))}
	list, err := asArray(m["Expressions"])
	if err != nil {
		return nil, err
	}
	em.Expressions = make([]Expression, len(list))
	for i, ev := range list {
		em2, err := asMap(ev)
		if err != nil {
			return nil, err
		}
		var e Expression
		inName, _ := em2["Input Type"].(string)
		e.InputDataType = instDataTypeFromName(inName)
		outName, _ := em2["Output Type"].(string)
		e.OutputDataType = instDataTypeFromName(outName)
		if setup, ok := em2["Setup"]; ok {
			insts, err := instructionsFromJSON(setup)
			if err != nil {
				return nil, err
			}
			e.SetupCommand = insts
		}
		main, err := instructionsFromJSON(em2["Main"])
		if err != nil {
			return nil, err
		}
		e.MainCommand = main
		em.Expressions[i] = e
	}
	return em, nil
}

func instDataTypeFromName(name string) InstDataType {
	for t, n := range map[InstDataType]string{
		InstDataNone: "NONE", InstDataBool: "BOOL", InstDataInt: "INT",
		InstDataFloat: "FLOAT", InstDataString: "STRING", InstDataVector3F: "VECTOR3F",
	} {
		if n == name {
			return t
		}
	}
	return InstDataNone
}

func instructionsFromJSON(v interface{}) ([]Instruction, error) {
	arr, err := asArray(v)
	if err != nil {
		return nil, err
	}
	out := make([]Instruction, len(arr))
	for i, iv := range arr {
		im, err := asMap(iv)
		if err != nil {
			return nil, err
		}
		name, _ := im["Opcode"].(string)
		inst := Instruction{Opcode: instTypeFromName(name)}
		if operandHex, ok := im["Operand"].(string); ok {
			b, err := hex.DecodeString(operandHex)
			if err == nil && len(b) == 7 {
				copy(inst.Operand[:], b)
			}
		}
		out[i] = inst
	}
	return out, nil
}

func instTypeFromName(name string) InstType {
	for t, n := range instTypeNames {
		if n == name {
			return t
		}
	}
	return InstEnd
}

func nodeFromJSON(v interface{}, index int) (*Node, error) {
	m, err := asMap(v)
	if err != nil {
		return nil, err
	}
	n := &Node{Index: int16(index)}
	typeName, _ := m["Node Type"].(string)
	n.Type = nodeTypeFromName(typeName)
	n.Name, _ = m["Name"].(string)
	if s, ok := m["GUID"].(string); ok {
		if n.GUID, err = parseGUIDString(s); err != nil {
			return nil, err
		}
	}
	if names, ok := m["Flags"].([]interface{}); ok {
		strs := make([]string, len(names))
		for i, s := range names {
			strs[i], _ = s.(string)
		}
		n.Flags = nodeFlagFromNames(strs)
	}
	if qs, ok := m["Queries"].([]interface{}); ok {
		n.Queries = make([]int32, len(qs))
		for i, q := range qs {
			n.Queries[i] = int32(asFloat(q))
		}
	}
	if attachments, ok := m["Attachments"].([]interface{}); ok {
		n.Attachments = make([]Attachment, len(attachments))
		for i, av := range attachments {
			am, err := asMap(av)
			if err != nil {
				return nil, err
			}
			var a Attachment
			a.Name, _ = am["Name"].(string)
			if pm, ok := am["Properties"].(map[string]interface{}); ok {
				ps, err := propertySetFromJSON(pm)
				if err != nil {
					return nil, err
				}
				a.Properties = *ps
			}
			n.Attachments[i] = a
		}
	}
	if pm, ok := m["Properties"].(map[string]interface{}); ok {
		ps, err := propertySetFromJSON(pm)
		if err != nil {
			return nil, err
		}
		n.Properties = *ps
	}
	if pm, ok := m["Parameters"].(map[string]interface{}); ok {
		params, err := paramSetFromJSON(pm)
		if err != nil {
			return nil, err
		}
		n.Params = *params
	}
	if actions, ok := m["XLink Actions"].([]interface{}); ok {
		n.Actions = make([]Action, len(actions))
		for i, av := range actions {
			am, err := asMap(av)
			if err != nil {
				return nil, err
			}
			slot, _ := am["Action Slot"].(string)
			action, _ := am["Action"].(string)
			n.Actions[i] = Action{Slot: slot, Action: action}
		}
	}
	if sm, ok := m["State Info"].(map[string]interface{}); ok {
		s := StateInfo{}
		s.DesiredState, _ = sm["Desired State"].(string)
		s.Unk04 = uint32(asFloat(sm["Unknown04"]))
		s.Unk08 = uint32(asFloat(sm["Unknown08"]))
		s.Unk0C = uint32(asFloat(sm["Unknown0C"]))
		s.Unk10 = uint32(asFloat(sm["Unknown10"]))
		n.StateInfo = &s
	}
	if plugs, ok := m["Plugs"].(map[string]interface{}); ok {
		for t := 0; t < plugTypeCount; t++ {
			pt := PlugType(t)
			v, ok := plugs[pt.String()]
			if !ok {
				continue
			}
			list, err := asArray(v)
			if err != nil {
				return nil, err
			}
			out := make([]Plug, len(list))
			for i, pv := range list {
				p, err := plugFromJSON(pv, pt, n)
				if err != nil {
					return nil, err
				}
				out[i] = p
			}
			n.plugs[t] = out
		}
	}
	return n, nil
}

func nodeTypeFromName(name string) NodeType {
	for t, n := range nodeTypeNames {
		if n == name {
			return t
		}
	}
	return NodeUserDefined
}

func plugFromJSON(v interface{}, slot PlugType, owner *Node) (Plug, error) {
	m, err := asMap(v)
	if err != nil {
		return nil, err
	}
	base := plugBase{NodeIndex: int32(asFloat(m["Node Index"]))}
	name, _ := m["Name"].(string)
	switch slot {
	case PlugGeneric:
		return GenericPlug{plugBase: base, Name: name}, nil
	case PlugChild:
		switch owner.Type {
		case NodeElementS32Selector:
			p := S32SelectorPlug{plugBase: base, Name: name, BlackboardIndex: -1}
			if isDefault, _ := m["Is Default"].(bool); isDefault {
				p.IsDefault = true
			} else {
				p.Condition = int32(asFloat(m["Condition"]))
				if bi, ok := m["Blackboard Index"]; ok {
					p.BlackboardIndex = int16(asFloat(bi))
				}
			}
			return p, nil
		case NodeElementF32Selector:
			p := F32SelectorPlug{plugBase: base, Name: name, BlackboardIndexMin: -1, BlackboardIndexMax: -1}
			if isDefault, _ := m["Is Default"].(bool); isDefault {
				p.IsDefault = true
			} else {
				p.ConditionMin = float32(asFloat(m["Condition Min"]))
				p.ConditionMax = float32(asFloat(m["Condition Max"]))
				if bi, ok := m["Blackboard Index Min"]; ok {
					p.BlackboardIndexMin = int16(asFloat(bi))
				}
				if bi, ok := m["Blackboard Index Max"]; ok {
					p.BlackboardIndexMax = int16(asFloat(bi))
				}
			}
			return p, nil
		case NodeElementStringSelector:
			p := StringSelectorPlug{plugBase: base, Name: name, BlackboardIndex: -1}
			if isDefault, _ := m["Is Default"].(bool); isDefault {
				p.IsDefault = true
			} else {
				p.Condition, _ = m["Condition"].(string)
				if bi, ok := m["Blackboard Index"]; ok {
					p.BlackboardIndex = int16(asFloat(bi))
				}
			}
			return p, nil
		case NodeElementRandomSelector:
			return RandomSelectorPlug{plugBase: base, Name: name, Weight: float32(asFloat(m["Weight"]))}, nil
		default:
			if owner.Name == "SelectorBSABrainVerbUpdater" || owner.Name == "SelectorBSAFormChangeUpdater" {
				return BSASelectorUpdaterPlug{
					plugBase: base, Name: name,
					Unk0: uint32(asFloat(m["Unknown0"])), Unk1: uint32(asFloat(m["Unknown1"])),
				}, nil
			}
			return ChildPlug{plugBase: base, Name: name}, nil
		}
	case PlugTransition:
		t := TransitionPlug{plugBase: base}
		typeVal := int(asFloat(m["Transition Type"]))
		t.Transition.Type = TransitionType(typeVal)
		t.Transition.PostCalcUpdate, _ = m["Update Post Calc"].(bool)
		t.Transition.CommandName, _ = m["Transition Name"].(string)
		return t, nil
	case PlugString:
		p := StringInputPlug{plugBase: base, Name: name}
		if def, ok := m["Default Value"]; ok {
			p.HasDefault = true
			p.DefaultValue, _ = def.(string)
			p.Unknown = uint32(asFloat(m["Unknown"]))
		}
		return p, nil
	case PlugInt:
		p := IntInputPlug{plugBase: base, Name: name}
		if def, ok := m["Default Value"]; ok {
			p.HasDefault = true
			p.DefaultValue = int32(asFloat(def))
			p.Unknown = uint32(asFloat(m["Unknown"]))
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: non-empty reserved plug slot %s in JSON", ErrInvalidEnumValue, slot)
	}
}

func inputParamFromJSON(t ParamType, m map[string]interface{}) (InputParam, error) {
	p := InputParam{Type: t}
	p.Name, _ = m["Name"].(string)
	def, err := paramValueFromJSON(t, m["Default Value"])
	if err != nil {
		return p, err
	}
	p.Default = def
	p.Source = ParamSource{SrcNodeIndex: -1}
	if sm, ok := m["Source"].(map[string]interface{}); ok {
		p.Source = sourceFromJSON(sm)
	}
	return p, nil
}

func outputParamFromJSON(t ParamType, m map[string]interface{}) (OutputParam, error) {
	p := OutputParam{Type: t}
	p.Name, _ = m["Name"].(string)
	if t == ParamPointer {
		p.Classname, _ = m["Classname"].(string)
	}
	if flagStr, ok := m["Flags"].(string); ok {
		p.Flags = ParamFlag{Raw: parseHexU32(flagStr)}
	}
	return p, nil
}

func paramSetFromJSON(m map[string]interface{}) (*ParamSet, error) {
	ps := &ParamSet{}
	if in, ok := m["Input"].(map[string]interface{}); ok {
		for t := 0; t < paramTypeCount; t++ {
			pt := ParamType(t)
			v, ok := in[pt.String()]
			if !ok {
				continue
			}
			list, err := asArray(v)
			if err != nil {
				return nil, err
			}
			params := make([]InputParam, len(list))
			for i, e := range list {
				em, err := asMap(e)
				if err != nil {
					return nil, err
				}
				p, err := inputParamFromJSON(pt, em)
				if err != nil {
					return nil, err
				}
				params[i] = p
			}
			ps.Inputs[t] = params
		}
	}
	if out, ok := m["Output"].(map[string]interface{}); ok {
		for t := 0; t < paramTypeCount; t++ {
			pt := ParamType(t)
			v, ok := out[pt.String()]
			if !ok {
				continue
			}
			list, err := asArray(v)
			if err != nil {
				return nil, err
			}
			params := make([]OutputParam, len(list))
			for i, e := range list {
				em, err := asMap(e)
				if err != nil {
					return nil, err
				}
				p, err := outputParamFromJSON(pt, em)
				if err != nil {
					return nil, err
				}
				params[i] = p
			}
			ps.Outputs[t] = params
		}
	}
	return ps, nil
}
