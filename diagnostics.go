package ainb

import (
	"fmt"

	"github.com/nx-tools/ainb/log"
)

// Warning kinds. These mirror the non-fatal diagnostic taxonomy: they are
// reported, never returned as an error, and never abort a decode.
const (
	WarnInconsistentNodeIndex  = "InconsistentNodeIndex"
	WarnMissingModule          = "MissingModule"
	WarnUnknownEnumEntry       = "UnknownEnumEntry"
	WarnEnumPatchOutOfBounds   = "EnumPatchOutOfBounds"
	WarnCategoryMismatch       = "CategoryMismatch"
	WarnReservedFieldNonZero   = "ReservedFieldNonZero"
	WarnReplacementsPreDate407 = "ReplacementTablePreDates407"
	WarnUnexpectedStateInfo    = "UnexpectedStateInfo"
	WarnEmptyEnumDatabase      = "EmptyEnumDatabase"
	WarnReplacementsReapplied  = "ReplacementsAlreadyProcessed"
	WarnTrailingHeaderSection  = "TrailingHeaderSectionPresent"
)

// A Warning is a single non-fatal diagnostic raised during decode.
type Warning struct {
	Kind    string
	Message string
	// Offset is the buffer position the warning concerns, or -1 when not
	// applicable to a single offset.
	Offset int64
}

func (w Warning) String() string {
	if w.Offset < 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s (offset %#x)", w.Kind, w.Message, w.Offset)
}

// DiagnosticSink receives warnings as they are raised during decode. When
// Options.Sink is nil, warnings are only collected into AINB.Warnings and
// logged through Options.Logger if one is set.
type DiagnosticSink interface {
	Warn(w Warning)
}

// SinkFunc adapts a function to DiagnosticSink.
type SinkFunc func(Warning)

func (f SinkFunc) Warn(w Warning) { f(w) }

// collectingSink appends every warning it receives to Warnings and also
// forwards it to an optional logger, exactly as pe.File.Anomalies both
// accumulates and is inspectable after the fact.
type collectingSink struct {
	warnings *[]Warning
	logger   log.Logger
}

func (s collectingSink) Warn(w Warning) {
	*s.warnings = append(*s.warnings, w)
	if s.logger != nil {
		s.logger.Warnf("%s", w.String())
	}
}

func warnInconsistentNodeIndex(sink DiagnosticSink, offset int64, stored, position int) {
	sink.Warn(Warning{
		Kind:    WarnInconsistentNodeIndex,
		Message: fmt.Sprintf("node stored index %d does not match position %d", stored, position),
		Offset:  offset,
	})
}

func warnMissingModule(sink DiagnosticSink, name string) {
	sink.Warn(Warning{
		Kind:    WarnMissingModule,
		Message: fmt.Sprintf("node flagged is-module but %q.ainb is absent from the module table", name),
		Offset:  -1,
	})
}

func warnUnknownEnumEntry(sink DiagnosticSink, offset int64, class, value string) {
	sink.Warn(Warning{
		Kind:    WarnUnknownEnumEntry,
		Message: fmt.Sprintf("no enum database entry for (%s, %s)", class, value),
		Offset:  offset,
	})
}

func warnEnumPatchOutOfBounds(sink DiagnosticSink, offset int64) {
	sink.Warn(Warning{
		Kind:    WarnEnumPatchOutOfBounds,
		Message: "enum patch offset lies outside the buffer",
		Offset:  offset,
	})
}

func warnCategoryMismatch(sink DiagnosticSink, enumVal int32, str string) {
	sink.Warn(Warning{
		Kind:    WarnCategoryMismatch,
		Message: fmt.Sprintf("category enum %d does not match category string %q", enumVal, str),
		Offset:  -1,
	})
}

func warnReservedFieldNonZero(sink DiagnosticSink, offset int64, field string, value uint32) {
	sink.Warn(Warning{
		Kind:    WarnReservedFieldNonZero,
		Message: fmt.Sprintf("reserved field %s holds non-zero value %#x", field, value),
		Offset:  offset,
	})
}

func warnReplacementsPreDate407(sink DiagnosticSink, version uint32) {
	sink.Warn(Warning{
		Kind:    WarnReplacementsPreDate407,
		Message: fmt.Sprintf("non-empty replacement table in version %#x", version),
		Offset:  -1,
	})
}

func warnUnexpectedStateInfo(sink DiagnosticSink, version uint32) {
	sink.Warn(Warning{
		Kind:    WarnUnexpectedStateInfo,
		Message: fmt.Sprintf("state info offset is non-zero in version %#x", version),
		Offset:  -1,
	})
}

func warnEmptyEnumDatabase(sink DiagnosticSink) {
	sink.Warn(Warning{
		Kind:    WarnEmptyEnumDatabase,
		Message: "enum database is empty; did the caller forget to set Options.EnumDB?",
		Offset:  -1,
	})
}

func warnReplacementsReapplied(sink DiagnosticSink) {
	sink.Warn(Warning{
		Kind:    WarnReplacementsReapplied,
		Message: "file indicates that replacements were already processed",
		Offset:  -1,
	})
}

func warnTrailingHeaderSection(sink DiagnosticSink, field string, value uint32) {
	sink.Warn(Warning{
		Kind:    WarnTrailingHeaderSection,
		Message: fmt.Sprintf("header field %s appears to be in use (value %#x)", field, value),
		Offset:  -1,
	})
}
