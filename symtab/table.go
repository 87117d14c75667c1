package symtab

import "sort"

// Required symbol names emitted by the sandbox build.
const (
	// EntrySymbol is the sandbox entry point
	EntrySymbol = "sandbox_main"

	// ModeSymbol is the sandbox mode descriptor installed into the device's
	// mode pointer slot
	ModeSymbol = "sandbox_mode"

	// InstSentinel marks the start of the instruction region reserved for the sandbox
	InstSentinel = "sandbox_sentinel_start_inst"

	// DataSentinel marks the start of the data region reserved for the sandbox
	DataSentinel = "sandbox_sentinel_start_data"
)

// RequiredSymbols lists the names Resolve needs, in the order they are checked.
var RequiredSymbols = []string{EntrySymbol, ModeSymbol, InstSentinel, DataSentinel}

// SentinelKind identifies which region boundary a sentinel marks.
type SentinelKind int

const (
	// SentinelInst marks the instruction region start
	SentinelInst SentinelKind = iota + 1

	// SentinelData marks the data region start
	SentinelData
)

// Name returns the symbol name the sentinel is emitted under.
func (k SentinelKind) Name() string {
	switch k {
	case SentinelInst:
		return InstSentinel
	case SentinelData:
		return DataSentinel
	default:
		return ""
	}
}

func (k SentinelKind) String() string {
	switch k {
	case SentinelInst:
		return "inst"
	case SentinelData:
		return "data"
	default:
		return "unknown"
	}
}

// sentinelKinds maps recognized sentinel names to their kind.
var sentinelKinds = map[string]SentinelKind{
	InstSentinel: SentinelInst,
	DataSentinel: SentinelData,
}

// Record is one classified symbol-table line: either a NamedSymbol or a
// SizedSentinel.
type Record interface {
	// Binding returns the name and address the record binds.
	Binding() (name string, address uint32)

	record()
}

// NamedSymbol is a 6-field line binding a symbol name to its address.
type NamedSymbol struct {
	Name    string
	Address uint32
}

// Binding implements Record.
func (s NamedSymbol) Binding() (string, uint32) { return s.Name, s.Address }

func (NamedSymbol) record() {}

// SizedSentinel is a 5-field line whose name sits in the size column and
// marks a region boundary.
type SizedSentinel struct {
	Kind    SentinelKind
	Address uint32
}

// Binding implements Record.
func (s SizedSentinel) Binding() (string, uint32) { return s.Kind.Name(), s.Address }

func (SizedSentinel) record() {}

// Table is the set of bindings parsed from one symbol-table text.
// Named symbols and region sentinels are kept apart: a sentinel is only
// recognized from its own line shape. A Table is not modified after Parse
// returns.
type Table struct {
	symbols   map[string]uint32
	sentinels map[SentinelKind]uint32
}

func newTable() *Table {
	return &Table{
		symbols:   make(map[string]uint32),
		sentinels: make(map[SentinelKind]uint32),
	}
}

// add binds a record. A later line for the same name replaces the earlier one.
func (t *Table) add(r Record) {
	switch rec := r.(type) {
	case NamedSymbol:
		t.symbols[rec.Name] = rec.Address
	case SizedSentinel:
		t.sentinels[rec.Kind] = rec.Address
	}
}

// Lookup returns the address bound to a named symbol.
func (t *Table) Lookup(name string) (uint32, bool) {
	addr, ok := t.symbols[name]
	return addr, ok
}

// Sentinel returns the address of a region sentinel.
func (t *Table) Sentinel(kind SentinelKind) (uint32, bool) {
	addr, ok := t.sentinels[kind]
	return addr, ok
}

// Len returns the number of named symbols.
func (t *Table) Len() int {
	return len(t.symbols)
}

// Names returns every named symbol, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.symbols))
	for name := range t.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// has reports whether a required name is bound, looking sentinel names up
// among the sentinels.
func (t *Table) has(name string) bool {
	if kind, ok := sentinelKinds[name]; ok {
		_, found := t.sentinels[kind]
		return found
	}
	_, found := t.symbols[name]
	return found
}

// Addresses holds the resolved locations needed to install a sandbox.
type Addresses struct {
	// Entry is the address of sandbox_main
	Entry uint32

	// Mode is the address of sandbox_mode
	Mode uint32

	// InstBase is the start of the instruction region
	InstBase uint32

	// DataBase is the start of the data region
	DataBase uint32
}

// Resolve returns the required addresses, or a *MissingSymbolError naming the
// first required symbol absent from the table. An address of 0 is a valid
// binding.
func (t *Table) Resolve() (Addresses, error) {
	for _, name := range RequiredSymbols {
		if !t.has(name) {
			return Addresses{}, &MissingSymbolError{Name: name}
		}
	}

	return Addresses{
		Entry:    t.symbols[EntrySymbol],
		Mode:     t.symbols[ModeSymbol],
		InstBase: t.sentinels[SentinelInst],
		DataBase: t.sentinels[SentinelData],
	}, nil
}

// Missing returns every required symbol absent from the table.
func (t *Table) Missing() []string {
	var missing []string
	for _, name := range RequiredSymbols {
		if !t.has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
