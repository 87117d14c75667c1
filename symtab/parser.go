package symtab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Field counts of the two recognized line shapes.
const (
	// NamedSymbolFields is the field count of a named-symbol line:
	// address, flags, scope, section, size, name
	NamedSymbolFields = 6

	// SizedSentinelFields is the field count of a sentinel line:
	// address, flags, scope, section, name. The name sits in the column a
	// named-symbol line uses for its size.
	SizedSentinelFields = 5

	// maxLineSize bounds a single line; mangled C++ names can be long
	maxLineSize = 1024 * 1024
)

// Parse parses a symbol table from the given file path.
//
// Example:
//
//	tab, err := symtab.Parse("build/sandbox_symbols.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	addrs, err := tab.Resolve()
func Parse(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open symbol table: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses a symbol table from any io.Reader.
// Lines that match neither shape are skipped, and so are lines longer than
// maxLineSize; only read errors are returned.
func ParseReader(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	tab := newTable()

	var line []byte
	oversized := false
	for {
		frag, isPrefix, err := br.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read symbol table: %w", err)
		}

		if !oversized {
			if len(line)+len(frag) > maxLineSize {
				oversized = true
			} else {
				line = append(line, frag...)
			}
		}
		if isPrefix {
			continue
		}

		if !oversized {
			if rec, ok := ClassifyLine(string(line)); ok {
				tab.add(rec)
			}
		}
		line = line[:0]
		oversized = false
	}

	return tab, nil
}

// ParseString parses a symbol table held in memory.
func ParseString(text string) (*Table, error) {
	return ParseReader(strings.NewReader(text))
}

// ClassifyLine turns one line of symbol-table text into a Record.
//
// A 6-field line yields a NamedSymbol binding its last field to its first.
// A 5-field line whose last field is a recognized sentinel name yields a
// SizedSentinel. Anything else, including a first field that is not a
// 32-bit hex address, is reported as unrecognized.
//
// Example lines:
//
//	42000020 g     F .text  00000010 sandbox_main
//	40380000 l     O .iram0.text sandbox_sentinel_start_inst
func ClassifyLine(line string) (Record, bool) {
	fields := strings.Fields(line)

	switch len(fields) {
	case NamedSymbolFields:
		addr, err := parseAddress(fields[0])
		if err != nil {
			return nil, false
		}
		return NamedSymbol{Name: fields[5], Address: addr}, true

	case SizedSentinelFields:
		kind, ok := sentinelKinds[fields[4]]
		if !ok {
			return nil, false
		}
		addr, err := parseAddress(fields[0])
		if err != nil {
			return nil, false
		}
		return SizedSentinel{Kind: kind, Address: addr}, true

	default:
		return nil, false
	}
}

// parseAddress parses a hexadecimal address with an optional 0x prefix.
func parseAddress(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}
