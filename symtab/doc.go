// Package symtab parses the symbol table text emitted by the sandbox build.
//
// # Format
//
// The table is objdump-style text, one record per line, fields separated by
// whitespace. Two shapes are recognized:
//
//	ADDRESS FLAGS SCOPE SECTION SIZE NAME     named symbol (6 fields)
//	ADDRESS FLAGS SCOPE SECTION SENTINEL      region sentinel (5 fields)
//
// ADDRESS is hexadecimal. Every other line is ignored, including lines
// longer than 1 MiB.
//
// # Basic Usage
//
//	tab, err := symtab.Parse("build/sandbox_symbols.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	addrs, err := tab.Resolve()
//	if err != nil {
//	    // *symtab.MissingSymbolError names the absent symbol
//	    log.Fatal(err)
//	}
//	fmt.Printf("instructions at 0x%08X\n", addrs.InstBase)
//
// Parsing has no side effects; parsing the same text twice yields equal tables.
package symtab
