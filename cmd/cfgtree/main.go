package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	gofmt "go/format"

	cfgtree "github.com/reoring/cfgtree"
	_ "github.com/reoring/cfgtree/format"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "infer":
		inferCmd(os.Args[2:])
	case "convert":
		convertCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "cfgtree CLI\n\nUsage:\n  cfgtree infer -in conf.yaml [-format yaml] [-name server] [-pkg config] [-o schema.go]\n  cfgtree convert -in conf.yaml -out conf.toml\n\nNotes:\n  - infer emits a dsl declaration scaffold built from a sample config file.\n  - convert rewrites a config file into another format, keeping key order.")
}

// inferCmd reads a sample config file and prints a Go schema declaration
// whose defaults are the sample's values, reversing the literal-driven type
// inference.
func inferCmd(args []string) {
	fs := flag.NewFlagSet("infer", flag.ExitOnError)
	var in string
	var name string
	var pkg string
	var out string
	var format string
	fs.StringVar(&in, "in", "", "sample config file (.json/.toml/.yaml)")
	fs.StringVar(&name, "name", "", "schema name (default: file basename)")
	fs.StringVar(&pkg, "pkg", "config", "package name for the generated file")
	fs.StringVar(&out, "o", "", "output filename (default: stdout)")
	fs.StringVar(&format, "format", "", "input format (default: from the file extension)")
	_ = fs.Parse(args)
	if in == "" {
		fs.Usage()
		os.Exit(2)
	}

	f := cfgtree.Format(strings.ToLower(format))
	if format == "" {
		var ok bool
		f, ok = cfgtree.FormatForPath(in)
		if !ok {
			fatalf("cannot tell the format of %s; pass -format", in)
		}
	}
	doc := parseFile(in, f)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Inferred by cfgtree infer from %s; review and edit.\n\n", filepath.Base(in))
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	fmt.Fprintf(&buf, "import (\n\tcfgtree %q\n\t%q\n)\n\n", "github.com/reoring/cfgtree", "github.com/reoring/cfgtree/dsl")
	varName := identFor(name)
	fmt.Fprintf(&buf, "var %sSchema = dsl.Config(%q).\n", varName, name)
	fmt.Fprintf(&buf, "\tPath(%s, %q).\n", formatConst(f), in)
	doc.Range(func(k string, v any) bool {
		fmt.Fprintf(&buf, "\tField(%q, %s).\n", k, shapeExpr(v))
		return true
	})
	fmt.Fprintf(&buf, "\tMustBuild()\n")

	code, err := gofmt.Source(buf.Bytes())
	if err != nil {
		// still emit the raw text so the scaffold is not lost
		code = buf.Bytes()
	}
	if out == "" {
		os.Stdout.Write(code)
		return
	}
	if err := os.WriteFile(out, code, 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
}

// convertCmd rewrites a config file into another format.
func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var in string
	var out string
	fs.StringVar(&in, "in", "", "input config file")
	fs.StringVar(&out, "out", "", "output config file; the extension picks the format")
	_ = fs.Parse(args)
	if in == "" || out == "" {
		fs.Usage()
		os.Exit(2)
	}

	fin, ok := cfgtree.FormatForPath(in)
	if !ok {
		fatalf("cannot tell the format of %s", in)
	}
	fout, ok := cfgtree.FormatForPath(out)
	if !ok {
		fatalf("cannot tell the format of %s", out)
	}
	doc := parseFile(in, fin)
	enc, ok := cfgtree.AdapterFor(fout)
	if !ok {
		fatalf("no adapter for %s", fout)
	}
	data, err := enc.Serialize(doc)
	if err != nil {
		fatalf("serialize: %v", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
}

func parseFile(path string, f cfgtree.Format) *cfgtree.Map {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading %s: %v", path, err)
	}
	a, ok := cfgtree.AdapterFor(f)
	if !ok {
		fatalf("no adapter for %s", f)
	}
	doc, err := a.Parse(data)
	if err != nil {
		fatalf("parsing %s: %v", path, err)
	}
	return doc
}

func formatConst(f cfgtree.Format) string {
	return "cfgtree.Format" + strings.ToUpper(string(f))
}

// shapeExpr renders the dsl expression for a sample value.
func shapeExpr(v any) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("dsl.String(%q)", t)
	case bool:
		return fmt.Sprintf("dsl.Bool(%v)", t)
	case int64:
		return fmt.Sprintf("dsl.Int(%d)", t)
	case float64:
		return fmt.Sprintf("dsl.Float(%s)", floatLit(t))
	case []any:
		return listExpr(t)
	case *cfgtree.Map:
		return mappingExpr(t)
	case nil:
		return `dsl.String("")` // null carries no kind; assume string
	}
	return `dsl.String("")`
}

func listExpr(vals []any) string {
	markers := map[string]bool{}
	var order []string
	scalarsOnly := true
	for _, v := range vals {
		var m string
		switch v.(type) {
		case string:
			m = "dsl.StringElem"
		case bool:
			m = "dsl.BoolElem"
		case int64:
			m = "dsl.IntElem"
		case float64:
			m = "dsl.FloatElem"
		case []any:
			m = "dsl.ListElem"
			scalarsOnly = false
		case *cfgtree.Map:
			m = "dsl.MapElem"
			scalarsOnly = false
		default:
			continue
		}
		if !markers[m] {
			markers[m] = true
			order = append(order, m)
		}
	}
	sort.Strings(order)
	expr := "dsl.List(" + strings.Join(order, ", ") + ")"
	if scalarsOnly && len(vals) > 0 {
		lits := make([]string, 0, len(vals))
		for _, v := range vals {
			lits = append(lits, scalarLit(v))
		}
		expr += ".Default(" + strings.Join(lits, ", ") + ")"
	}
	return expr
}

func mappingExpr(m *cfgtree.Map) string {
	var b strings.Builder
	b.WriteString("dsl.Mapping()")
	m.Range(func(k string, v any) bool {
		fmt.Fprintf(&b, ".Key(%q, %s)", k, shapeExpr(v))
		return true
	})
	return b.String()
}

func scalarLit(v any) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case bool:
		return fmt.Sprintf("%v", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return floatLit(t)
	}
	return `""`
}

func floatLit(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// identFor turns a schema name into an exported Go identifier.
func identFor(name string) string {
	var b strings.Builder
	up := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			if up {
				b.WriteString(strings.ToUpper(string(r)))
				up = false
			} else {
				b.WriteRune(r)
			}
		case r >= '0' && r <= '9':
			if b.Len() > 0 {
				b.WriteRune(r)
			}
			up = false
		default:
			up = true
		}
	}
	if b.Len() == 0 {
		return "Config"
	}
	return b.String()
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
