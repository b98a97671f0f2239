package schema

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"go.uber.org/multierr"

	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/errors"
)

// ParseDSL decodes the compact definition syntax:
//
//	// Status register.
//	pub struct Status<u32> {
//	    field1: 3,
//	    field2: 9,
//	    _: 6,
//	    field3: 1,
//	}
//
// Line comments directly above a struct become its Doc. A trailing comma
// is allowed. An optional leading `package name` line sets File.Package.
func ParseDSL(name string, src []byte) (*File, error) {
	p := &dslParser{name: name}
	p.s.Init(strings.NewReader(string(src)))
	p.s.Filename = name
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanComments
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.fail(s.Pos(), "%s", msg)
	}

	file, err := p.parseFile()
	if err != nil {
		return nil, err
	}
	if p.errs != nil {
		return nil, p.errs
	}
	return file, nil
}

type dslParser struct {
	s    scanner.Scanner
	name string
	doc  []string
	errs error
	tok  rune
}

// syntaxError stops parsing; base type errors are collected instead.
type syntaxError struct {
	err *errors.Error
}

func (p *dslParser) fail(pos scanner.Position, format string, args ...any) {
	panic(syntaxError{errors.New(errors.PhaseParse, errors.KindInvalidData).
		Path(p.name).
		Detail("%s: %s", pos, fmt.Sprintf(format, args...)).
		Build()})
}

// next advances to the next non-comment token, collecting comment text.
func (p *dslParser) next() {
	for {
		p.tok = p.s.Scan()
		if p.tok != scanner.Comment {
			return
		}
		text := p.s.TokenText()
		if strings.HasPrefix(text, "//") {
			p.doc = append(p.doc, strings.TrimSpace(strings.TrimLeft(text, "/")))
		} else {
			p.doc = nil
		}
	}
}

func (p *dslParser) text() string {
	if p.tok == scanner.EOF {
		return "end of input"
	}
	return strconv.Quote(p.s.TokenText())
}

func (p *dslParser) expect(tok rune, what string) string {
	if p.tok != tok {
		p.fail(p.s.Position, "expected %s, found %s", what, p.text())
	}
	text := p.s.TokenText()
	p.next()
	return text
}

func (p *dslParser) keyword(word string) bool {
	return p.tok == scanner.Ident && p.s.TokenText() == word
}

func (p *dslParser) parseFile() (file *File, err error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(syntaxError)
			if !ok {
				panic(r)
			}
			file, err = nil, se.err
		}
	}()

	p.next()
	file = &File{}
	if p.keyword("package") {
		p.doc = nil
		p.next()
		file.Package = p.expect(scanner.Ident, "package name")
	}
	for p.tok != scanner.EOF {
		file.Definitions = append(file.Definitions, p.parseStruct())
	}
	return file, nil
}

func (p *dslParser) parseStruct() Definition {
	doc := strings.Join(p.doc, "\n")
	p.doc = nil
	if p.keyword("pub") {
		p.next()
	}
	if !p.keyword("struct") {
		p.fail(p.s.Position, "expected struct, found %s", p.text())
	}
	line := p.s.Position.Line
	p.next()

	def := Definition{Doc: doc, Line: line}
	def.Name = p.expect(scanner.Ident, "bitfield name")

	p.expect('<', "'<'")
	basePos := p.s.Position
	base := p.expect(scanner.Ident, "base type")
	kind, err := bitfield.ParseKind(base)
	if err != nil {
		p.errs = multierr.Append(p.errs, errors.New(errors.PhaseParse, errors.KindUnsupported).
			Path(def.Name).
			Base(base).
			Detail("%s: not a supported unsigned base type", basePos).
			Build())
	}
	def.Base = kind
	p.expect('>', "'>'")

	p.expect('{', "'{'")
	for p.tok != '}' {
		def.Decls = append(def.Decls, p.parseField())
		if p.tok != ',' {
			break
		}
		p.next()
	}
	p.doc = nil
	p.expect('}', "'}' or ','")
	return def
}

func (p *dslParser) parseField() bitfield.Decl {
	name := p.expect(scanner.Ident, "field name")
	p.expect(':', "':'")
	pos := p.s.Position
	text := p.expect(scanner.Int, "field width")
	width, err := strconv.ParseInt(text, 0, 32)
	if err != nil {
		p.fail(pos, "invalid width %s", text)
	}
	return bitfield.F(name, int(width))
}
