package parser

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/utils"
)

// Parser implements DeclarationParser for Kotlin sources and declaration
// snapshots. It is safe for concurrent use.
type Parser struct {
	file       *participle.Parser[kotlinFile]
	typeRef    *participle.Parser[typeRef]
	typeParam  *participle.Parser[typeParam]
	parameter  *participle.Parser[parameter]
	annotation *participle.Parser[annotationEntry]
	elided     map[lexer.TokenType]bool
	reader     *utils.FileReader
}

func options() []participle.Option {
	return []participle.Option{
		participle.Lexer(kotlinLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(1024),
	}
}

// NewParser creates a parser reading files through a fresh FileReader
func NewParser() *Parser {
	return NewParserWithReader(utils.NewFileReader())
}

// NewParserWithReader creates a parser sharing reader's content cache
func NewParserWithReader(reader *utils.FileReader) *Parser {
	symbols := kotlinLexer.Symbols()
	return &Parser{
		file:       participle.MustBuild[kotlinFile](options()...),
		typeRef:    participle.MustBuild[typeRef](options()...),
		typeParam:  participle.MustBuild[typeParam](options()...),
		parameter:  participle.MustBuild[parameter](options()...),
		annotation: participle.MustBuild[annotationEntry](options()...),
		elided: map[lexer.TokenType]bool{
			symbols["Whitespace"]: true,
			symbols["Comment"]:    true,
		},
		reader: reader,
	}
}

// ParseSource parses Kotlin source text. filename is used for locations only.
func (p *Parser) ParseSource(filename, source string) (*models.SourceFile, error) {
	tree, err := p.file.ParseString(filename, source)
	if err != nil {
		return nil, syntaxError(filename, filename, err)
	}
	return newLowerer(filename, source, p.elided).file(tree), nil
}

// ParseFile parses a Kotlin file or a declaration snapshot, chosen by the
// file extension.
func (p *Parser) ParseFile(path string) (*models.SourceFile, error) {
	kind, ok := InputKindOf(path)
	if !ok {
		return nil, errors.NewValidationError("path", "unsupported input file "+filepath.Base(path)).
			WithSuggestion("inputs must be Kotlin sources (.kt, .kts) or declaration snapshots (.decl.yaml)")
	}

	content, err := p.reader.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}

	switch kind {
	case SnapshotInput:
		return p.ParseSnapshot(path, []byte(content))
	default:
		return p.ParseSource(path, content)
	}
}

// InputKind tells Kotlin sources from declaration snapshots
type InputKind int

const (
	KotlinInput InputKind = iota
	SnapshotInput
)

// InputKindOf classifies path by its extension
func InputKindOf(path string) (InputKind, bool) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".decl.yaml"), strings.HasSuffix(name, ".decl.yml"):
		return SnapshotInput, true
	case strings.HasSuffix(name, ".kt"), strings.HasSuffix(name, ".kts"):
		return KotlinInput, true
	default:
		return 0, false
	}
}

// syntaxError wraps a participle error, keeping its position when it has one
func syntaxError(item, file string, err error) error {
	wrapped := errors.WrapParseError(item, err)
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		wrapped = wrapped.WithLocation(errors.SourceLocation{File: file, Line: pos.Line, Column: pos.Column})
	}
	return wrapped
}
