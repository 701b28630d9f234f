package annotations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Reference is a non-literal argument value such as a constant or class
// literal. It is kept as written; schemas only accept literals.
type Reference string

// valueExpr is the grammar of a single annotation argument value
type valueExpr struct {
	Bool   *string  `parser:"  @( 'true' | 'false' )"`
	Raw    *string  `parser:"| @RawString"`
	Str    *string  `parser:"| @String"`
	Number *string  `parser:"| @Number"`
	Path   []string `parser:"| @Ident ( '.' @Ident )*"`
	Class  bool     `parser:"  @( '::' 'class' )?"`
}

var valueLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "RawString", Pattern: `"""[\s\S]*?"""`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `[-+]?[0-9][0-9_]*(\.[0-9_]+)?[a-zA-Z]*`},
	{Name: "Ident", Pattern: "[a-zA-Z_][a-zA-Z0-9_]*|`[^`]+`"},
	{Name: "Punct", Pattern: `::|[.]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// ValueParser decodes annotation argument source text into Go values
type ValueParser struct {
	parser *participle.Parser[valueExpr]
}

// NewValueParser creates a new argument value parser
func NewValueParser() *ValueParser {
	return &ValueParser{
		parser: participle.MustBuild[valueExpr](
			participle.Lexer(valueLexer),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		),
	}
}

// Parse decodes one value: Boolean and Int literals become bool and int,
// string literals become string, anything else becomes a Reference.
func (p *ValueParser) Parse(text string) (interface{}, error) {
	expr, err := p.parser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("unsupported argument value %q: %w", text, err)
	}

	switch {
	case expr.Bool != nil:
		return *expr.Bool == "true", nil
	case expr.Raw != nil:
		raw := *expr.Raw
		return raw[3 : len(raw)-3], nil
	case expr.Str != nil:
		return unescapeKotlin((*expr.Str)[1 : len(*expr.Str)-1])
	case expr.Number != nil:
		return parseKotlinInt(*expr.Number)
	default:
		ref := strings.Join(expr.Path, ".")
		if expr.Class {
			ref += "::class"
		}
		return Reference(ref), nil
	}
}

func parseKotlinInt(text string) (interface{}, error) {
	clean := strings.ReplaceAll(text, "_", "")
	clean = strings.TrimRight(clean, "lLuU")
	n, err := strconv.Atoi(clean)
	if err != nil {
		// floating point and other numeric forms are not used by any schema
		return Reference(text), nil
	}
	return n, nil
}

// unescapeKotlin resolves the escape sequences of a Kotlin string literal
func unescapeKotlin(s string) (string, error) {
	if strings.Contains(s, "${") {
		return "", fmt.Errorf("string templates are not supported in annotation arguments: %q", s)
	}
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'u':
			if i+4 >= len(s) {
				return "", fmt.Errorf("truncated unicode escape in %q", s)
			}
			code, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid unicode escape in %q: %w", s, err)
			}
			b.WriteRune(rune(code))
			i += 4
		default:
			// \' \" \\ \$
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}
