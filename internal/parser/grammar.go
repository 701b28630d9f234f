package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// kotlinLexer tokenizes Kotlin sources. Every input lexes: characters no
// other rule accepts become Other tokens, which the grammar skips.
var kotlinLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},
	{Name: "RawString", Pattern: `"""[\s\S]*?"""`},
	{Name: "String", Pattern: `"(\\.|[^"\\\n])*"`},
	{Name: "Char", Pattern: `'(\\.|[^'\\\n])+'`},
	{Name: "Number", Pattern: `[0-9][0-9a-zA-Z_]*(\.[0-9][0-9a-zA-Z_]*)?`},
	{Name: "Ident", Pattern: "[\\p{L}_][\\p{L}\\p{N}_]*|`[^`\\n]+`"},
	{Name: "Punct", Pattern: `->|::|[-+*/%=<>!?.,;:@(){}\[\]&|^~#$\\]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `[^\s]`},
})

// kotlinFile is the root of a parsed source file
type kotlinFile struct {
	Annotations []*fileAnnotation  `parser:"@@*"`
	Package     []string           `parser:"( 'package' @Ident ( '.' @Ident )* ';'? )?"`
	Imports     []*importDirective `parser:"@@*"`
	Members     []*member          `parser:"@@*"`
}

type fileAnnotation struct {
	Pos     lexer.Position
	Entries []*annotationEntry `parser:"'@' 'file' ':' ( '[' @@+ ']' | @@ )"`
}

type importDirective struct {
	Path     []string `parser:"'import' @Ident ( '.' @Ident )*"`
	Wildcard bool     `parser:"( '.' @'*' )?"`
	Alias    string   `parser:"( 'as' @Ident )? ';'?"`
}

// member is a declaration or, when nothing else matches, one skipped token
// or bracketed group.
type member struct {
	Decl *declaration `parser:"  @@"`
	Skip *balanced    `parser:"| @@"`
}

type declaration struct {
	Pos      lexer.Position
	Prefix   []*declPrefix `parser:"@@*"`
	Class    *classDecl    `parser:"( @@"`
	Function *functionDecl `parser:"| @@"`
	Property *propertyDecl `parser:"| @@ )"`
}

type declPrefix struct {
	Annotation *annotation `parser:"  @@"`
	Modifier   string      `parser:"| @( 'public' | 'private' | 'protected' | 'internal' | 'expect' | 'actual' | 'final' | 'open' | 'abstract' | 'sealed' | 'const' | 'external' | 'override' | 'lateinit' | 'tailrec' | 'suspend' | 'inner' | 'enum' | 'annotation' | 'companion' | 'inline' | 'value' | 'infix' | 'operator' | 'data' )"`
}

// paramPrefix leaves out soft keywords that are common parameter names
type paramPrefix struct {
	Annotation *annotation `parser:"  @@"`
	Modifier   string      `parser:"| @( 'vararg' | 'noinline' | 'crossinline' | 'public' | 'private' | 'protected' | 'internal' | 'override' | 'open' | 'final' )"`
}

type annotation struct {
	Pos   lexer.Position
	Entry *annotationEntry `parser:"'@' @@"`
}

type annotationEntry struct {
	Pos    lexer.Position
	Target string             `parser:"( @( 'field' | 'property' | 'get' | 'set' | 'receiver' | 'param' | 'setparam' | 'delegate' ) ':' )?"`
	Name   []string           `parser:"@Ident ( '.' @Ident )*"`
	Args   *annotationArgList `parser:"@@?"`
}

type annotationArgList struct {
	Args []*annotationArg `parser:"'(' ( @@ ( ',' @@ )* ','? )? ')'"`
}

type annotationArg struct {
	Name  string   `parser:"( @Ident '=' )?"`
	Value *argExpr `parser:"@@"`
}

type classDecl struct {
	Pos        lexer.Position
	Fun        bool          `parser:"@'fun'?"`
	Kind       string        `parser:"@( 'interface' | 'class' | 'object' )"`
	Name       string        `parser:"@Ident?"`
	TypeParams []*typeParam  `parser:"( '<' @@ ( ',' @@ )* ','? '>' )?"`
	Ctor       *primaryCtor  `parser:"@@?"`
	Supers     []*superEntry `parser:"( ':' @@ ( ',' @@ )* )?"`
	Where      []*constraint `parser:"( 'where' @@ ( ',' @@ )* )?"`
	Body       *classBody    `parser:"@@?"`
}

type primaryCtor struct {
	Prefix []*declPrefix `parser:"@@*"`
	Params []*parameter  `parser:"'constructor'? '(' ( @@ ( ',' @@ )* ','? )? ')'"`
}

type superEntry struct {
	Type     *typeRef   `parser:"@@"`
	Call     *superCall `parser:"@@?"`
	Delegate *declExpr  `parser:"( 'by' @@ )?"`
}

type superCall struct {
	Args []*argExpr `parser:"'(' ( @@ ( ',' @@ )* ','? )? ')'"`
}

type classBody struct {
	Members []*member `parser:"'{' @@* '}'"`
}

type functionDecl struct {
	Pos        lexer.Position
	TypeParams []*typeParam   `parser:"'fun' ( '<' @@ ( ',' @@ )* ','? '>' )?"`
	Path       []*pathSegment `parser:"@@ ( '.' @@ )*"`
	Params     []*parameter   `parser:"'(' ( @@ ( ',' @@ )* ','? )? ')'"`
	Return     *typeRef       `parser:"( ':' @@ )?"`
	Where      []*constraint  `parser:"( 'where' @@ ( ',' @@ )* )?"`
	Body       *functionBody  `parser:"@@?"`
}

type propertyDecl struct {
	Pos        lexer.Position
	Mutable    string         `parser:"@( 'val' | 'var' )"`
	TypeParams []*typeParam   `parser:"( '<' @@ ( ',' @@ )* ','? '>' )?"`
	Path       []*pathSegment `parser:"@@ ( '.' @@ )*"`
	Type       *typeRef       `parser:"( ':' @@ )?"`
	Where      []*constraint  `parser:"( 'where' @@ ( ',' @@ )* )?"`
	Init       *declExpr      `parser:"( ( '=' | 'by' ) @@ )?"`
	Accessors  []*accessor    `parser:"@@*"`
}

type accessor struct {
	Prefix []*declPrefix  `parser:"@@*"`
	Kind   string         `parser:"@( 'get' | 'set' )"`
	Param  *accessorParam `parser:"( '(' @@? ')'"`
	Type   *typeRef       `parser:"  ( ':' @@ )? )?"`
	Body   *functionBody  `parser:"@@?"`
}

type accessorParam struct {
	Name string   `parser:"@Ident"`
	Type *typeRef `parser:"( ':' @@ )?"`
}

// pathSegment is one dot-separated segment of a declaration name; all but
// the last form the extension receiver.
type pathSegment struct {
	Name     string     `parser:"@Ident"`
	Args     []*typeArg `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
	Nullable bool       `parser:"@'?'?"`
}

type functionBody struct {
	Block *block    `parser:"  @@"`
	Expr  *declExpr `parser:"| '=' @@"`
}

type block struct {
	Body []*balanced `parser:"'{' @@* '}'"`
}

type typeParam struct {
	Annotations []*annotation `parser:"@@*"`
	Modifiers   []string      `parser:"@( 'reified' | 'in' | 'out' )*"`
	Name        string        `parser:"@Ident"`
	Bound       *typeRef      `parser:"( ':' @@ )?"`
}

type constraint struct {
	Annotations []*annotation `parser:"@@*"`
	Name        string        `parser:"@Ident ':'"`
	Bound       *typeRef      `parser:"@@"`
}

type parameter struct {
	Pos     lexer.Position
	Prefix  []*paramPrefix `parser:"@@*"`
	Binding string         `parser:"@( 'val' | 'var' )?"`
	Name    string         `parser:"@Ident"`
	Type    *typeRef       `parser:"':' @@"`
	Default *argExpr       `parser:"( '=' @@ )?"`
}

type typeRef struct {
	Annotations []*annotation  `parser:"@@*"`
	Suspend     bool           `parser:"@'suspend'?"`
	Function    *functionType  `parser:"( @@"`
	Paren       *typeRef       `parser:"| '(' @@ ')'"`
	Named       []*pathSegment `parser:"| @@ ( '.' @@ )* )"`
	Nullable    bool           `parser:"@'?'?"`
}

type functionType struct {
	Receiver         []*pathSegment       `parser:"( @@ ( '.' @@ )*"`
	ReceiverNullable bool                 `parser:"  @'?'? '.' )?"`
	Params           []*functionTypeParam `parser:"'(' ( @@ ( ',' @@ )* ','? )? ')'"`
	Return           *typeRef             `parser:"'->' @@"`
}

type functionTypeParam struct {
	Name string   `parser:"( @Ident ':' )?"`
	Type *typeRef `parser:"@@"`
}

type typeArg struct {
	Star     bool     `parser:"  @'*'"`
	Variance string   `parser:"| @( 'in' | 'out' )?"`
	Type     *typeRef `parser:"  @@"`
}

// balanced is one token or a bracketed group, nested groups included
type balanced struct {
	Group *group  `parser:"  @@"`
	Token *string `parser:"| @~( '(' | ')' | '[' | ']' | '{' | '}' )"`
}

type group struct {
	Open  string      `parser:"@( '(' | '[' | '{' )"`
	Body  []*balanced `parser:"@@*"`
	Close string      `parser:"@( ')' | ']' | '}' )"`
}

// argExpr is an argument or default value: everything up to the next
// top-level comma or closing bracket.
type argExpr struct {
	Tokens []lexer.Token
	Parts  []*argPart `parser:"@@+"`
}

type argPart struct {
	Group *group  `parser:"  @@"`
	Token *string `parser:"| @~( ',' | '(' | ')' | '[' | ']' | '{' | '}' )"`
}

// declExpr is an initializer or expression body. It ends before the next
// token that can start a declaration, since line breaks are not tokens.
type declExpr struct {
	Tokens []lexer.Token
	Parts  []*exprPart `parser:"@@+"`
}

type exprPart struct {
	Group  *group   `parser:"  @@"`
	Member []string `parser:"| @( '.' | '::' | '?' '.' ) @Ident"`
	Token  *string  `parser:"| @~( ',' | ';' | '@' | '(' | ')' | '[' | ']' | '{' | '}' | 'fun' | 'val' | 'var' | 'class' | 'interface' | 'object' | 'typealias' | 'init' | 'constructor' | 'get' | 'set' | 'public' | 'private' | 'protected' | 'internal' | 'abstract' | 'open' | 'final' | 'override' | 'sealed' | 'suspend' | 'companion' | 'inline' | 'operator' | 'infix' | 'lateinit' | 'const' | 'enum' | 'annotation' | 'inner' | 'tailrec' | 'external' | 'expect' | 'actual' )"`
}
