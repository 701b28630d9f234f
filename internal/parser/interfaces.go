package parser

import "github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"

// DeclarationParser turns input files into the declaration model
type DeclarationParser interface {
	ParseFile(path string) (*models.SourceFile, error)
	ParseSource(filename, source string) (*models.SourceFile, error)
	ParseSnapshot(path string, data []byte) (*models.SourceFile, error)
}

var _ DeclarationParser = (*Parser)(nil)
