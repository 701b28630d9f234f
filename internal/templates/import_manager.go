package templates

import (
	"sort"
	"strings"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

// packages imported by default into every Kotlin file
var defaultPackages = []string{
	"kotlin",
	"kotlin.annotation",
	"kotlin.collections",
	"kotlin.comparisons",
	"kotlin.io",
	"kotlin.ranges",
	"kotlin.sequences",
	"kotlin.text",
}

// additional default packages per platform
var platformPackages = map[models.Platform][]string{
	models.PlatformJVM: {"java.lang", "kotlin.jvm"},
	models.PlatformJS:  {"kotlin.js"},
}

// ImportManager collects candidate imports of one generated file and
// renders the ones the file actually uses.
type ImportManager struct {
	pkg      string
	platform models.Platform
	imports  []models.Import
	names    map[string]bool // simple names already claimed by an import
	seen     map[string]bool
}

// NewImportManager creates an import manager for a file in pkg
func NewImportManager(pkg string, platform models.Platform) *ImportManager {
	return &ImportManager{
		pkg:      pkg,
		platform: platform,
		names:    make(map[string]bool),
		seen:     make(map[string]bool),
	}
}

// AddImport adds a candidate import. Imports implied by the package or the
// platform are ignored; for one simple name the first import wins.
func (im *ImportManager) AddImport(imp models.Import) {
	if imp.Path == "" || im.seen[imp.String()] || im.isImplicit(imp) {
		return
	}
	if name := imp.Name(); name != "" {
		if im.names[name] {
			return
		}
		im.names[name] = true
	}
	im.seen[imp.String()] = true
	im.imports = append(im.imports, imp)
}

// AddImports adds several candidate imports in order
func (im *ImportManager) AddImports(imports ...models.Import) {
	for _, imp := range imports {
		im.AddImport(imp)
	}
}

// Imports returns the sorted import directives, without the keyword, whose
// names appear in used. Star imports are always kept.
func (im *ImportManager) Imports(used map[string]struct{}) []string {
	var out []string
	for _, imp := range im.imports {
		if !imp.Wildcard {
			if _, ok := used[imp.Name()]; !ok {
				continue
			}
		}
		out = append(out, imp.String())
	}
	sort.Strings(out)
	return out
}

// GenerateImports renders the import block, empty when nothing is imported
func (im *ImportManager) GenerateImports(used map[string]struct{}) string {
	var b strings.Builder
	for _, imp := range im.Imports(used) {
		b.WriteString("import ")
		b.WriteString(imp)
		b.WriteByte('\n')
	}
	return b.String()
}

// isImplicit reports imports that add nothing: same package, or a default
// package of the platform without an alias.
func (im *ImportManager) isImplicit(imp models.Import) bool {
	owner := imp.Path
	if !imp.Wildcard {
		i := strings.LastIndexByte(owner, '.')
		if i < 0 {
			return false
		}
		owner = owner[:i]
		if imp.Alias != "" {
			return false
		}
	}
	if owner == im.pkg {
		return true
	}
	for _, p := range defaultPackages {
		if owner == p {
			return true
		}
	}
	for _, p := range platformPackages[im.platform] {
		if owner == p {
			return true
		}
	}
	return false
}
