package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
)

// FileProcessor finds input and output files on disk
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// KotlinInputFilter accepts Kotlin sources and declaration snapshots
func KotlinInputFilter() FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := strings.ToLower(info.Name())
		return strings.HasSuffix(name, ".kt") ||
			strings.HasSuffix(name, ".kts") ||
			strings.HasSuffix(name, ".decl.yaml") ||
			strings.HasSuffix(name, ".decl.yml")
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"node_modules": true,
		"build":        true,
		"out":          true,
		"dist":         true,
		"target":       true,
	}

	return func(path string, info fs.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden directories (.git, .gradle, .idea, ...)
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// ExcludingDirectories wraps filter so that the given directory trees are
// skipped as well, typically the output roots of a generation pass.
func ExcludingDirectories(filter DirectoryFilter, dirs ...string) DirectoryFilter {
	excluded := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		if abs, err := filepath.Abs(d); err == nil {
			excluded[abs] = true
		}
	}
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			if abs, err := filepath.Abs(path); err == nil && excluded[abs] {
				return false
			}
		}
		return filter == nil || filter(path, info)
	}
}

// WalkFiles walks through files in a directory tree with filtering. The
// root itself is never filtered out.
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})

	return matchedFiles, err
}

// ExpandInputs resolves command line inputs to a sorted, de-duplicated file
// list. Directories and "dir/..." patterns are walked recursively; files are
// taken as given.
func (fp *FileProcessor) ExpandInputs(inputs []string, options FileWalkOptions) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, input := range inputs {
		root := strings.TrimSuffix(input, "...")
		if root == "" {
			root = "."
		}
		root = filepath.Clean(root)

		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.WrapFileSystemError("stat", input, err).
				WithSuggestion("pass existing Kotlin source files, snapshot files or directories")
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		matched, err := fp.WalkFiles(root, options)
		if err != nil {
			return nil, errors.WrapFileSystemError("walk", root, err)
		}
		for _, m := range matched {
			add(m)
		}
	}

	sort.Strings(files)
	return files, nil
}

// GetFileReader returns the underlying FileReader for advanced operations
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
