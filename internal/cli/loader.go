package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/sigil/internal/codec"
	"github.com/roach88/sigil/internal/compiler"
	"github.com/roach88/sigil/internal/schema"
)

// Loader error codes - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No schema files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeCompile     = "E007" // Schema compilation failed
)

// LoadResult contains the results of loading a schema document.
type LoadResult struct {
	CUEValue  cue.Value // The document root for additional processing
	FileCount int       // Number of schema files found
}

// LoadError represents an error that occurred during schema loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadValue loads the schema document at path, which may be a single
// .cue or .json file or a directory of them, without compiling it.
// Directory contents are unified into one CUE value, so a schema may be
// split across files.
func LoadValue(path string) (*LoadResult, *LoadError) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema path: %v", err)}
	}

	ctx := cuecontext.New()

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error reading schema file: %v", err)}
		}
		value := ctx.CompileBytes(data, cue.Filename(path))
		if err := value.Err(); err != nil {
			return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building schema value: %v", err)}
		}
		return &LoadResult{CUEValue: value, FileCount: 1}, nil
	}

	files, err := FindSchemaFiles(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no schema files found in %s", path)}
	}

	cfg := &load.Config{Dir: path}
	instances := load.Instances(files, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading schema files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building schema value: %v", err)}
	}

	return &LoadResult{CUEValue: value, FileCount: len(files)}, nil
}

// LoadSchema loads and compiles the schema document at path.
func LoadSchema(path string) (*schema.Schema, *LoadResult, *LoadError) {
	result, loadErr := LoadValue(path)
	if loadErr != nil {
		return nil, nil, loadErr
	}
	s, err := compiler.CompileSchema(result.CUEValue)
	if err != nil {
		return nil, result, &LoadError{Code: ErrCodeCompile, Message: err.Error()}
	}
	return s, result, nil
}

// LoadCoder loads a schema and builds a coder over it. The returned
// error is already reported through the formatter.
func LoadCoder(formatter *OutputFormatter, path string) (*schema.Schema, *codec.Coder, error) {
	s, result, loadErr := LoadSchema(path)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return nil, nil, NewExitError(ExitCommandError, loadErr.Error())
	}
	formatter.VerboseLog("Loaded %d schema file(s) from %s", result.FileCount, path)

	coder, err := codec.NewCoder(s)
	if err != nil {
		return nil, nil, failCodec(formatter, err)
	}
	return s, coder, nil
}

// FindSchemaFiles walks the directory and returns all .cue and .json
// file paths, relative to dir so they can feed load.Instances.
func FindSchemaFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".cue", ".json":
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	return files, err
}
