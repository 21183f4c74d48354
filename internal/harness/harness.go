package harness

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/sigil/internal/codec"
	"github.com/roach88/sigil/internal/compiler"
	"github.com/roach88/sigil/internal/schema"
)

// Result is the outcome of running every case in a scenario.
type Result struct {
	Scenario string       `json:"scenario"`
	Cases    []CaseResult `json:"cases"`
}

// CaseResult captures what a case produced. Decoded holds the canonical
// JSON of the decoded value, so results are byte-stable across runs and
// fit golden-file comparison.
type CaseResult struct {
	Name    string          `json:"name"`
	Record  string          `json:"record,omitempty"`
	Encoded string          `json:"encoded,omitempty"`
	Decoded json.RawMessage `json:"decoded,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Run loads the scenario's schema, builds a coder, and executes every
// case. A case whose outcome contradicts its expectation fails the run;
// the returned error names the first failing case.
func Run(scenario *Scenario) (*Result, error) {
	data, err := os.ReadFile(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	cueVal := cuecontext.New().CompileBytes(data)
	s, err := compiler.CompileSchema(cueVal)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	coder, err := codec.NewCoder(s)
	if err != nil {
		return nil, fmt.Errorf("build coder: %w", err)
	}

	result := &Result{Scenario: scenario.Name}
	for _, c := range scenario.Cases {
		cr, err := runCase(s, coder, c)
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", c.Name, err)
		}
		result.Cases = append(result.Cases, cr)
	}
	return result, nil
}

func runCase(s *schema.Schema, coder *codec.Coder, c Case) (CaseResult, error) {
	cr := CaseResult{Name: c.Name, Record: c.Record}

	switch {
	case c.Value != nil:
		v, err := schema.BindValue(s, schema.DefinedType{Name: c.Record}, c.Value)
		if err != nil {
			return cr, fmt.Errorf("bind value: %w", err)
		}
		encoded, err := coder.Encode(c.Record, v)
		if c.Error != "" {
			return expectFailure(cr, c, err)
		}
		if err != nil {
			return cr, fmt.Errorf("encode: %w", err)
		}
		cr.Encoded = hex.EncodeToString(encoded)
		if c.Bytes != "" && cr.Encoded != c.Bytes {
			return cr, fmt.Errorf("encoding mismatch: want %s, got %s", c.Bytes, cr.Encoded)
		}
		back, err := coder.Decode(c.Record, encoded)
		if err != nil {
			return cr, fmt.Errorf("round-trip decode: %w", err)
		}
		if err := attachDecoded(&cr, back); err != nil {
			return cr, err
		}
		return cr, nil

	case c.Decode != "":
		buf, err := hex.DecodeString(c.Decode)
		if err != nil {
			return cr, fmt.Errorf("invalid decode hex: %w", err)
		}
		v, err := coder.Decode(c.Record, buf)
		if c.Error != "" {
			return expectFailure(cr, c, err)
		}
		if err != nil {
			return cr, fmt.Errorf("decode: %w", err)
		}
		if err := attachDecoded(&cr, v); err != nil {
			return cr, err
		}
		return cr, nil

	default:
		buf, err := hex.DecodeString(c.Identify)
		if err != nil {
			return cr, fmt.Errorf("invalid identify hex: %w", err)
		}
		name, v, err := coder.DecodeAny(buf)
		if c.Error != "" {
			return expectFailure(cr, c, err)
		}
		if err != nil {
			return cr, fmt.Errorf("identify: %w", err)
		}
		if c.Record != "" && name != c.Record {
			return cr, fmt.Errorf("identified as %q, want %q", name, c.Record)
		}
		cr.Record = name
		if err := attachDecoded(&cr, v); err != nil {
			return cr, err
		}
		return cr, nil
	}
}

func attachDecoded(cr *CaseResult, v schema.Value) error {
	canonical, err := schema.MarshalCanonical(v)
	if err != nil {
		return fmt.Errorf("canonicalize decoded value: %w", err)
	}
	cr.Decoded = json.RawMessage(canonical)
	return nil
}

func expectFailure(cr CaseResult, c Case, err error) (CaseResult, error) {
	if err == nil {
		return cr, fmt.Errorf("expected %s error, got success", c.Error)
	}
	got := categorize(err)
	if got != c.Error {
		return cr, fmt.Errorf("expected %s error, got %s (%v)", c.Error, got, err)
	}
	cr.Error = got
	return cr, nil
}

// MarshalIndent renders a Result as stable, indented JSON for golden
// comparison and CLI output.
func (r *Result) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
