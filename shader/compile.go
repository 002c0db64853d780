package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// CompileError reports a stage that failed to compile.
// Diagnostic holds the compiler output verbatim.
type CompileError struct {
	Stage      Stage
	EntryPoint string
	Diagnostic string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s stage %q: %s", e.Stage, e.EntryPoint, e.Diagnostic)
}

// Compiled is a program whose stages passed validation.
type Compiled struct {
	Program  Program
	Vertex   *ir.Module
	Fragment *ir.Module
}

// Compile parses, lowers and validates both stages of p, then checks that
// each named entry point exists with the matching stage. Stages sharing the
// same source are compiled once.
func Compile(p Program) (*Compiled, error) {
	vs, err := compileStage(StageVertex, p.Vertex, nil)
	if err != nil {
		return nil, err
	}
	var reuse *ir.Module
	if p.Fragment.Source == p.Vertex.Source {
		reuse = vs
	}
	fs, err := compileStage(StageFragment, p.Fragment, reuse)
	if err != nil {
		return nil, err
	}
	return &Compiled{Program: p, Vertex: vs, Fragment: fs}, nil
}

func compileStage(stage Stage, e Entry, module *ir.Module) (*ir.Module, error) {
	fail := func(diag string) error {
		return &CompileError{Stage: stage, EntryPoint: e.EntryPoint, Diagnostic: diag}
	}

	if module == nil {
		ast, err := naga.Parse(e.Source)
		if err != nil {
			return nil, fail(err.Error())
		}
		module, err = naga.LowerWithSource(ast, e.Source)
		if err != nil {
			return nil, fail(err.Error())
		}
		verrs, err := naga.Validate(module)
		if err != nil {
			return nil, fail(err.Error())
		}
		if len(verrs) > 0 {
			msgs := make([]string, len(verrs))
			for i, v := range verrs {
				msgs[i] = v.Error()
			}
			return nil, fail(strings.Join(msgs, "\n"))
		}
	}

	want := irStage(stage)
	for _, ep := range module.EntryPoints {
		if ep.Name != e.EntryPoint {
			continue
		}
		if ep.Stage != want {
			return nil, fail(fmt.Sprintf("entry point %q is a %s shader, want %s",
				e.EntryPoint, irStageName(ep.Stage), stage))
		}
		return module, nil
	}
	return nil, fail(fmt.Sprintf("entry point %q not found", e.EntryPoint))
}

func irStage(s Stage) ir.ShaderStage {
	if s == StageFragment {
		return ir.StageFragment
	}
	return ir.StageVertex
}

func irStageName(s ir.ShaderStage) string {
	switch s {
	case ir.StageVertex:
		return "vertex"
	case ir.StageFragment:
		return "fragment"
	case ir.StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}
