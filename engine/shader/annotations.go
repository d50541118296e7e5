// annotations.go defines the @oxy: annotations understood by the shader pre-processor.
// Annotations are single-line comments ("//@oxy:<kind> [arg]") that are valid in both WGSL and
// GLSL, so one annotated source compiles unchanged when the pre-processor is bypassed.
package shader

import (
	"fmt"
	"slices"
	"strings"
)

// annotationPrefix marks an annotation within a comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the pre-processor action of an annotation.
type AnnotationType string

const (
	// AnnotationTypeIf keeps the following lines only when the named define is set.
	//
	// Syntax: //@oxy:if <DEFINE>
	AnnotationTypeIf AnnotationType = "if"

	// AnnotationTypeIfNot keeps the following lines only when the named define is not set.
	//
	// Syntax: //@oxy:ifnot <DEFINE>
	AnnotationTypeIfNot AnnotationType = "ifnot"

	// AnnotationTypeElse flips the innermost if or ifnot block.
	AnnotationTypeElse AnnotationType = "else"

	// AnnotationTypeEndIf closes the innermost if or ifnot block.
	AnnotationTypeEndIf AnnotationType = "endif"

	// AnnotationTypeInclude injects a registered source chunk. The chunk is pre-processed with
	// the same defines.
	//
	// Syntax: //@oxy:include <chunk>
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeUniforms expands into the program's uniform and sampler declarations.
	AnnotationTypeUniforms AnnotationType = "uniforms"
)

// Annotation is one parsed annotation line.
type Annotation struct {
	Type AnnotationType
	// Arg is the define or chunk name; empty for else, endif and uniforms.
	Arg string
	// Line is the 1-based source line, for error reporting.
	Line int
}

// Chunk names accepted by include annotations.
const (
	ChunkLighting = "lighting"
	ChunkShadow   = "shadow"
)

var validChunks = []string{ChunkLighting, ChunkShadow}

// parseAnnotation parses one source line. It returns nil with no error for lines that are not
// annotations.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number
//
// Returns:
//   - *Annotation: the annotation, or nil
//   - error: if the line carries the prefix but is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}
	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	kind := AnnotationType(args[0])
	switch kind {
	case AnnotationTypeIf, AnnotationTypeIfNot, AnnotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:%s requires exactly one argument", lineNum, kind)
		}
		if kind == AnnotationTypeInclude && !slices.Contains(validChunks, args[1]) {
			return nil, fmt.Errorf("line %d: unknown chunk %q in @oxy:include", lineNum, args[1])
		}
		return &Annotation{Type: kind, Arg: args[1], Line: lineNum}, nil
	case AnnotationTypeElse, AnnotationTypeEndIf, AnnotationTypeUniforms:
		if len(args) != 1 {
			return nil, fmt.Errorf("line %d: @oxy:%s takes no arguments", lineNum, kind)
		}
		return &Annotation{Type: kind, Line: lineNum}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
