// pre_processor.go implements the shader pre-processor. It resolves conditional blocks against a
// set of defines, injects shared chunks, and expands the uniform annotation into declarations for
// the target language, so every program variant is generated from one annotated source.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
)

// Language is the shading language a source is written in.
type Language int

const (
	LanguageWGSL Language = iota
	LanguageGLSL
)

func (l Language) String() string {
	if l == LanguageGLSL {
		return "glsl"
	}
	return "wgsl"
}

// maxIncludeDepth bounds nested includes.
const maxIncludeDepth = 4

// Environment is what a single Process call resolves annotations against.
type Environment struct {
	// Defines are the names set for if and ifnot blocks.
	Defines map[string]bool
	// Uniforms are expanded in order by the uniforms annotation.
	Uniforms []gpu.Uniform
	// Textured adds the u_texture sampler declaration.
	Textured bool
	// DepthTexture adds the u_shadowMap sampler declaration.
	DepthTexture bool
}

// PreProcessor turns an annotated source into plain WGSL or GLSL.
type PreProcessor interface {
	// Process resolves every annotation in source.
	//
	// Parameters:
	//   - source: the annotated source
	//   - env: the defines and declarations to resolve against
	//
	// Returns:
	//   - string: the processed source
	//   - error: if an annotation is malformed, a block is unbalanced, or a chunk is missing
	Process(source string, env Environment) (string, error)
}

type preProcessor struct {
	language Language
	chunks   map[string]string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor for one language.
//
// Parameters:
//   - language: the language of the sources and chunks
//   - chunks: the sources injected by include annotations, keyed by chunk name
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(language Language, chunks map[string]string) PreProcessor {
	return &preProcessor{language: language, chunks: chunks}
}

func (p *preProcessor) Process(source string, env Environment) (string, error) {
	var out strings.Builder
	if err := p.process(&out, source, env, 0); err != nil {
		return "", err
	}
	return out.String(), nil
}

// block is one open if or ifnot block.
type block struct {
	// parentActive is whether the enclosing block emits lines.
	parentActive bool
	taken        bool
	elseSeen     bool
	line         int
}

func (p *preProcessor) process(out *strings.Builder, source string, env Environment, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("includes nested deeper than %d", maxIncludeDepth)
	}
	var stack []block
	active := true

	for i, line := range strings.Split(source, "\n") {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return err
		}
		if a == nil {
			if active {
				out.WriteString(line)
				out.WriteByte('\n')
			}
			continue
		}

		switch a.Type {
		case AnnotationTypeIf, AnnotationTypeIfNot:
			cond := env.Defines[a.Arg]
			if a.Type == AnnotationTypeIfNot {
				cond = !cond
			}
			stack = append(stack, block{parentActive: active, taken: cond, line: a.Line})
			active = active && cond
		case AnnotationTypeElse:
			if len(stack) == 0 {
				return fmt.Errorf("line %d: @oxy:else without if", a.Line)
			}
			top := &stack[len(stack)-1]
			if top.elseSeen {
				return fmt.Errorf("line %d: second @oxy:else in block opened on line %d", a.Line, top.line)
			}
			top.elseSeen = true
			active = top.parentActive && !top.taken
		case AnnotationTypeEndIf:
			if len(stack) == 0 {
				return fmt.Errorf("line %d: @oxy:endif without if", a.Line)
			}
			active = stack[len(stack)-1].parentActive
			stack = stack[:len(stack)-1]
		case AnnotationTypeInclude:
			if !active {
				continue
			}
			chunk, ok := p.chunks[a.Arg]
			if !ok {
				return fmt.Errorf("line %d: chunk %q is not registered for %s", a.Line, a.Arg, p.language)
			}
			if err := p.process(out, chunk, env, depth+1); err != nil {
				return fmt.Errorf("chunk %s: %w", a.Arg, err)
			}
		case AnnotationTypeUniforms:
			if active {
				p.writeUniforms(out, env)
			}
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("line %d: @oxy:%s block is never closed", stack[len(stack)-1].line, AnnotationTypeIf)
	}
	return nil
}

var wgslTypes = map[gpu.UniformType]string{
	gpu.UniformFloat: "f32",
	gpu.UniformInt:   "i32",
	gpu.UniformVec2:  "vec2<f32>",
	gpu.UniformVec3:  "vec3<f32>",
	gpu.UniformVec4:  "vec4<f32>",
	gpu.UniformMat4:  "mat4x4<f32>",
}

var glslTypes = map[gpu.UniformType]string{
	gpu.UniformFloat: "float",
	gpu.UniformInt:   "int",
	gpu.UniformVec2:  "vec2",
	gpu.UniformVec3:  "vec3",
	gpu.UniformVec4:  "vec4",
	gpu.UniformMat4:  "mat4",
}

// writeUniforms emits the declarations matching the device binding layout: WGSL group 0 holds
// the uniform block at binding 0, the texture and its sampler at 1 and 2, and the shadow map
// with its comparison sampler at 3 and 4.
func (p *preProcessor) writeUniforms(out *strings.Builder, env Environment) {
	if p.language == LanguageGLSL {
		for _, u := range env.Uniforms {
			fmt.Fprintf(out, "uniform %s %s;\n", glslTypes[u.Type], u.Name)
		}
		if env.Textured {
			out.WriteString("uniform sampler2D u_texture;\n")
		}
		if env.DepthTexture {
			out.WriteString("uniform sampler2DShadow u_shadowMap;\n")
		}
		return
	}

	out.WriteString("struct Uniforms {\n")
	if len(env.Uniforms) == 0 {
		// WGSL structs need at least one member.
		out.WriteString("    _pad: vec4<f32>,\n")
	}
	for _, u := range env.Uniforms {
		fmt.Fprintf(out, "    %s: %s,\n", u.Name, wgslTypes[u.Type])
	}
	out.WriteString("}\n")
	out.WriteString("@group(0) @binding(0) var<uniform> u: Uniforms;\n")
	if env.Textured {
		out.WriteString("@group(0) @binding(1) var u_texture: texture_2d<f32>;\n")
		out.WriteString("@group(0) @binding(2) var u_sampler: sampler;\n")
	}
	if env.DepthTexture {
		out.WriteString("@group(0) @binding(3) var u_shadowMap: texture_depth_2d;\n")
		out.WriteString("@group(0) @binding(4) var u_shadowSampler: sampler_comparison;\n")
	}
}
