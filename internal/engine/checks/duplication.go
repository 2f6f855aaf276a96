package checks

import (
	"classlint/internal/engine/bytecode"
	"classlint/internal/engine/model"
	"fmt"
	"math"
)

type DuplicationOptions struct {
	// Threshold is the similarity a pair must exceed to be reported.
	Threshold float64
	// MinInstructions excludes methods with fewer meaningful instructions.
	MinInstructions int
}

// Duplication compares every pair of methods in a class by the longest
// common subsequence of their opcode sequences.
type Duplication struct {
	opts DuplicationOptions
}

func NewDuplication(opts DuplicationOptions) *Duplication {
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = 0.8
	}
	if opts.MinInstructions <= 0 {
		opts.MinInstructions = 5
	}
	return &Duplication{opts: opts}
}

func (d *Duplication) Name() string       { return "Duplication" }
func (d *Duplication) Category() Category { return Principle }
func (d *Duplication) Description() string {
	return "Methods in the same class whose instruction sequences are nearly identical."
}

func (d *Duplication) Run(class *model.Class, _ *Context) []Finding {
	type candidate struct {
		method  *model.Method
		opcodes []bytecode.Opcode
	}
	var candidates []candidate
	for _, m := range class.Methods {
		if m.IsConstructor() || m.IsInitializer() {
			continue
		}
		ops := m.Opcodes()
		if len(ops) < d.opts.MinInstructions {
			continue
		}
		candidates = append(candidates, candidate{method: m, opcodes: ops})
	}

	var findings []Finding
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			sim := Similarity(a.opcodes, b.opcodes)
			if sim <= d.opts.Threshold {
				continue
			}
			findings = append(findings, newFinding(d,
				methodLocation(class, a.method, a.method.FirstLine()),
				fmt.Sprintf("Methods '%s' and '%s' have high code duplication (%.0f%% similar)",
					a.method.Name, b.method.Name, math.Round(sim*100))))
		}
	}
	return findings
}

// Similarity is LCS(a, b) / max(len(a), len(b)), and 0 when either is empty.
func Similarity(a, b []bytecode.Opcode) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return float64(lcsLength(a, b)) / float64(longest)
}

// lcsLength is the classic dynamic program, kept to two rows.
func lcsLength(a, b []bytecode.Opcode) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
