package features

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/valknut-go/internal/types"
)

// Opportunities evaluates the line-based thresholds against one entity's
// source text, porting the original implementation's line-scanning
// thresholds directly (long method >30 lines, large class >100 lines,
// >=3 logical operators in one conditional, >=3 repeated non-trivial
// lines, commented-out code). These are text-level checks rather than
// AST-node checks, so Opportunities runs independent of the shared
// Visitor traversal. computedFeatures is the entity's already-scored
// complexity feature map (from ComplexityDetector); passing nil skips
// the cyclomatic-based ReduceComplexity check.
func Opportunities(entity types.CodeEntity, computedFeatures map[string]float64) []types.RefactoringOpportunity {
	var out []types.RefactoringOpportunity
	loc := countNonBlankLines(entity.SourceCode)

	if cyclomatic, ok := computedFeatures["cyclomatic"]; ok && cyclomatic > 15 {
		impact := clampImpact(cyclomatic / 3.0)
		out = append(out, newOpportunity(entity, types.OpReduceComplexity,
			fmt.Sprintf("cyclomatic complexity %.0f should be reduced", cyclomatic), impact, 7))
	}

	switch entity.EntityType {
	case types.EntityFunction, types.EntityMethod:
		if loc > 30 {
			impact := clampImpact(float64(loc) / 10.0)
			out = append(out, newOpportunity(entity, types.OpExtractMethod,
				fmt.Sprintf("long function/method (%d lines) should be broken down", loc), impact, 6))
		}
	case types.EntityClass, types.EntityStruct:
		if loc > 100 {
			impact := clampImpact(float64(loc) / 20.0)
			out = append(out, newOpportunity(entity, types.OpExtractClass,
				fmt.Sprintf("large type (%d lines) should be split", loc), impact, 8))
		}
	}

	if ops := maxLogicalOperatorsInConditional(entity.SourceCode); ops >= 3 {
		impact := clampImpact(float64(ops) * 2.0)
		out = append(out, newOpportunity(entity, types.OpSimplifyConditionals,
			fmt.Sprintf("conditional with %d logical operators should be simplified", ops), impact, 4))
	}

	if dup := maxRepeatedLineCount(entity.SourceCode); dup >= 3 {
		impact := clampImpact(float64(dup))
		out = append(out, newOpportunity(entity, types.OpEliminateDuplication,
			fmt.Sprintf("repeated line pattern found %d times within entity", dup), impact, 5))
	}

	if isUninformativeName(entity.Name) {
		out = append(out, newOpportunity(entity, types.OpImproveNaming,
			fmt.Sprintf("name %q is uninformative and should be renamed", entity.Name), 2, 2))
	}

	if hasCommentedOutCode(entity.SourceCode) {
		out = append(out, newOpportunity(entity, types.OpRemoveDeadCode,
			"commented-out code should be removed", 3, 1))
	}

	return out
}

func newOpportunity(entity types.CodeEntity, kind types.RefactoringOpportunityType, desc string, impact, effort float64) types.RefactoringOpportunity {
	return types.RefactoringOpportunity{
		EntityID: entity.ID,
		Type:     kind,
		Detail:   desc,
		Impact:   impact,
		Effort:   effort,
	}
}

func clampImpact(v float64) float64 {
	if v > 10 {
		return 10
	}
	if v < 1 {
		return 1
	}
	return v
}

func maxLogicalOperatorsInConditional(src string) int {
	maxOps := 0
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "if ") && !strings.Contains(trimmed, " if ") {
			continue
		}
		ops := strings.Count(trimmed, "&&") + strings.Count(trimmed, " and ") +
			strings.Count(trimmed, "||") + strings.Count(trimmed, " or ")
		if ops > maxOps {
			maxOps = ops
		}
	}
	return maxOps
}

func maxRepeatedLineCount(src string) int {
	counts := make(map[string]int)
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= 10 || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		counts[trimmed]++
	}
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	return maxCount
}

var genericNames = map[string]bool{
	"tmp": true, "temp": true, "data": true, "val": true, "foo": true, "bar": true,
	"obj": true, "thing": true, "helper": true, "util": true, "do_it": true, "doIt": true,
}

// isUninformativeName flags single/double-letter names (other than common
// loop/receiver idioms) and a small set of generic placeholder names.
func isUninformativeName(name string) bool {
	if name == "" || name == "<anonymous>" {
		return false
	}
	if genericNames[strings.ToLower(name)] {
		return true
	}
	if len(name) <= 2 {
		switch strings.ToLower(name) {
		case "i", "j", "k", "n", "id", "ok", "ts", "fn", "me", "wg":
			return false
		}
		return true
	}
	return false
}

func hasCommentedOutCode(src string) bool {
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		isComment := strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#")
		if isComment && len(trimmed) > 20 && strings.Contains(trimmed, "(") &&
			(strings.Contains(trimmed, "=") || strings.Contains(trimmed, "def ") || strings.Contains(trimmed, "function")) {
			return true
		}
	}
	return false
}
