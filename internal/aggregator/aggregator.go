// Package aggregator composes per-stage results into the run's
// AnalysisSummary, HealthMetrics, DirectoryHealthTree, and
// QualityGateResult, the Result Aggregator capability spec.md §4.10
// describes. Grounded in the original implementation's aggregation pass
// (src/core/pipeline/code_dictionary.rs for short codes,
// src/io/reports/hierarchy.rs for the directory tree shape) reimplemented
// against this module's ComprehensiveAnalysisResult fields.
package aggregator

import (
	"path"
	"sort"
	"strings"

	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/types"
)

// EntityInfo is the minimal per-entity material the aggregator needs to
// build summaries and directory health, independent of how upstream
// stages represent an entity internally.
type EntityInfo struct {
	ID           string
	FilePath     string
	Language     string
	LinesOfCode  int
}

// Summarize builds AnalysisSummary from the discovered entities and the
// refactoring opportunities every scored entity produced.
func Summarize(entities []EntityInfo, opportunities []types.RefactoringOpportunity, scores []types.ScoringResult) types.AnalysisSummary {
	summary := types.AnalysisSummary{}

	files := make(map[string]bool)
	languages := make(map[string]bool)
	for _, e := range entities {
		files[e.FilePath] = true
		if e.Language != "" {
			languages[e.Language] = true
		}
		summary.TotalLinesOfCode += e.LinesOfCode
	}
	summary.TotalFiles = len(files)
	summary.TotalEntities = len(entities)
	summary.RefactoringNeeded = len(opportunities)

	for lang := range languages {
		summary.DetectedLanguages = append(summary.DetectedLanguages, lang)
	}
	sort.Strings(summary.DetectedLanguages)

	for _, s := range scores {
		switch s.Priority {
		case types.PriorityCritical:
			summary.CriticalIssues++
		case types.PriorityHigh:
			summary.HighPriorityIssues++
		}
	}
	return summary
}

// ComputeHealthMetrics averages the five category scores across scored
// entities and applies the spec.md §4.10 weighted formula. Categories
// missing from a vector's CategoryScores contribute 0 for that entity,
// matching the normalizer's identity-for-unseen-feature behavior.
func ComputeHealthMetrics(scores []types.ScoringResult) types.HealthMetrics {
	var h types.HealthMetrics
	if len(scores) == 0 {
		h.ComputeOverall()
		return h
	}

	var maintainability, structure, complexity, techDebt, docHealth float64
	for _, s := range scores {
		maintainability += s.CategoryScores["maintainability"]
		structure += s.CategoryScores["structure"]
		complexity += s.CategoryScores["complexity"]
		techDebt += s.CategoryScores["technical_debt"]
		docHealth += s.CategoryScores["documentation"]
	}
	n := float64(len(scores))
	h = types.HealthMetrics{
		Maintainability: maintainability / n,
		Structure:       structure / n,
		Complexity:      complexity / n,
		TechnicalDebt:   techDebt / n,
		DocHealth:       docHealth / n,
	}
	h.ComputeOverall()
	return h
}

// BuildHealthTree rolls entity-level scores up into a DirectoryHealthTree,
// one node per directory prefix from root "." down to each file's parent
// directory, aggregating file/entity counts and average scores.
func BuildHealthTree(entities []EntityInfo, scoreByEntity map[string]types.ScoringResult, opportunitiesByEntity map[string][]types.RefactoringOpportunity) *types.DirectoryHealthTree {
	tree := types.NewDirectoryHealthTree()

	byDir := make(map[string][]EntityInfo)
	for _, e := range entities {
		dir := path.Dir(e.FilePath)
		byDir[dir] = append(byDir[dir], e)
	}

	for dir, ents := range byDir {
		ensureDirPath(tree, dir)
		node := tree.Nodes[dir]

		files := make(map[string]bool)
		var scoreSum float64
		var docSum float64
		scoredCount := 0
		for _, e := range ents {
			files[e.FilePath] = true
			node.EntityCount++
			if s, ok := scoreByEntity[e.ID]; ok {
				scoreSum += s.OverallScore
				docSum += s.CategoryScores["documentation"]
				scoredCount++
				if s.Priority == types.PriorityCritical {
					node.CriticalIssues++
				}
				if s.Priority == types.PriorityHigh {
					node.HighPriorityIssues++
				}
			}
			node.RefactoringNeeded += len(opportunitiesByEntity[e.ID])
		}
		node.FileCount = len(files)
		if scoredCount > 0 {
			node.AvgRefactoringScore = scoreSum / float64(scoredCount)
			node.HealthScore = 1 - (scoreSum/float64(scoredCount))/100
			node.DocHealthScore = docSum / float64(scoredCount)
		}
	}

	rollUp(tree, tree.Root)
	return tree
}

// ensureDirPath walks dir's path components from root, creating any
// missing DirectoryHealth nodes and wiring parent/child links.
func ensureDirPath(tree *types.DirectoryHealthTree, dir string) {
	dir = path.Clean(dir)
	if dir == "." || dir == "" {
		return
	}
	if _, ok := tree.Nodes[dir]; ok {
		return
	}

	parent := path.Dir(dir)
	ensureDirPath(tree, parent)
	parentKey := parent
	if parentKey == "" {
		parentKey = "."
	}

	tree.Nodes[dir] = &types.DirectoryHealth{Path: dir, Parent: parentKey}
	pn := tree.Nodes[parentKey]
	pn.Children = append(pn.Children, dir)
}

// rollUp propagates child counts/averages up into parent nodes, deepest
// first, so a mid-tree directory's numbers include its subdirectories.
// HealthScore, AvgRefactoringScore, and DocHealthScore are recomputed as
// the file-count-weighted mean of the directory's own directly-scored
// entities and its children's (already rolled-up) scores, per spec.md
// §3's invariant that a directory's health score is the file-count-
// weighted mean of its descendants.
func rollUp(tree *types.DirectoryHealthTree, root string) {
	node, ok := tree.Nodes[root]
	if !ok {
		return
	}

	ownFileCount := node.FileCount
	weightedHealth := node.HealthScore * float64(ownFileCount)
	weightedAvgRefactor := node.AvgRefactoringScore * float64(ownFileCount)
	weightedDoc := node.DocHealthScore * float64(ownFileCount)
	totalWeight := ownFileCount

	for _, child := range node.Children {
		rollUp(tree, child)
		cn := tree.Nodes[child]
		node.FileCount += cn.FileCount
		node.EntityCount += cn.EntityCount
		node.RefactoringNeeded += cn.RefactoringNeeded
		node.CriticalIssues += cn.CriticalIssues
		node.HighPriorityIssues += cn.HighPriorityIssues

		weight := cn.FileCount
		weightedHealth += cn.HealthScore * float64(weight)
		weightedAvgRefactor += cn.AvgRefactoringScore * float64(weight)
		weightedDoc += cn.DocHealthScore * float64(weight)
		totalWeight += weight
	}

	if totalWeight > 0 {
		node.HealthScore = weightedHealth / float64(totalWeight)
		node.AvgRefactoringScore = weightedAvgRefactor / float64(totalWeight)
		node.DocHealthScore = weightedDoc / float64(totalWeight)
	}
}

// Flatten walks the tree into a slice ordered by path depth then name,
// the shape the original hierarchy renderer consumed before emitting a
// report; called by the tests, not by Summarize or the orchestrator.
func Flatten(tree *types.DirectoryHealthTree) []*types.DirectoryHealth {
	var out []*types.DirectoryHealth
	for _, n := range tree.Nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := strings.Count(out[i].Path, "/"), strings.Count(out[j].Path, "/")
		if di != dj {
			return di < dj
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// EvaluateQualityGate checks the six fixed rules spec.md §4.10 names
// against the run's aggregated metrics, returning a violation per
// crossed threshold. passed = len(violations) == 0.
func EvaluateQualityGate(cfg config.QualityGateConfig, health types.HealthMetrics, summary types.AnalysisSummary) types.QualityGateResult {
	if !cfg.Enabled {
		return types.NewQualityGateResult(nil, health.Overall)
	}

	var violations []types.QualityGateViolation
	if health.Maintainability < cfg.MinMaintainability {
		violations = append(violations, types.QualityGateViolation{
			RuleName: "Minimum maintainability", Metric: health.Maintainability, Threshold: cfg.MinMaintainability,
			Message: "maintainability below configured minimum",
		})
	}
	if health.Complexity > cfg.MaxComplexity {
		violations = append(violations, types.QualityGateViolation{
			RuleName: "Maximum complexity", Metric: health.Complexity, Threshold: cfg.MaxComplexity,
			Message: "complexity above configured maximum",
		})
	}
	if health.TechnicalDebt > cfg.MaxTechnicalDebtRatio {
		violations = append(violations, types.QualityGateViolation{
			RuleName: "Maximum technical debt ratio", Metric: health.TechnicalDebt, Threshold: cfg.MaxTechnicalDebtRatio,
			Message: "technical debt ratio above configured maximum",
		})
	}
	if summary.CriticalIssues > cfg.MaxCriticalIssues {
		violations = append(violations, types.QualityGateViolation{
			RuleName: "Critical issues", Metric: float64(summary.CriticalIssues), Threshold: float64(cfg.MaxCriticalIssues),
			Message: "critical issue count above configured maximum",
		})
	}
	if summary.HighPriorityIssues > cfg.MaxHighPriorityIssues {
		violations = append(violations, types.QualityGateViolation{
			RuleName: "High priority issues", Metric: float64(summary.HighPriorityIssues), Threshold: float64(cfg.MaxHighPriorityIssues),
			Message: "high-priority issue count above configured maximum",
		})
	}
	if health.DocHealth < cfg.MinDocHealth {
		violations = append(violations, types.QualityGateViolation{
			RuleName: "Minimum documentation health", Metric: health.DocHealth, Threshold: cfg.MinDocHealth,
			Message: "documentation health below configured minimum",
		})
	}

	return types.NewQualityGateResult(violations, health.Overall)
}
