package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// mergeKDL parses a KDL document and overlays its values onto cfg,
// mirroring the teacher's internal/config/kdl_config.go: walk top-level
// nodes by name, dispatch into a per-section switch, and use small
// first-argument helpers since KDL nodes carry positional arguments.
func mergeKDL(cfg *Config, data []byte) error {
	doc, err := kdl.Parse(strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("parse kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "analysis":
			mergeAnalysis(cfg, n)
		case "lsh":
			mergeLSH(cfg, n)
		case "scoring":
			mergeScoring(cfg, n)
		case "dedupe":
			mergeDedupe(cfg, n)
		case "coverage":
			mergeCoverage(cfg, n)
		case "structure":
			mergeStructure(cfg, n)
		case "quality_gate":
			mergeQualityGate(cfg, n)
		case "languages":
			mergeLanguages(cfg, n)
		case "cache_dir":
			if s, ok := firstStringArg(n); ok {
				cfg.CacheDir = s
			}
		}
	}
	return nil
}

func mergeAnalysis(cfg *Config, n *document.Node) {
	a := &cfg.Analysis
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "enable_scoring":
			setBool(cn, &a.EnableScoring)
		case "enable_graph_analysis":
			setBool(cn, &a.EnableGraphAnalysis)
		case "enable_lsh_analysis":
			setBool(cn, &a.EnableLSHAnalysis)
		case "enable_refactoring_analysis":
			setBool(cn, &a.EnableRefactoringAnalysis)
		case "enable_coverage_analysis":
			setBool(cn, &a.EnableCoverageAnalysis)
		case "enable_structure_analysis":
			setBool(cn, &a.EnableStructureAnalysis)
		case "enable_names_analysis":
			setBool(cn, &a.EnableNamesAnalysis)
		case "confidence_threshold":
			setFloat(cn, &a.ConfidenceThreshold)
		case "max_files":
			setInt(cn, &a.MaxFiles)
		case "max_file_size_bytes":
			if v, ok := firstIntArg(cn); ok {
				a.MaxFileSizeBytes = int64(v)
			}
		case "include_patterns":
			a.IncludePatterns = collectStringArgs(cn)
		case "exclude_patterns":
			a.ExcludePatterns = collectStringArgs(cn)
		case "ignore_patterns":
			a.IgnorePatterns = collectStringArgs(cn)
		}
	}
}

func mergeLSH(cfg *Config, n *document.Node) {
	l := &cfg.LSH
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "num_hashes":
			setInt(cn, &l.NumHashes)
		case "num_bands":
			setInt(cn, &l.NumBands)
		case "shingle_size":
			setInt(cn, &l.ShingleSize)
		case "similarity_threshold":
			setFloat(cn, &l.SimilarityThreshold)
		case "max_candidates":
			setInt(cn, &l.MaxCandidates)
		case "use_semantic_similarity":
			setBool(cn, &l.UseSemanticSimilarity)
		case "apted_max_pairs_per_entity":
			setInt(cn, &l.AptedMaxPairsPerEntity)
		case "apted_max_nodes":
			setInt(cn, &l.AptedMaxNodes)
		case "min_ast_nodes":
			setInt(cn, &l.MinASTNodes)
		}
	}
}

func mergeScoring(cfg *Config, n *document.Node) {
	s := &cfg.Scoring
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "normalization_scheme":
			if v, ok := firstStringArg(cn); ok {
				s.NormalizationScheme = NormalizationScheme(v)
			}
		case "use_bayesian_fallbacks":
			setBool(cn, &s.UseBayesianFallbacks)
		case "confidence_reporting":
			setBool(cn, &s.ConfidenceReporting)
		case "weights":
			for _, wn := range cn.Children {
				switch nodeName(wn) {
				case "complexity":
					setFloat(wn, &s.Weights.Complexity)
				case "graph":
					setFloat(wn, &s.Weights.Graph)
				case "structure":
					setFloat(wn, &s.Weights.Structure)
				case "style":
					setFloat(wn, &s.Weights.Style)
				case "coverage":
					setFloat(wn, &s.Weights.Coverage)
				}
			}
		}
	}
}

func mergeDedupe(cfg *Config, n *document.Node) {
	d := &cfg.Dedupe
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "enabled":
			setBool(cn, &d.Enabled)
		case "auto":
			setBool(cn, &d.Auto)
		case "min_function_tokens":
			setInt(cn, &d.MinFunctionTokens)
		case "min_match_tokens":
			setInt(cn, &d.MinMatchTokens)
		case "require_blocks":
			setBool(cn, &d.RequireBlocks)
		case "similarity":
			setFloat(cn, &d.Similarity)
		case "io_mismatch_penalty":
			setFloat(cn, &d.IOMismatchPenalty)
		case "dry_run":
			setBool(cn, &d.DryRun)
		case "weights":
			for _, wn := range cn.Children {
				switch nodeName(wn) {
				case "ast":
					setFloat(wn, &d.Weights.AST)
				case "pdg":
					setFloat(wn, &d.Weights.PDG)
				case "emb":
					setFloat(wn, &d.Weights.Emb)
				}
			}
		case "stop_motifs":
			for _, sn := range cn.Children {
				switch nodeName(sn) {
				case "percentile":
					setFloat(sn, &d.StopMotifs.Percentile)
				case "refresh_days":
					setInt(sn, &d.StopMotifs.RefreshDays)
				}
			}
		case "auto_calibration":
			for _, an := range cn.Children {
				switch nodeName(an) {
				case "quality_target":
					setFloat(an, &d.AutoCalibration.QualityTarget)
				case "sample_size":
					setInt(an, &d.AutoCalibration.SampleSize)
				case "max_iterations":
					setInt(an, &d.AutoCalibration.MaxIterations)
				}
			}
		case "ranking":
			for _, rn := range cn.Children {
				switch nodeName(rn) {
				case "by":
					if v, ok := firstStringArg(rn); ok {
						d.Ranking.By = RankingBy(v)
					}
				case "min_saved_tokens":
					setInt(rn, &d.Ranking.MinSavedTokens)
				case "min_rarity_gain":
					setFloat(rn, &d.Ranking.MinRarityGain)
				case "live_reach_boost":
					setBool(rn, &d.Ranking.LiveReachBoost)
				}
			}
		}
	}
}

func mergeCoverage(cfg *Config, n *document.Node) {
	c := &cfg.Coverage
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "auto_discover":
			setBool(cn, &c.AutoDiscover)
		case "search_paths":
			c.SearchPaths = collectStringArgs(cn)
		case "file_patterns":
			c.FilePatterns = collectStringArgs(cn)
		case "max_age_days":
			setInt(cn, &c.MaxAgeDays)
		case "coverage_file":
			if v, ok := firstStringArg(cn); ok {
				c.CoverageFile = v
			}
		}
	}
}

func mergeStructure(cfg *Config, n *document.Node) {
	s := &cfg.Structure
	for _, sn := range n.Children {
		switch nodeName(sn) {
		case "balance_tolerance":
			setFloat(sn, &s.BalanceTolerance)
		case "target_loc_per_subdir":
			setInt(sn, &s.TargetLocPerSubdir)
		case "min_clusters":
			setInt(sn, &s.MinClusters)
		case "max_clusters":
			setInt(sn, &s.MaxClusters)
		case "fallback_names":
			s.FallbackNames = collectStringArgs(sn)
		}
	}
}

func mergeQualityGate(cfg *Config, n *document.Node) {
	q := &cfg.QualityGate
	for _, qn := range n.Children {
		switch nodeName(qn) {
		case "enabled":
			setBool(qn, &q.Enabled)
		case "min_maintainability":
			setFloat(qn, &q.MinMaintainability)
		case "max_complexity":
			setFloat(qn, &q.MaxComplexity)
		case "max_technical_debt_ratio":
			setFloat(qn, &q.MaxTechnicalDebtRatio)
		case "max_critical_issues":
			setInt(qn, &q.MaxCriticalIssues)
		case "max_high_priority_issues":
			setInt(qn, &q.MaxHighPriorityIssues)
		case "min_doc_health":
			setFloat(qn, &q.MinDocHealth)
		}
	}
}

func mergeLanguages(cfg *Config, n *document.Node) {
	for _, ln := range n.Children {
		name := nodeName(ln)
		lc, ok := cfg.Languages[name]
		if !ok {
			lc = LanguageConfig{Enabled: true}
		}
		for _, fn := range ln.Children {
			switch nodeName(fn) {
			case "enabled":
				setBool(fn, &lc.Enabled)
			case "file_extensions":
				lc.FileExtensions = collectStringArgs(fn)
			case "tree_sitter_language":
				if v, ok := firstStringArg(fn); ok {
					lc.TreeSitterLanguage = v
				}
			case "max_file_size_mb":
				setInt(fn, &lc.MaxFileSizeMB)
			case "complexity_threshold":
				setFloat(fn, &lc.ComplexityThreshold)
			}
		}
		cfg.Languages[name] = lc
	}
}

func setBool(n *document.Node, dst *bool) {
	if v, ok := firstBoolArg(n); ok {
		*dst = v
	}
}

func setInt(n *document.Node, dst *int) {
	if v, ok := firstIntArg(n); ok {
		*dst = v
	}
}

func setFloat(n *document.Node, dst *float64) {
	if v, ok := firstFloatArg(n); ok {
		*dst = v
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
