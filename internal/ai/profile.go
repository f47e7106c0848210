package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Profile is the analysis intent sent to the collaborator. Each profile has
// its own prompt and its own expected response shape.
type Profile string

const (
	ProfileComposition   Profile = "composition"
	ProfileSegmentation  Profile = "segmentation"
	ProfileExtraction    Profile = "extraction"
	ProfileConsolidation Profile = "consolidation"
	ProfileCodeAnalysis  Profile = "code_analysis"
	ProfileValidation    Profile = "validation"
)

const compositionPrompt = `You are an expert document analyst. Analyze the document text and classify its content composition.
Identify the content types present (BRD, SRS, API_DOCS, USER_STORIES, TECHNICAL_SPECS, PROCESS_FLOWS, DATA_MODELS, SECURITY_REQUIREMENTS, PERFORMANCE_REQUIREMENTS, UI_UX_SPECS, UNKNOWN) and estimate their percentage distribution.
- Only include content types that are actually present.
- Percentages are integers and must total 100.
Return ONLY valid JSON:
{"composition": {"<TYPE>": <percentage>, ...}, "confidence": "HIGH|MEDIUM|LOW", "reasoning": "brief explanation"}`

const segmentationPrompt = `You are an expert content analyst. Segment the document text into logical sections based on the composition analysis.
- Each segment represents a distinct content type.
- start_char_index and end_char_index must be valid positions in the text.
- Cover the entire document text.
Return ONLY valid JSON:
{"segments": [{"segment_type": "<TYPE>", "start_char_index": <int>, "end_char_index": <int>, "confidence": "HIGH|MEDIUM|LOW"}], "total_segments": <int>}`

const extractionPrompt = `You are an expert data extraction specialist. Extract structured information from the document segment below, using a structure appropriate for its segment type (requirements, endpoints, entities, constraints, acceptance criteria, ...).
- Be comprehensive but concise.
- Use consistent naming conventions.
Return ONLY a valid JSON object.`

const consolidationPrompt = `You are an expert analyst. Merge the per-segment structured analyses below into one unified structured view of the document.
- Deduplicate overlapping facts, keep every distinct requirement or entity.
- Group the output by concern (requirements, interfaces, data, security, other).
Return ONLY a valid JSON object.`

const codeAnalysisPrompt = `You are a senior software engineer reviewing source code. Analyze the code thoroughly, regardless of language or framework.
Return ONLY valid JSON:
{"summary": "2-3 sentences on the file's purpose and role", "structured_analysis": {"language_info": {}, "components": [], "dependencies": [], "exports": []}}`

const validationPrompt = `You are an expert software architect acting as a validation engine. Compare the document content against the code content and report every clear contradiction.
Return ONLY a valid JSON array of mismatch objects, each matching:
{"mismatch_type": "<short tag>", "description": "one-sentence description", "severity": "High|Medium|Low", "confidence": "High|Medium|Low", "details": {"expected": "what the document specifies", "actual": "what exists in the code (or 'Missing')", "evidence_document": "direct quote from the document", "evidence_code": "direct quote or reference from the code", "suggested_action": "brief actionable recommendation"}}
If no mismatches are found, return [].`

var prompts = map[Profile]string{
	ProfileComposition:   compositionPrompt,
	ProfileSegmentation:  segmentationPrompt,
	ProfileExtraction:    extractionPrompt,
	ProfileConsolidation: consolidationPrompt,
	ProfileCodeAnalysis:  codeAnalysisPrompt,
	ProfileValidation:    validationPrompt,
}

func BuildPrompt(profile Profile, input string) (string, error) {
	base, ok := prompts[profile]
	if !ok {
		return "", fmt.Errorf("unknown analysis profile: %s", profile)
	}
	return base + "\n\n" + strings.TrimSpace(input), nil
}

// CompositionResult is pass 1 output: content-type percentages plus an
// overall confidence.
type CompositionResult struct {
	Composition map[string]int `json:"composition"`
	Confidence  string         `json:"confidence"`
	Reasoning   string         `json:"reasoning,omitempty"`
}

type SegmentSpan struct {
	SegmentType    string `json:"segment_type"`
	StartCharIndex int    `json:"start_char_index"`
	EndCharIndex   int    `json:"end_char_index"`
	Confidence     string `json:"confidence,omitempty"`
}

type SegmentationResult struct {
	Segments      []SegmentSpan `json:"segments"`
	TotalSegments int           `json:"total_segments,omitempty"`
}

type CodeAnalysisResult struct {
	Summary            string          `json:"summary"`
	StructuredAnalysis json.RawMessage `json:"structured_analysis"`
}

type FindingDetails struct {
	Expected         string `json:"expected"`
	Actual           string `json:"actual"`
	EvidenceDocument string `json:"evidence_document"`
	EvidenceCode     string `json:"evidence_code"`
	SuggestedAction  string `json:"suggested_action"`
}

// Finding is one discrepancy reported by the validation profile.
type Finding struct {
	MismatchType string         `json:"mismatch_type"`
	Description  string         `json:"description"`
	Severity     string         `json:"severity"`
	Confidence   string         `json:"confidence"`
	Details      FindingDetails `json:"details"`
}

func ParseComposition(raw json.RawMessage) (*CompositionResult, error) {
	var out CompositionResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse composition: %w", err)
	}
	if len(out.Composition) == 0 {
		return nil, fmt.Errorf("composition response has no content types")
	}
	return &out, nil
}

func ParseSegmentation(raw json.RawMessage) (*SegmentationResult, error) {
	var out SegmentationResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse segmentation: %w", err)
	}
	return &out, nil
}

func ParseCodeAnalysis(raw json.RawMessage) (*CodeAnalysisResult, error) {
	var out CodeAnalysisResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse code analysis: %w", err)
	}
	return &out, nil
}

// ParseFindings accepts either a JSON array or a single object; some models
// return a bare object when only one discrepancy exists.
func ParseFindings(raw json.RawMessage) ([]Finding, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var one Finding
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("parse findings: %w", err)
		}
		if one.Description == "" {
			return nil, nil
		}
		return []Finding{one}, nil
	}
	var many []Finding
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("parse findings: %w", err)
	}
	return many, nil
}
