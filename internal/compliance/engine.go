package compliance

import "fmt"

// Engine checks detected shelf contents against planograms.
type Engine struct {
	norm *Normalizer
}

// NewEngine creates an Engine with the default product-name normalizer.
func NewEngine() *Engine {
	return &Engine{norm: NewNormalizer()}
}

// NewEngineWithNormalizer creates an Engine using a caller-supplied
// normalizer, e.g. one extended with store-specific synonyms.
func NewEngineWithNormalizer(n *Normalizer) *Engine {
	return &Engine{norm: n}
}

// cellContents accumulates detections that landed in one grid cell.
type cellContents struct {
	product  string
	quantity int
}

type gridKey struct {
	row, col int
}

// Check classifies every position declared in the planogram against the
// detections from one image analysis and computes the compliance score.
//
// Every declared position counts toward the score denominator, whether or
// not a detection signal was available for it. The score is
// 100 × correct / total declared positions (0 when the planogram declares
// none), and the result is compliant exactly when no issues were raised.
//
// A malformed planogram or detection list returns a *ValidationError; no
// partial result is produced.
func (e *Engine) Check(p *Planogram, detections []DetectedProduct) (*ComplianceResult, error) {
	if err := validate(p, detections); err != nil {
		return nil, err
	}

	grid := make(map[gridKey]*cellContents)
	emptySpaces := make(map[gridKey]bool)

	for _, d := range detections {
		key := gridKey{d.Row, d.Column}
		if e.norm.IsEmpty(d.Label) {
			emptySpaces[key] = true
			continue
		}
		qty := d.Quantity
		if qty == 0 {
			qty = 1
		}
		if c, ok := grid[key]; ok {
			c.quantity += qty
		} else {
			grid[key] = &cellContents{product: d.Label, quantity: qty}
		}
	}

	issues := make([]ComplianceIssue, 0)
	correct := 0
	total := 0

	for _, shelf := range p.Shelves {
		shelfKey := fmt.Sprintf("Shelf %d", shelf.Row)

		for _, section := range shelf.Sections {
			total++
			key := gridKey{shelf.Row, section.Column}

			if emptySpaces[key] {
				issues = append(issues, ComplianceIssue{
					Row:       shelf.Row,
					Column:    section.Column,
					IssueType: IssueOutOfStock,
					Expected:  fmt.Sprintf("%s: %s", shelfKey, section.ExpectedProduct),
					Found:     fmt.Sprintf("Found empty space where %s should be and needs to be restocked", section.ExpectedProduct),
					Severity:  SeverityHigh,
				})
				continue
			}

			cell, ok := grid[key]
			if !ok {
				issues = append(issues, ComplianceIssue{
					Row:       shelf.Row,
					Column:    section.Column,
					IssueType: IssueUndetected,
					Expected:  fmt.Sprintf("%s: %s", shelfKey, section.ExpectedProduct),
					Found:     fmt.Sprintf("No product detected where %s should be and needs to be restocked", section.ExpectedProduct),
					Severity:  SeverityHigh,
				})
				continue
			}

			if e.matches(cell.product, section) {
				correct++
				continue
			}

			issues = append(issues, ComplianceIssue{
				Row:       shelf.Row,
				Column:    section.Column,
				IssueType: IssueWrongProduct,
				Expected:  fmt.Sprintf("%s: %s", shelfKey, section.ExpectedProduct),
				Found:     fmt.Sprintf("Found %s where %s should be", cell.product, section.ExpectedProduct),
				Severity:  SeverityHigh,
			})
		}
	}

	score := 0.0
	if total > 0 {
		score = float64(correct) / float64(total) * 100
	}

	return &ComplianceResult{
		IsCompliant:       len(issues) == 0,
		ComplianceScore:   score,
		Issues:            issues,
		CorrectPlacements: correct,
		TotalPositions:    total,
		PlanogramName:     p.Name,
	}, nil
}

// matches reports whether a detected product satisfies a section, comparing
// the normalized detection against the normalized expected product and each
// normalized allowed variant.
func (e *Engine) matches(detected string, section PlanogramSection) bool {
	d := e.norm.Normalize(detected)
	if d == e.norm.Normalize(section.ExpectedProduct) {
		return true
	}
	for _, variant := range section.AllowedVariants {
		if d == e.norm.Normalize(variant) {
			return true
		}
	}
	return false
}

// validate rejects structurally broken input before any classification.
func validate(p *Planogram, detections []DetectedProduct) error {
	if p == nil {
		return &ValidationError{Field: "planogram", Msg: "must not be nil"}
	}
	for i, shelf := range p.Shelves {
		if shelf.Row < 0 {
			return &ValidationError{
				Field: fmt.Sprintf("planogram.shelves[%d].row", i),
				Msg:   "must not be negative",
			}
		}
		for j, section := range shelf.Sections {
			if section.Column < 0 {
				return &ValidationError{
					Field: fmt.Sprintf("planogram.shelves[%d].sections[%d].column", i, j),
					Msg:   "must not be negative",
				}
			}
			if section.ExpectedProduct == "" {
				return &ValidationError{
					Field: fmt.Sprintf("planogram.shelves[%d].sections[%d].expected_product", i, j),
					Msg:   "must not be empty",
				}
			}
		}
	}
	for i, d := range detections {
		if d.Row < 0 {
			return &ValidationError{
				Field: fmt.Sprintf("detections[%d].row", i),
				Msg:   "must not be negative",
			}
		}
		if d.Column < 0 {
			return &ValidationError{
				Field: fmt.Sprintf("detections[%d].column", i),
				Msg:   "must not be negative",
			}
		}
		if d.Quantity < 0 {
			return &ValidationError{
				Field: fmt.Sprintf("detections[%d].quantity", i),
				Msg:   "must not be negative",
			}
		}
	}
	return nil
}
