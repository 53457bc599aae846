package compliance

import (
	"fmt"
	"time"
)

// PlanogramSection declares the product expected at one column of a shelf.
type PlanogramSection struct {
	Column          int      `json:"column"`
	ExpectedProduct string   `json:"expected_product"`
	AllowedVariants []string `json:"allowed_variants"`
	MinQuantity     int      `json:"min_quantity"`
	MaxQuantity     int      `json:"max_quantity"`
}

// PlanogramShelf is one shelf row and its declared sections.
type PlanogramShelf struct {
	Row      int                `json:"row"`
	Sections []PlanogramSection `json:"sections"`
}

// Planogram is the expected arrangement of products on a shelf fixture.
// Row and column indices share the coordinate space of DetectedProduct for
// a given image analysis; no scaling is implied.
type Planogram struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Shelves     []PlanogramShelf `json:"shelves"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// DetectedProduct is one detection mapped onto the shelf grid.
type DetectedProduct struct {
	Label    string `json:"label"`
	Row      int    `json:"row"`
	Column   int    `json:"column"`
	Quantity int    `json:"quantity"`
}

// Issue classification.
const (
	IssueUndetected   = "undetected"
	IssueWrongProduct = "wrong_product"
	IssueOutOfStock   = "out_of_stock"

	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// ComplianceIssue describes one non-compliant planogram position.
type ComplianceIssue struct {
	Row       int    `json:"row"`
	Column    int    `json:"column"`
	IssueType string `json:"issue_type"`
	Expected  string `json:"expected"`
	Found     string `json:"found"`
	Severity  string `json:"severity"`
}

// ComplianceResult is the outcome of checking one image analysis against a
// planogram. It is computed fresh per check and never persisted here.
type ComplianceResult struct {
	IsCompliant       bool              `json:"is_compliant"`
	ComplianceScore   float64           `json:"compliance_score"`
	Issues            []ComplianceIssue `json:"issues"`
	CorrectPlacements int               `json:"correct_placements"`
	TotalPositions    int               `json:"total_positions"`
	PlanogramName     string            `json:"planogram_name"`
}

// ValidationError reports malformed caller input, naming the offending
// field. It signals a caller bug and should not be retried.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Msg)
}
