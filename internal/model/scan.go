package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Scan holds the result of one pass over a query directory.
type Scan struct {
	ID        string      `json:"id"`
	Dir       string      `json:"dir"`
	ScannedAt time.Time   `json:"scannedAt"`
	Items     []QueryItem `json:"items"`
}

// NewScanParams holds parameters for creating a new Scan.
type NewScanParams struct {
	Dir   string
	Items []QueryItem
}

// NewScan creates a Scan with generated UUID and timestamp.
func NewScan(params NewScanParams) *Scan {
	items := params.Items
	if items == nil {
		items = []QueryItem{}
	}

	return &Scan{
		ID:        uuid.New().String(),
		Dir:       params.Dir,
		ScannedAt: time.Now(),
		Items:     items,
	}
}

// FilesReferencing returns the names of files that reference the table,
// in scan order.
func (s *Scan) FilesReferencing(table string) []string {
	var result []string
	for _, item := range s.Items {
		if item.References(table) {
			result = append(result, item.SourceName)
		}
	}
	return result
}

// TableNames returns every distinct table referenced by the scan, sorted.
func (s *Scan) TableNames() []string {
	seen := make(map[string]bool)
	var result []string
	for _, item := range s.Items {
		for _, t := range item.Tables {
			if !seen[t] {
				seen[t] = true
				result = append(result, t)
			}
		}
	}
	sort.Strings(result)
	return result
}
