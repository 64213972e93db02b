// internal/app/system/limits/limits.go
package limits

// Request and export size limits.
const (
	// MaxRequestBody caps JSON and form bodies.
	MaxRequestBody = 1 << 20 // 1 MB

	// MaxExportRows caps the rows in one CSV export.
	MaxExportRows = 50000
)
