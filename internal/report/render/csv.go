package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	appErrors "tenant-reports/pkg/errors"
)

// WriteCSV marshals a slice of csv-tagged records to one timestamped file;
// out must be a pointer to a slice. Callers invoke it once per data sheet
// when the csv export option is on.
func WriteCSV(dir, baseName, sheetName string, now time.Time, out any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", appErrors.NewRenderError("creating output directory "+dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.csv", baseName, sheetName, now.Format("20060102_150405")))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", appErrors.NewRenderError("creating "+path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(out, f); err != nil {
		return "", appErrors.NewRenderError("writing "+path, err)
	}
	return path, nil
}
