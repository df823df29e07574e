package folder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avogel/mailslip/internal/types"
)

// dateLayout matches one dd-mm-yy token group. time.Parse pivots two-digit
// years at 69: 00-68 become 20xx, 69-99 become 19xx.
const dateLayout = "02-01-06"

// ErrNoDatedFolders is returned by Scan when the parent directory contains no
// directory whose name parses as a dated folder.
var ErrNoDatedFolders = fmt.Errorf("no dated folders found")

// ParseName parses a folder base name into its start and end dates.
// Accepted shapes, split on "-" or "_":
//
//	dd-mm-yy-dd-mm-yy  start and end date
//	dd-mm-yy           single date, start == end
//
// Anything else returns ok = false.
func ParseName(name string) (start, end time.Time, ok bool) {
	tokens := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})

	switch len(tokens) {
	case 3:
		d, err := parseGroup(tokens[0:3])
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		return d, d, true
	case 6:
		s, err := parseGroup(tokens[0:3])
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		e, err := parseGroup(tokens[3:6])
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		return s, e, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

func parseGroup(tokens []string) (time.Time, error) {
	return time.Parse(dateLayout, strings.Join(tokens, "-"))
}

// Scan lists parentDir once and returns every subdirectory whose name parses
// as a dated folder. Entries that fail to parse are not candidates, not
// errors. The result keeps os.ReadDir's name order, so ties downstream
// resolve to the lexicographically smallest path.
func Scan(parentDir string) ([]types.DatedFolder, error) {
	entries, err := os.ReadDir(parentDir)
	if err != nil {
		return nil, fmt.Errorf("reading parent directory %s: %w", parentDir, err)
	}

	var folders []types.DatedFolder
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		start, end, ok := ParseName(entry.Name())
		if !ok {
			continue
		}
		folders = append(folders, types.DatedFolder{
			Path:      filepath.Join(parentDir, entry.Name()),
			StartDate: start,
			EndDate:   end,
		})
	}

	return folders, nil
}

// SelectLatest returns the folder with the maximum end date. Strict >
// comparison keeps the first-seen folder on equal end dates.
func SelectLatest(folders []types.DatedFolder) (types.DatedFolder, bool) {
	var best types.DatedFolder
	found := false
	for _, f := range folders {
		if !found || f.EndDate.After(best.EndDate) {
			best = f
			found = true
		}
	}
	return best, found
}

// SelectByEndDate returns the first folder whose end date equals target.
func SelectByEndDate(folders []types.DatedFolder, target time.Time) (types.DatedFolder, bool) {
	for _, f := range folders {
		if f.EndDate.Equal(target) {
			return f, true
		}
	}
	return types.DatedFolder{}, false
}

// ResolveAttachment builds <folderPath>/<recordID>.pdf and reports whether it
// exists as a regular file. A missing file is a skip condition for the
// caller, never an error.
func ResolveAttachment(recordID, folderPath string) (string, bool) {
	path := filepath.Join(folderPath, recordID+".pdf")
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}
