package schema

import (
	"fmt"
	"regexp"

	"github.com/relvec/relvec/sqlgen"
)

// Legacy tables carry their schema only in the DDL. The vector column width
// and the vector index distance are the two facts the translation layer
// needs back.
var (
	vectorColumnPattern = regexp.MustCompile(`(?i)VECTOR\s*\(\s*(\d+)\s*\)`)
	distanceOptPattern  = regexp.MustCompile(`(?i)distance\s*=\s*([a-z_]+)`)
)

// reflectLegacyDDL recovers the dimension and distance metric of a legacy
// collection from its SHOW CREATE TABLE output. A missing vector column is
// malformed; a missing distance option falls back to the default metric,
// matching tables created before the option existed.
func reflectLegacyDDL(ddl string) (int, sqlgen.DistanceMetric, error) {
	match := vectorColumnPattern.FindStringSubmatch(ddl)
	if match == nil {
		return 0, "", fmt.Errorf("%w: no vector column", ErrMalformedTableDDL)
	}
	var dimension int
	if _, err := fmt.Sscanf(match[1], "%d", &dimension); err != nil || dimension <= 0 {
		return 0, "", fmt.Errorf("%w: bad vector dimension %q", ErrMalformedTableDDL, match[1])
	}

	metric := DefaultDistanceMetric
	if match := distanceOptPattern.FindStringSubmatch(ddl); match != nil {
		parsed, err := sqlgen.ParseDistanceMetric(match[1])
		if err != nil {
			return 0, "", fmt.Errorf("%w: %v", ErrMalformedTableDDL, err)
		}
		metric = parsed
	}

	return dimension, metric, nil
}
