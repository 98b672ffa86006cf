package models

import "strconv"

// Edge tags mark which end of an environment block a snapshot comes from.
const (
	EdgeBegin = "begin"
	EdgeEnd   = "end"
)

// EdgeColumns is the header of an edge snapshot table.
var EdgeColumns = []string{"file", "Environment", "Tag", "Generation", "Mutated", "B/D Ratio", "Fitness"}

// EdgeSnapshot is one generation taken from the start or end of a
// contiguous run of rows sharing an Environment.
type EdgeSnapshot struct {
	Environment int
	Tag         string
	Generation  int64
	Mutated     OptionalFloat
	BDRatio     OptionalFloat
	Fitness     OptionalFloat
}

// Values returns the snapshot's cells in EdgeColumns order.
func (e EdgeSnapshot) Values(file string) []string {
	return []string{
		file,
		strconv.Itoa(e.Environment),
		e.Tag,
		strconv.FormatInt(e.Generation, 10),
		e.Mutated.String(),
		e.BDRatio.String(),
		e.Fitness.String(),
	}
}
