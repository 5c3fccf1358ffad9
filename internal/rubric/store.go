package rubric

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/jonathan/interview-agent/internal/types"
)

// LoadSample reads the sample at the given zero-based line index from a JSONL
// dataset. The dataset is append-only and read in full; line index is the
// addressing scheme.
func LoadSample(path string, index int) (*types.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &DatasetNotFoundError{Path: path, Cause: err}
		}
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	// Samples carry full JD + resume text; lines can be long.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if index < 0 || index >= len(lines) {
		return nil, &IndexOutOfRangeError{Index: index, Count: len(lines)}
	}

	var sample types.Sample
	if err := json.Unmarshal([]byte(lines[index]), &sample); err != nil {
		return nil, &MalformedSampleError{Index: index, Cause: err}
	}

	return &sample, nil
}

// SelectCompetency picks a competency from the rubric. With a name, matching
// is a case-insensitive exact comparison; without one, the highest-weight
// competency wins, first declaration breaking ties.
func SelectCompetency(rubric *types.Rubric, name string) (*types.Competency, error) {
	if rubric == nil || len(rubric.Competencies) == 0 {
		return nil, &EmptyRubricError{}
	}

	if name != "" {
		for i := range rubric.Competencies {
			if strings.EqualFold(rubric.Competencies[i].Name, name) {
				return &rubric.Competencies[i], nil
			}
		}
		return nil, &CompetencyNotFoundError{Name: name}
	}

	best := &rubric.Competencies[0]
	for i := 1; i < len(rubric.Competencies); i++ {
		if rubric.Competencies[i].Weight > best.Weight {
			best = &rubric.Competencies[i]
		}
	}
	return best, nil
}
