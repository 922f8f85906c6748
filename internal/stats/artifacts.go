package stats

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ipdarena/internal/game"
	"ipdarena/internal/model"
)

const runIndexFile = "run_index.json"

var artifactFiles = []string{"config.json", "standings.json", "ratings.json", "scores.csv"}

var ErrInvalidRunID = errors.New("invalid run id")

// ValidateRunID rejects run IDs that cannot serve as a single directory name
// under the artifacts directory.
func ValidateRunID(runID string) error {
	switch {
	case runID == "":
		return fmt.Errorf("%w: run id is required", ErrInvalidRunID)
	case runID == "." || strings.Contains(runID, ".."):
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	case strings.ContainsAny(runID, `/\`) || filepath.Base(runID) != runID:
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidRunID, runID)
	}
	return nil
}

type RunConfig struct {
	RunID        string      `json:"run_id"`
	Strategies   []string    `json:"strategies"`
	Turns        int         `json:"turns"`
	Repetitions  int         `json:"repetitions"`
	Workers      int         `json:"workers"`
	Payoff       game.Matrix `json:"payoff"`
	CreatedAtUTC string      `json:"created_at_utc"`
}

type RunArtifacts struct {
	Config    RunConfig            `json:"config"`
	Players   []model.PlayerRecord `json:"players"`
	Standings []Standing           `json:"standings"`
	Ratings   []model.RatingRecord `json:"ratings"`
	Matches   []model.MatchRecord  `json:"matches,omitempty"`
}

type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Players      int     `json:"players"`
	Turns        int     `json:"turns"`
	Repetitions  int     `json:"repetitions"`
	Workers      int     `json:"workers"`
	Leader       string  `json:"leader"`
	LeaderMean   float64 `json:"leader_mean"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if err := ValidateRunID(artifacts.Config.RunID); err != nil {
		return "", err
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "standings.json"), artifacts.Standings); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "ratings.json"), artifacts.Ratings); err != nil {
		return "", err
	}
	if len(artifacts.Matches) > 0 {
		if err := writeJSON(filepath.Join(runDir, "matches.json"), artifacts.Matches); err != nil {
			return "", err
		}
	}
	if err := WriteScoresCSV(filepath.Join(runDir, "scores.csv"), artifacts.Players); err != nil {
		return "", err
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies a run directory's artifacts into outDir/runID.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if err := ValidateRunID(runID); err != nil {
		return "", err
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range artifactFiles {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	matchesPath := filepath.Join(src, "matches.json")
	if _, err := os.Stat(matchesPath); err == nil {
		if err := copyFile(matchesPath, filepath.Join(dst, "matches.json")); err != nil {
			return "", err
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, "config.json"), &cfg)
	return cfg, ok, err
}

func ReadStandings(baseDir, runID string) ([]Standing, bool, error) {
	var standings []Standing
	ok, err := readJSON(filepath.Join(baseDir, runID, "standings.json"), &standings)
	return standings, ok, err
}

func ReadRatings(baseDir, runID string) ([]model.RatingRecord, bool, error) {
	var ratings []model.RatingRecord
	ok, err := readJSON(filepath.Join(baseDir, runID, "ratings.json"), &ratings)
	return ratings, ok, err
}

// WriteScoresCSV writes one row per player and repetition.
func WriteScoresCSV(path string, players []model.PlayerRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"player_id", "name", "strategy", "repetition", "score"}); err != nil {
		return err
	}
	for _, p := range players {
		for rep, score := range p.Scores {
			if err := writer.Write([]string{
				p.ID,
				p.Name,
				p.Strategy,
				strconv.Itoa(rep + 1),
				strconv.FormatFloat(score, 'f', -1, 64),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadScoresCSV rebuilds player rows from scores.csv in first-seen order.
func ReadScoresCSV(baseDir, runID string) ([]model.PlayerRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "scores.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.PlayerRecord{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 5 {
		return nil, false, fmt.Errorf("scores header must have at least 5 columns")
	}

	out := make([]model.PlayerRecord, 0)
	byID := map[string]int{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 5 {
			return nil, false, fmt.Errorf("scores row must have at least 5 columns")
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err != nil {
			return nil, false, err
		}
		idx, ok := byID[record[0]]
		if !ok {
			idx = len(out)
			byID[record[0]] = idx
			out = append(out, model.PlayerRecord{ID: record[0], Name: record[1], Strategy: record[2]})
		}
		out[idx].Scores = append(out[idx].Scores, value)
	}
	return out, true, nil
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
