// package loader reads the collectors' JSON Lines output into the domain
// model. It is adapter glue around the analysis core: records missing required
// fields are counted and skipped, never fatal.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"review-metrics/internal/domain"
	"review-metrics/internal/roles"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Stats reports what a load pass kept and dropped.
type Stats struct {
	PullRequests     int `json:"pull_requests"`
	Events           int `json:"events"`
	OrphanEvents     int `json:"orphan_events"`
	MalformedRecords int `json:"malformed_records"`
}

type Loader struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Loader {
	return &Loader{log: log}
}

// LoadPullRequests reads one PR record per line. Records without an id,
// author or creation date are malformed and skipped.
func (l *Loader) LoadPullRequests(r io.Reader, stats *Stats) ([]domain.PullRequest, error) {
	var prs []domain.PullRequest

	err := forEachLine(r, func(line []byte, lineNo int) {
		var pr domain.PullRequest
		if err := json.Unmarshal(line, &pr); err != nil {
			stats.MalformedRecords++
			l.log.Warn("skipping unparseable pr record", slog.Int("line", lineNo))

			return
		}

		if pr.ID == "" || pr.AuthorID == "" || pr.CreatedAt.IsZero() {
			stats.MalformedRecords++
			l.log.Warn("skipping pr record with missing required field",
				slog.Int("line", lineNo), slog.String("pr_id", pr.ID))

			return
		}

		prs = append(prs, pr)
	})
	if err != nil {
		return nil, fmt.Errorf("read pull requests: %w", err)
	}

	stats.PullRequests = len(prs)

	return prs, nil
}

// LoadEvents reads one review event per line and attaches each to its PR,
// keeping every PR's event sequence ordered by timestamp. Events referencing
// an unknown PR are counted as orphans and dropped.
func (l *Loader) LoadEvents(r io.Reader, prs []domain.PullRequest, stats *Stats) error {
	byID := make(map[string]*domain.PullRequest, len(prs))
	for i := range prs {
		byID[prs[i].ID] = &prs[i]
	}

	err := forEachLine(r, func(line []byte, lineNo int) {
		var ev domain.ReviewEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			stats.MalformedRecords++
			l.log.Warn("skipping unparseable event record", slog.Int("line", lineNo))

			return
		}

		if ev.PRID == "" || ev.ReviewerID == "" || ev.Timestamp.IsZero() || ev.Source == "" {
			stats.MalformedRecords++
			l.log.Warn("skipping event record with missing required field",
				slog.Int("line", lineNo), slog.String("pr_id", ev.PRID))

			return
		}

		if ev.BodyLength == 0 && ev.Body != "" {
			ev.BodyLength = len(ev.Body)
		}

		pr, ok := byID[ev.PRID]
		if !ok {
			stats.OrphanEvents++
			return
		}

		pr.Events = append(pr.Events, ev)
		stats.Events++
	})
	if err != nil {
		return fmt.Errorf("read events: %w", err)
	}

	for i := range prs {
		events := prs[i].Events
		sort.SliceStable(events, func(a, b int) bool {
			return events[a].Timestamp.Before(events[b].Timestamp)
		})
	}

	return nil
}

// LoadRoster reads the maintainer roster: a single JSON document mapping
// actor IDs to their merge-authority intervals.
func (l *Loader) LoadRoster(r io.Reader) (roles.Roster, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var roster roles.Roster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	return roster, nil
}

// LoadCorpus opens the configured input files and loads everything. The
// roster path may be empty, in which case an empty roster is returned.
func (l *Loader) LoadCorpus(prPath, eventsPath, rosterPath string) ([]domain.PullRequest, roles.Roster, Stats, error) {
	var stats Stats

	prFile, err := os.Open(prPath)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("open pull requests: %w", err)
	}
	defer prFile.Close()

	prs, err := l.LoadPullRequests(prFile, &stats)
	if err != nil {
		return nil, nil, stats, err
	}

	evFile, err := os.Open(eventsPath)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("open events: %w", err)
	}
	defer evFile.Close()

	if err := l.LoadEvents(evFile, prs, &stats); err != nil {
		return nil, nil, stats, err
	}

	roster := roles.Roster{}

	if rosterPath != "" {
		rosterFile, err := os.Open(rosterPath)
		if err != nil {
			return nil, nil, stats, fmt.Errorf("open roster: %w", err)
		}
		defer rosterFile.Close()

		roster, err = l.LoadRoster(rosterFile)
		if err != nil {
			return nil, nil, stats, err
		}
	}

	return prs, roster, stats, nil
}

func forEachLine(r io.Reader, fn func(line []byte, lineNo int)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		fn(line, lineNo)
	}

	return scanner.Err()
}
