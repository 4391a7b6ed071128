package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// TailResult is the last N decision entries plus counters over them.
type TailResult struct {
	Entries []Entry     `json:"entries"`
	Summary TailSummary `json:"summary"`
}

// TailSummary counts decisions across the returned entries.
type TailSummary struct {
	AllowCount  int    `json:"allow_count"`
	AskCount    int    `json:"ask_count"`
	DenyCount   int    `json:"deny_count"`
	HighestRisk string `json:"highest_risk"`
}

// Tail reads the decision log and returns its last limit entries
// (all entries when limit <= 0). Unparseable lines abort with an error
// rather than being skipped: a log that no longer parses deserves
// attention, not silence.
func Tail(path string, limit int) (*TailResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("audit: parse line %d: %w", lineNum, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: scan log: %w", err)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	result := &TailResult{Entries: entries}
	riskRank := map[string]int{"low": 0, "medium": 1, "high": 2, "critical": 3}
	result.Summary.HighestRisk = "low"
	for _, e := range entries {
		switch e.Decision {
		case "allow":
			result.Summary.AllowCount++
		case "ask":
			result.Summary.AskCount++
		case "deny":
			result.Summary.DenyCount++
		}
		if riskRank[e.HighestRisk] > riskRank[result.Summary.HighestRisk] {
			result.Summary.HighestRisk = e.HighestRisk
		}
	}
	return result, nil
}

const separator = "──────────────────────────────────────────────────────────────────"

// FormatTimeline renders a TailResult as a human-readable text timeline.
func FormatTimeline(result *TailResult) string {
	if len(result.Entries) == 0 {
		return "No entries found.\n"
	}

	var b strings.Builder

	first := formatDateTime(result.Entries[0].Timestamp)
	last := formatTimeOnly(result.Entries[len(result.Entries)-1].Timestamp)
	fmt.Fprintf(&b, "Decisions: %d | %s–%s UTC\n", len(result.Entries), first, last)
	b.WriteString(separator + "\n")

	for _, e := range result.Entries {
		ts := formatTimeOnly(e.Timestamp)
		decision := strings.ToUpper(e.Decision)
		risk := strings.ToUpper(e.HighestRisk)
		command := truncate(e.Command, 48)

		fmt.Fprintf(&b, "%-10s %-6s %-9s %-6s %s\n", ts, e.Source, decision, risk, command)
	}

	b.WriteString(separator + "\n")
	b.WriteString(formatSummary(result.Summary))

	return b.String()
}

// FormatTailJSON renders a TailResult as indented JSON.
func FormatTailJSON(result *TailResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tail result: %w", err)
	}
	return string(data), nil
}

func formatDateTime(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func formatSummary(s TailSummary) string {
	parts := []string{}
	if s.AllowCount > 0 {
		parts = append(parts, fmt.Sprintf("%d allow", s.AllowCount))
	}
	if s.AskCount > 0 {
		parts = append(parts, fmt.Sprintf("%d ask", s.AskCount))
	}
	if s.DenyCount > 0 {
		parts = append(parts, fmt.Sprintf("%d deny", s.DenyCount))
	}
	if len(parts) == 0 {
		parts = append(parts, "no decisions")
	}
	return fmt.Sprintf("Summary: %s | Highest risk: %s\n",
		strings.Join(parts, ", "), s.HighestRisk)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
