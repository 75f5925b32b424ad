package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wouterstultiens/boardgame-finder/internal/catalog"
	"github.com/wouterstultiens/boardgame-finder/internal/pipeline"
)

func gameRows(games []pipeline.GameMatch) [][]string {
	rows := make([][]string, 0, len(games))
	for _, g := range games {
		id, name, link := "-", "-", "-"
		if g.Entry != nil {
			id = strconv.Itoa(g.Entry.ID)
			name = g.Entry.Name
			link = g.Link
		}
		detail := g.Decision
		if g.Error != "" {
			detail = g.Error
		}
		rows = append(rows, []string{g.Name, g.Language, string(g.Status), id, name, link, detail})
	}
	return rows
}

var gameHeaders = []string{"Name", "Lang", "Status", "BGG ID", "Catalog Name", "Link", "Decision"}

func yearString(e catalog.Entry) string {
	if e.YearPublished == nil {
		return "-"
	}
	return strconv.Itoa(*e.YearPublished)
}

func scoreString(score float64) string {
	return fmt.Sprintf("%.3f", score)
}

func listingSummaryRow(item pipeline.EnrichedListing) []string {
	matched := make([]string, 0, len(item.Games))
	for _, g := range item.Games {
		if g.Entry != nil {
			matched = append(matched, fmt.Sprintf("%s (%d)", g.Entry.Name, g.Entry.ID))
		}
	}
	games := "-"
	if len(matched) > 0 {
		games = strings.Join(matched, ", ")
	}
	return []string{
		item.Key(),
		truncate(item.Listing.Title, 48),
		string(item.Outcome),
		strconv.Itoa(len(item.Games)),
		games,
	}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
