package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sleeve/internal/providers"
	"sleeve/internal/resolve"
	"sleeve/internal/services"
	"sleeve/internal/textutil"
)

// interactiveChooser asks the operator to resolve ambiguous candidate lists
// on the terminal. A background goroutine owns stdin so a prompt can be
// abandoned the moment the run context is cancelled.
type interactiveChooser struct {
	out   io.Writer
	lines chan string
}

func newInteractiveChooser(in io.Reader, out io.Writer) *interactiveChooser {
	c := &interactiveChooser{
		out:   out,
		lines: make(chan string),
	}
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			c.lines <- scanner.Text()
		}
		close(c.lines)
	}()
	return c
}

func (c *interactiveChooser) readLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", services.Wrap(services.ErrCancelled, "chooser", "read", "input closed", io.EOF)
		}
		return strings.TrimSpace(line), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Choose implements resolve.Chooser.
func (c *interactiveChooser) Choose(ctx context.Context, query providers.Query, candidates []providers.Candidate) (resolve.Decision, error) {
	fmt.Fprintf(c.out, "\n%s\n", query.String())
	fmt.Fprintln(c.out, c.candidateTable(query, candidates))

	for {
		fmt.Fprintf(c.out, "Pick [1-%d], (s)kip, (r)etry with new terms, (q)uit: ", len(candidates))
		line, err := c.readLine(ctx)
		if err != nil {
			return resolve.Decision{}, err
		}

		switch strings.ToLower(line) {
		case "s":
			return resolve.Decision{Kind: resolve.DecisionSkip}, nil
		case "r":
			revised, err := c.reviseQuery(ctx, query)
			if err != nil {
				return resolve.Decision{}, err
			}
			return resolve.Decision{Kind: resolve.DecisionRetry, Query: revised}, nil
		case "q":
			return resolve.Decision{}, services.Wrap(services.ErrCancelled, "chooser", "choose", "quit requested", nil)
		case "":
			continue
		}

		index, err := strconv.Atoi(line)
		if err != nil || index < 1 || index > len(candidates) {
			fmt.Fprintf(c.out, "Invalid choice %q.\n", line)
			continue
		}
		return resolve.Decision{Kind: resolve.DecisionPick, URL: candidates[index-1].ImageURL}, nil
	}
}

func (c *interactiveChooser) reviseQuery(ctx context.Context, query providers.Query) (providers.Query, error) {
	revised := query

	fmt.Fprintf(c.out, "Artist [%s]: ", query.Artist)
	artist, err := c.readLine(ctx)
	if err != nil {
		return providers.Query{}, err
	}
	if artist != "" {
		revised.Artist = artist
	}

	fmt.Fprintf(c.out, "Album [%s]: ", query.Album)
	album, err := c.readLine(ctx)
	if err != nil {
		return providers.Query{}, err
	}
	if album != "" {
		revised.Album = album
	}

	fmt.Fprintf(c.out, "Year [%s]: ", query.YearLabel())
	yearText, err := c.readLine(ctx)
	if err != nil {
		return providers.Query{}, err
	}
	if yearText != "" {
		if year, ok := textutil.ParseYear(yearText); ok {
			revised.Year = year
		} else {
			revised.Year = 0
		}
	}

	return revised, nil
}

func (c *interactiveChooser) candidateTable(query providers.Query, candidates []providers.Candidate) string {
	headers := []string{"#", "Provider", "Title", "Artist", "Year", "Match", "URL"}
	rows := make([][]string, 0, len(candidates))
	for i, cand := range candidates {
		year := "NA"
		if cand.Year != 0 {
			year = strconv.Itoa(cand.Year)
		}
		url := cand.ThumbURL
		if url == "" {
			url = cand.ImageURL
		}
		similarity := textutil.TitleSimilarity(query.Album, cand.Title)
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			cand.Provider,
			cand.Title,
			cand.Artist,
			year,
			fmt.Sprintf("%.2f", similarity),
			url,
		})
	}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}
