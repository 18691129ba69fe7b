// Command migrate is the one-off batch transform that upgrades a CSV
// export of the response sheet to the v1.1 schema: it inserts the
// country, currency, and uses_metric columns after submitted_at and
// derives space_sqm from space_sqft. Run it manually, review the
// output, then re-import the sheet.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/studiobench/studiobench/internal/utils"
)

type addedColumn struct {
	name  string
	after string
	fill  string
}

// v1.1 additions, with the defaults applied to pre-existing rows.
var additions = []addedColumn{
	{name: "country", after: "submitted_at", fill: "United States"},
	{name: "currency", after: "country", fill: "USD"},
	{name: "uses_metric", after: "currency", fill: "false"},
	{name: "space_sqm", after: "space_sqft"},
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func insertAt(row []string, idx int, value string) []string {
	out := make([]string, 0, len(row)+1)
	out = append(out, row[:idx]...)
	out = append(out, value)
	return append(out, row[idx:]...)
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}
	return all[0], all[1:], nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// deriveSqm renders space_sqm from a space_sqft cell, empty in = empty out.
func deriveSqm(sqft string) string {
	s := strings.TrimSpace(sqft)
	if s == "" {
		return ""
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(math.Round(utils.SqftToSqm(n)), 'f', -1, 64)
}

func migrate(header []string, rows [][]string) ([]string, [][]string, int) {
	added := 0
	for _, add := range additions {
		if columnIndex(header, add.name) >= 0 {
			continue
		}
		anchor := columnIndex(header, add.after)
		if anchor < 0 {
			log.Printf("warning: anchor column %q not found, appending %q at the end", add.after, add.name)
			anchor = len(header) - 1
		}
		sqftIdx := columnIndex(header, "space_sqft")
		header = insertAt(header, anchor+1, add.name)
		for i, row := range rows {
			for len(row) < len(header)-1 {
				row = append(row, "")
			}
			value := add.fill
			if add.name == "space_sqm" && sqftIdx >= 0 {
				value = deriveSqm(row[sqftIdx])
			}
			rows[i] = insertAt(row, anchor+1, value)
		}
		added++
		log.Printf("added %q column", add.name)
	}
	return header, rows, added
}

func main() {
	input := flag.String("in", "", "path to the exported sheet CSV")
	output := flag.String("out", "", "path to write the migrated CSV")
	preview := flag.Bool("preview", false, "report what would change without writing")
	flag.Parse()

	if *input == "" {
		log.Fatal("-in is required")
	}
	header, rows, err := readCSV(*input)
	if err != nil {
		log.Fatalf("read %s: %v", *input, err)
	}
	log.Printf("loaded %d responses, %d columns", len(rows), len(header))

	if *preview {
		for _, add := range additions {
			if columnIndex(header, add.name) >= 0 {
				log.Printf("%q already present", add.name)
			} else {
				log.Printf("would add %q after %q", add.name, add.after)
			}
		}
		return
	}
	if *output == "" {
		log.Fatal("-out is required unless -preview is set")
	}

	backup := strings.TrimSuffix(*input, ".csv") +
		"_backup_" + time.Now().Format("20060102_150405") + ".csv"
	if err := writeCSV(backup, header, rows); err != nil {
		log.Fatalf("write backup %s: %v", backup, err)
	}
	log.Printf("backup saved to %s", backup)

	newHeader, newRows, added := migrate(header, rows)

	// Data integrity checks mirrored from the dashboard's read path:
	// duplicates and missing ids are reported, not fixed, here.
	idIdx := columnIndex(newHeader, "response_id")
	missing, seen, dups := 0, map[string]bool{}, 0
	if idIdx >= 0 {
		for _, row := range newRows {
			id := ""
			if idIdx < len(row) {
				id = row[idIdx]
			}
			if id == "" {
				missing++
				continue
			}
			if seen[id] {
				dups++
			}
			seen[id] = true
		}
	}
	if missing > 0 {
		log.Printf("warning: %d rows have a missing response_id", missing)
	}
	if dups > 0 {
		log.Printf("warning: %d duplicate response_ids (the read path deduplicates these)", dups)
	}

	if err := writeCSV(*output, newHeader, newRows); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	log.Printf("migrated data saved to %s (%d columns added, now %d columns, %d rows)",
		*output, added, len(newHeader), len(newRows))
}
