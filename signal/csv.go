package signal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Load reads a signal series from a CSV file with columns
// time,price,pred,proba (header optional, RFC3339 timestamps).
// Files ending in .xz are decompressed transparently, so large daily
// datasets can be kept compressed on disk. The returned series is
// validated before it is handed back.
func Load(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz %s: %w", path, err)
		}
		rd = xr
	}

	s, err := Read(rd)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Read parses CSV rows from r into a validated Series.
func Read(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var s Series
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}
		// header row
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}

		tk, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		s = append(s, tk)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the series as CSV with a header row. A .xz suffix turns on
// xz compression, mirroring Load.
func Save(path string, s Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	var xw *xz.Writer
	if strings.HasSuffix(path, ".xz") {
		xw, err = xz.NewWriter(f)
		if err != nil {
			return fmt.Errorf("create xz %s: %w", path, err)
		}
		w = xw
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "price", "pred", "proba"}); err != nil {
		return err
	}
	for _, tk := range s {
		rec := []string{
			tk.Time.Format(time.RFC3339),
			strconv.FormatFloat(tk.Price, 'f', -1, 64),
			strconv.Itoa(tk.Pred),
			strconv.FormatFloat(tk.Proba, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if xw != nil {
		if err := xw.Close(); err != nil {
			return err
		}
	}
	return f.Close()
}

func parseRow(row []string) (Tick, error) {
	if len(row) < 4 {
		return Tick{}, fmt.Errorf("need 4 cols time,price,pred,proba, got %d", len(row))
	}

	ts := strings.TrimSpace(row[0])
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return Tick{}, fmt.Errorf("bad time %q: %w", row[0], err)
		}
		t = t2
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return Tick{}, fmt.Errorf("bad price %q: %w", row[1], err)
	}
	pred, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return Tick{}, fmt.Errorf("bad pred %q: %w", row[2], err)
	}
	proba, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil {
		return Tick{}, fmt.Errorf("bad proba %q: %w", row[3], err)
	}

	return Tick{Time: t, Price: price, Pred: pred, Proba: proba}, nil
}
