package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/codeup/novabook/internal/book"
)

// ParseBookCSV reads Title,Author,ISBN,Publication Year rows after a header
// line. Rows that cannot be parsed are reported in errs with their line number
// and do not stop the scan. Any other read failure aborts it.
func ParseBookCSV(r io.Reader) (books []book.CreateBookDTO, errs []string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, nil, fmt.Errorf("read csv: %w", err)
			}
			errs = append(errs, fmt.Sprintf("Line %d: %v", pe.Line, err))
			continue
		}
		line, _ := reader.FieldPos(0)

		dto, perr := parseBookRecord(record)
		if perr != nil {
			errs = append(errs, fmt.Sprintf("Line %d: %v", line, perr))
			continue
		}
		books = append(books, dto)
	}
	return books, errs, nil
}

func parseBookRecord(record []string) (book.CreateBookDTO, error) {
	if len(record) < 4 {
		return book.CreateBookDTO{}, errors.New("invalid CSV format - expected 4 fields (Title,Author,ISBN,Year)")
	}

	title := strings.TrimSpace(record[0])
	author := strings.TrimSpace(record[1])
	isbn := strings.TrimSpace(record[2])
	yearStr := strings.TrimSpace(record[3])

	switch {
	case title == "":
		return book.CreateBookDTO{}, errors.New("title cannot be empty")
	case author == "":
		return book.CreateBookDTO{}, errors.New("author cannot be empty")
	case isbn == "":
		return book.CreateBookDTO{}, errors.New("ISBN cannot be empty")
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return book.CreateBookDTO{}, fmt.Errorf("invalid publication year format: %s", yearStr)
	}

	return book.CreateBookDTO{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		PublicationYear: year,
	}, nil
}
