// Package csvio reads and writes rosters and formed teams as CSV.
package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/pkg/logger"
)

// ParticipantHeader is the column layout of a roster file.
var ParticipantHeader = []string{
	"ID", "Name", "Email", "PreferredGame", "SkillLevel",
	"PreferredRole", "PersonalityScore", "PersonalityType",
}

// Roster is the outcome of reading a roster file.
type Roster struct {
	Participants []model.Participant
	Skipped      []*RowError
}

// ReadParticipants parses a roster. Rows that fail validation are skipped
// and reported in Roster.Skipped; a bad header or a roster without a single
// valid row is an error.
func ReadParticipants(ctx context.Context, r io.Reader, opts ...Option) (*Roster, error) {
	o := newOptions(opts)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	switch {
	case errors.Is(err, io.EOF):
		return nil, fmt.Errorf("empty input: %w", ErrNoRows)
	case err != nil:
		return nil, fmt.Errorf("read header: %w", err)
	case len(header) != len(ParticipantHeader):
		return nil, fmt.Errorf("expected %d columns, found %d: %w", len(ParticipantHeader), len(header), ErrInvalidHeader)
	}

	out := &Roster{}
	seen := make(map[string]struct{})
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		switch {
		case errors.As(err, &parseErr):
			out.skip(ctx, o.logger, parseErr.Line, err)
			continue
		case err != nil:
			return nil, fmt.Errorf("read roster: %w", err)
		}
		line, _ := cr.FieldPos(0)

		p, err := parseParticipant(record)
		if err != nil {
			out.skip(ctx, o.logger, line, err)
			continue
		}
		if _, dup := seen[p.ID]; dup {
			out.skip(ctx, o.logger, line, fmt.Errorf("id %s repeated: %w", p.ID, ErrInvalidRow))
			continue
		}
		seen[p.ID] = struct{}{}
		out.Participants = append(out.Participants, p)
	}

	if len(out.Participants) == 0 {
		return nil, ErrNoRows
	}
	o.logger.Info(ctx, "roster loaded",
		logger.Int("participants", len(out.Participants)),
		logger.Int("skipped", len(out.Skipped)))
	return out, nil
}

// LoadParticipants reads the roster file at path.
func LoadParticipants(ctx context.Context, path string, opts ...Option) (*Roster, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("open roster: empty path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return ReadParticipants(ctx, f, opts...)
}

func (r *Roster) skip(ctx context.Context, l logger.Logger, line int, err error) {
	rowErr := &RowError{Line: line, Err: err}
	r.Skipped = append(r.Skipped, rowErr)
	l.Warn(ctx, "skipping roster row", logger.Int("line", line), logger.Error(err))
}

// The PersonalityType column is derived data and is recomputed from the
// score rather than trusted.
func parseParticipant(record []string) (model.Participant, error) {
	if len(record) != len(ParticipantHeader) {
		return model.Participant{}, fmt.Errorf("expected %d fields, found %d: %w", len(ParticipantHeader), len(record), ErrInvalidRow)
	}
	skill, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return model.Participant{}, fmt.Errorf("skill level %q: %w", record[4], ErrInvalidRow)
	}
	score, err := strconv.Atoi(strings.TrimSpace(record[6]))
	if err != nil {
		return model.Participant{}, fmt.Errorf("personality score %q: %w", record[6], ErrInvalidRow)
	}
	return model.NewParticipant(record[0], record[1], record[2], record[3], skill, model.Role(record[5]), score)
}

func participantRecord(p model.Participant) []string { //nolint:gocritic // hugeParam: participants are values
	return []string{
		p.ID, p.Name, p.Email, p.PreferredGame,
		strconv.Itoa(p.SkillLevel), string(p.PreferredRole),
		strconv.Itoa(p.PersonalityScore), string(p.PersonalityType),
	}
}

// WriteParticipants writes a roster with its header.
func WriteParticipants(w io.Writer, participants []model.Participant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ParticipantHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range participants {
		if err := cw.Write(participantRecord(participants[i])); err != nil {
			return fmt.Errorf("write participant %s: %w", participants[i].ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveParticipants writes a roster file, replacing any existing one.
func SaveParticipants(path string, participants []model.Participant) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create roster: %w", err)
	}
	if err := WriteParticipants(f, participants); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// AppendParticipant adds one row to the roster file at path, creating it
// with a header when it does not exist or is empty.
func AppendParticipant(path string, p model.Participant) error { //nolint:gocritic // hugeParam: participants are values
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat roster: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		_ = cw.Write(ParticipantHeader)
	}
	_ = cw.Write(participantRecord(p))
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("append participant %s: %w", p.ID, err)
	}
	return f.Close()
}
