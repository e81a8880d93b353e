package scenario

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/models"
	"github.com/myrjola/interrogation/internal/repositories"
	"github.com/myrjola/interrogation/internal/sqlite"
)

// Loader stores cases as scenarios.
type Loader struct {
	db        *sqlite.Database
	scenarios *repositories.ScenarioRepository
	logger    *slog.Logger
}

func NewLoader(db *sqlite.Database, scenarios *repositories.ScenarioRepository, logger *slog.Logger) *Loader {
	return &Loader{
		db:        db,
		scenarios: scenarios,
		logger:    logger.With("source", "ScenarioLoader"),
	}
}

func slogTitle(title string) slog.Attr {
	return slog.String("title", title)
}

// Load validates c and stores it in a single transaction.
//
// Scenarios are identified by title. Loading a title that already exists returns the existing id and changes nothing.
func (l *Loader) Load(ctx context.Context, c *Case) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	var (
		scenarioID int64
		existed    bool
	)
	err := l.db.InTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if scenarioID, existed, err = l.scenarios.IDByTitle(ctx, tx, c.Title); err != nil || existed {
			return err
		}
		scenarioID, err = l.insert(ctx, tx, c)
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "load case", slogTitle(c.Title))
	}

	if existed {
		l.logger.LogAttrs(ctx, slog.LevelDebug, "scenario already loaded",
			slogTitle(c.Title), slog.Int64("scenario_id", scenarioID))
	} else {
		l.logger.LogAttrs(ctx, slog.LevelInfo, "scenario loaded",
			slogTitle(c.Title), slog.Int64("scenario_id", scenarioID))
	}
	return scenarioID, nil
}

func (l *Loader) insert(ctx context.Context, tx *sqlx.Tx, c *Case) (int64, error) {
	var (
		scenarioID int64
		err        error
	)
	if scenarioID, err = l.scenarios.Insert(ctx, tx, models.Scenario{
		Title:       c.Title,
		Description: c.Description,
		CaseSummary: c.CaseSummary,
	}); err != nil {
		return 0, err
	}

	suspectIDs := make(map[string]int64, len(c.Suspects))
	for position, s := range c.Suspects {
		finalPhrase := s.FinalPhrase
		if strings.TrimSpace(finalPhrase) == "" {
			finalPhrase = models.DefaultFinalPhrase
		}
		if suspectIDs[s.Name], err = l.scenarios.InsertSuspect(ctx, tx, models.Suspect{
			ScenarioID:       scenarioID,
			Position:         position,
			Name:             s.Name,
			Backstory:        s.Backstory,
			InitialStatement: s.InitialStatement,
			FinalPhrase:      finalPhrase,
		}); err != nil {
			return 0, err
		}
	}

	evidenceIDs := make(map[string]int64, len(c.Evidence))
	for _, e := range c.Evidence {
		if evidenceIDs[e.Name], err = l.scenarios.InsertEvidence(ctx, tx, models.Evidence{
			ScenarioID:  scenarioID,
			Name:        e.Name,
			Description: e.Description,
			Required:    e.Mandatory,
		}); err != nil {
			return 0, err
		}
	}

	for _, s := range c.Secrets {
		if _, err = l.scenarios.InsertSecret(ctx, tx, models.Secret{
			SuspectID:  suspectIDs[s.Suspect],
			EvidenceID: evidenceIDs[s.Evidence],
			Content:    s.Content,
			IsCore:     s.Core,
		}); err != nil {
			return 0, err
		}
	}

	if err = l.scenarios.SetCulprit(ctx, tx, scenarioID, suspectIDs[c.Culprit]); err != nil {
		return 0, err
	}
	return scenarioID, nil
}

// ParseFile reads and parses a case file.
func ParseFile(path string) (*Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open case file", slog.String("path", path))
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(err, "parse case file", slog.String("path", path))
	}
	return c, nil
}

// LoadFile parses and loads a single case file.
func (l *Loader) LoadFile(ctx context.Context, path string) (int64, error) {
	c, err := ParseFile(path)
	if err != nil {
		return 0, err
	}
	return l.Load(ctx, c)
}

// LoadDir loads every *.yaml, *.yml and *.json case file in dir in lexical order. A missing dir loads nothing.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]int64, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		l.logger.LogAttrs(ctx, slog.LevelInfo, "no scenario directory", slog.String("dir", dir))
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read scenario directory", slog.String("dir", dir))
	}

	var ids []int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		id, loadErr := l.LoadFile(ctx, filepath.Join(dir, entry.Name()))
		if loadErr != nil {
			return ids, loadErr
		}
		ids = append(ids, id)
	}
	return ids, nil
}
