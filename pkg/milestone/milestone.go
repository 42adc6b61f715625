package milestone

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownMilestone = errors.New("unknown milestone")
var ErrInvalidCatalog = errors.New("invalid milestone catalog")

// Entry is a reward unlocked once cumulative study hours reach ThresholdHours.
type Entry struct {
	Id             string  `koanf:"id" json:"id"`
	Name           string  `koanf:"name" json:"name"`
	ThresholdHours float64 `koanf:"threshold" json:"thresholdHours"`
	Description    string  `koanf:"description" json:"description,omitempty"`
	Image          string  `koanf:"image" json:"image,omitempty"`
}

func (e Entry) threshold() decimal.Decimal {
	return decimal.NewFromFloat(e.ThresholdHours)
}

// Catalog is ordered by ascending threshold.
type Catalog []Entry

// NewCatalog sorts the entries and checks that ids are unique and thresholds not negative.
func NewCatalog(entries []Entry) (Catalog, error) {
	catalog := make(Catalog, len(entries))
	copy(catalog, entries)
	seen := make(map[string]bool, len(catalog))
	for _, e := range catalog {
		if e.Id == "" {
			return nil, fmt.Errorf("%w: entry %q has no id", ErrInvalidCatalog, e.Name)
		}
		if seen[e.Id] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, e.Id)
		}
		if e.ThresholdHours < 0 {
			return nil, fmt.Errorf("%w: %q has a negative threshold", ErrInvalidCatalog, e.Id)
		}
		seen[e.Id] = true
	}
	sort.SliceStable(catalog, func(i, j int) bool {
		return catalog[i].ThresholdHours < catalog[j].ThresholdHours
	})
	return catalog, nil
}

// LoadCatalog reads the "milestones" list of a YAML file. A missing file gives an empty catalog.
func LoadCatalog(path string) (Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Warnf("Milestone catalog not found at %s, no rewards will unlock", path)
			return Catalog{}, nil
		}
		return nil, fmt.Errorf("failed to load milestone catalog: %w", err)
	}
	var entries []Entry
	if err := k.Unmarshal("milestones", &entries); err != nil {
		return nil, fmt.Errorf("failed to decode milestone catalog: %w", err)
	}
	catalog, err := NewCatalog(entries)
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded %d milestones from %s", len(catalog), path)
	return catalog, nil
}

func (c Catalog) Find(id string) (Entry, bool) {
	for _, e := range c {
		if e.Id == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Unlocked returns the entries whose threshold is reached, in catalog order.
func Unlocked(hours decimal.Decimal, catalog Catalog) []Entry {
	var unlocked []Entry
	for _, e := range catalog {
		if e.threshold().LessThanOrEqual(hours) {
			unlocked = append(unlocked, e)
		}
	}
	return unlocked
}

// Evaluate returns the reached entry with the highest threshold, or nil when
// nothing is reached or that entry was already shown. Lower unshown entries
// are never returned instead.
func Evaluate(hours decimal.Decimal, catalog Catalog, shown *ShownSet) *Entry {
	unlocked := Unlocked(hours, catalog)
	if len(unlocked) == 0 {
		return nil
	}
	highest := unlocked[0]
	for _, e := range unlocked[1:] {
		if e.ThresholdHours >= highest.ThresholdHours {
			highest = e
		}
	}
	if shown.Contains(highest.Id) {
		return nil
	}
	return &highest
}
