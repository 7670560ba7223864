package validator

import (
	"errors"
	"fmt"
	"os"
	"sort"

	playground "github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/arcanaland/feedview/internal/deck"
	"github.com/arcanaland/feedview/internal/feed"
	"github.com/arcanaland/feedview/internal/quake"
)

// Payload kinds the validator recognises
const (
	KindUnknown = "unknown"
	KindCards   = "card draw"
	KindQuakes  = "GeoJSON FeatureCollection"
)

type ValidationResults struct {
	Kind     string
	Errors   []string
	Warnings []string
}

type Validator struct {
	Path    string
	Results ValidationResults
}

func NewValidator(path string) *Validator {
	return &Validator{
		Path:    path,
		Results: ValidationResults{Kind: KindUnknown},
	}
}

// Validate checks a saved feed payload against the schemas used when
// fetching it. Only an unreadable file is returned as an error.
func (v *Validator) Validate() (ValidationResults, error) {
	data, err := os.ReadFile(v.Path)
	if err != nil {
		return v.Results, fmt.Errorf("error reading payload: %v", err)
	}

	if !gjson.ValidBytes(data) {
		v.Results.Errors = append(v.Results.Errors, "payload is not valid JSON")
		return v.Results, nil
	}

	switch {
	case gjson.GetBytes(data, "type").String() == "FeatureCollection":
		v.Results.Kind = KindQuakes
		v.validateQuakes(data)
	case gjson.GetBytes(data, "cards").Exists():
		v.Results.Kind = KindCards
		v.validateCards(data)
	default:
		v.Results.Errors = append(v.Results.Errors,
			"unrecognized payload: expected a card draw or a GeoJSON FeatureCollection")
	}

	return v.Results, nil
}

// validateCards checks a Deck of Cards draw response
func (v *Validator) validateCards(data []byte) {
	var raw deck.DrawResponse
	if err := feed.Decode(v.Path, data, &raw); err != nil {
		v.addDecodeErrors(err)
		return
	}

	if err := deck.Check(raw); err != nil {
		v.Results.Errors = append(v.Results.Errors, err.Error())
	} else if !raw.Success {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("draw was unsuccessful (%s) but returned %d cards", raw.Error, len(raw.Cards)))
	}

	if len(raw.Cards) == 0 {
		v.Results.Warnings = append(v.Results.Warnings, "draw contains no cards")
	}

	seen := make(map[string]int)
	for i, c := range raw.Cards {
		if c.Code == "" {
			continue
		}
		if first, ok := seen[c.Code]; ok {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("card %d repeats card %d (%s)", i, first, c.Code))
			continue
		}
		seen[c.Code] = i
	}
}

// validateQuakes checks an earthquake summary feed
func (v *Validator) validateQuakes(data []byte) {
	var fc quake.FeatureCollection
	if err := feed.Decode(v.Path, data, &fc); err != nil {
		v.addDecodeErrors(err)
		return
	}

	if len(fc.Features) == 0 {
		v.Results.Warnings = append(v.Results.Warnings, "feed contains no features")
	}
	if fc.Metadata.Count != 0 && fc.Metadata.Count != len(fc.Features) {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("metadata.count is %d but the feed has %d features", fc.Metadata.Count, len(fc.Features)))
	}

	noMag := 0
	positions := make(map[[2]float64]int)
	for i := range fc.Features {
		f := &fc.Features[i]
		if err := f.Resolve(); err != nil {
			v.Results.Errors = append(v.Results.Errors, fmt.Sprintf("feature %d (%s): %v", i, f.ID, err))
			continue
		}
		if f.Properties.Mag == nil {
			noMag++
		}
		positions[[2]float64{f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]}]++
	}

	if noMag > 0 {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("%d features have no magnitude", noMag))
	}
	stacked := make([][2]float64, 0, len(positions))
	for pos, n := range positions {
		if n > 1 {
			stacked = append(stacked, pos)
		}
	}
	sort.Slice(stacked, func(i, j int) bool {
		if stacked[i][1] != stacked[j][1] {
			return stacked[i][1] < stacked[j][1]
		}
		return stacked[i][0] < stacked[j][0]
	})
	for _, pos := range stacked {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("%d features share position %v, %v; their markers will stack", positions[pos], pos[1], pos[0]))
	}
}

// addDecodeErrors reports one error per failed field where possible
func (v *Validator) addDecodeErrors(err error) {
	var fieldErrs playground.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("%s failed the %q check", fe.Namespace(), fe.Tag()))
		}
		return
	}
	v.Results.Errors = append(v.Results.Errors, err.Error())
}
