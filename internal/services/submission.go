package services

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Form field names of the dataset submission form.
const (
	fieldSystem            = "system"
	fieldPublication       = "publication"
	fieldDatasetLabel      = "dataset-label"
	fieldPrimaryProperty   = "primary-property"
	fieldPrimaryUnit       = "primary-unit"
	fieldSecondaryProperty = "secondary-property"
	fieldSecondaryUnit     = "secondary-unit"
	fieldVisible           = "dataset-visible"
	fieldPlotted           = "dataset-plotted"
	fieldExperimental      = "is-experimental"
	fieldThreeDimensional  = "is-3d-system"
	fieldSampleType        = "sample-type"
	fieldCrystalSystem     = "crystal-system"
	fieldSpaceGroup        = "space-group"
	fieldWithSynthesis     = "with-synthesis-details"
	fieldWithExperimental  = "with-experimental-details"
	fieldWithComputational = "with-computational-details"
	fieldSeriesLabel       = "dataseries-label"
	fieldMainData          = "main-data"

	fixedPropertyPrefix = "fixed-property"
	fixedUnitPrefix     = "fixed-unit"
	fixedValuePrefix    = "fixed-value"

	// noSelection is what the form sends for an unset property dropdown.
	noSelection = "-1"
)

// Blocks records which optional detail blocks a submission carries.
type Blocks struct {
	Synthesis     bool
	Experimental  bool
	Computational bool
}

type SynthesisBlock struct {
	StartingMaterials string
	Product           string
	Description       string
	Comment           *string
}

type ExperimentalBlock struct {
	Method      string
	Description string
	Comment     *string
}

type ComputationalBlock struct {
	Code              string
	LevelOfTheory     string
	XCFunctional      string
	KGrid             string
	RelativityLevel   string
	Basis             string
	NumericalAccuracy string
	Comment           *string
}

// Point is one parsed line of main data. X is only meaningful for paired data.
type Point struct {
	X float64
	Y float64
}

type FixedInput struct {
	Suffix   string
	Property string
	Unit     string
	Value    float64
}

// Submission is a fully parsed dataset form. Every number has already been
// read, so ingesting it cannot fail on user input except for missing rows.
type Submission struct {
	SystemID      uuid.UUID
	PublicationID uuid.UUID
	Label         string

	PrimaryPropertyID   *uuid.UUID
	PrimaryUnitID       *uuid.UUID
	SecondaryPropertyID *uuid.UUID
	SecondaryUnitID     *uuid.UUID
	SpaceGroupID        *uuid.UUID

	Visible        bool
	Plotted        bool
	Experimental   bool
	Dimensionality int
	SampleType     int
	CrystalSystem  int

	Blocks        Blocks
	Synthesis     SynthesisBlock
	Experiment    ExperimentalBlock
	Computational ComputationalBlock

	SeriesLabel string
	Points      []Point
	Fixed       []FixedInput
	Files       []Upload
}

// Paired reports whether each point carries an x and a y value.
func (s *Submission) Paired() bool {
	return s.PrimaryPropertyID != nil && s.SecondaryPropertyID != nil
}

type formReader struct {
	form map[string][]string
}

func (f formReader) has(key string) bool {
	_, ok := f.form[key]
	return ok
}

func (f formReader) get(key string) (string, bool) {
	vals, ok := f.form[key]
	if !ok || len(vals) == 0 {
		return "", ok
	}
	return vals[0], true
}

func (f formReader) required(key string) (string, error) {
	v, ok := f.get(key)
	if !ok {
		return "", invalid(KindMissingField, key)
	}
	return v, nil
}

func (f formReader) optional(key string) *string {
	v, ok := f.get(key)
	if !ok {
		return nil
	}
	return &v
}

func (f formReader) flag(key string) (bool, error) {
	v, err := f.required(key)
	if err != nil {
		return false, err
	}
	return clean(v) == "true", nil
}

func (f formReader) id(key string) (uuid.UUID, error) {
	v, err := f.required(key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(clean(v))
	if err != nil {
		return uuid.Nil, invalid(KindMissingReference, key)
	}
	return id, nil
}

// optionalID reads a dropdown that may be left at noSelection.
func (f formReader) optionalID(key string) (*uuid.UUID, error) {
	v, err := f.required(key)
	if err != nil {
		return nil, err
	}
	v = clean(v)
	if v == "" || v == noSelection {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, invalid(KindMissingReference, key)
	}
	return &id, nil
}

func (f formReader) integer(key string) (int, error) {
	v, err := f.required(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(clean(v))
	if err != nil {
		return 0, invalid(KindInvalidNumber, key)
	}
	return n, nil
}

// DecodeSubmission reads the dataset form once, evaluating the optional
// blocks and parsing all numeric input.
func DecodeSubmission(form map[string][]string, files []Upload) (*Submission, error) {
	f := formReader{form: form}
	sub := &Submission{Files: files}
	var err error

	if sub.SystemID, err = f.id(fieldSystem); err != nil {
		return nil, err
	}
	if sub.PublicationID, err = f.id(fieldPublication); err != nil {
		return nil, err
	}
	if sub.Label, err = f.required(fieldDatasetLabel); err != nil {
		return nil, err
	}
	sub.Label = clean(sub.Label)

	if sub.PrimaryPropertyID, err = f.optionalID(fieldPrimaryProperty); err != nil {
		return nil, err
	}
	if sub.PrimaryPropertyID != nil {
		id, err := f.id(fieldPrimaryUnit)
		if err != nil {
			return nil, err
		}
		sub.PrimaryUnitID = &id
	}
	if sub.SecondaryPropertyID, err = f.optionalID(fieldSecondaryProperty); err != nil {
		return nil, err
	}
	if sub.SecondaryPropertyID != nil {
		if sub.PrimaryPropertyID == nil {
			return nil, invalid(KindMissingField, fieldPrimaryProperty)
		}
		id, err := f.id(fieldSecondaryUnit)
		if err != nil {
			return nil, err
		}
		sub.SecondaryUnitID = &id
	}
	if f.has(fieldSpaceGroup) {
		if sub.SpaceGroupID, err = f.optionalID(fieldSpaceGroup); err != nil {
			return nil, err
		}
	}

	sub.Visible = f.has(fieldVisible)
	sub.Plotted = f.has(fieldPlotted)
	if sub.Experimental, err = f.flag(fieldExperimental); err != nil {
		return nil, err
	}
	threeD, err := f.flag(fieldThreeDimensional)
	if err != nil {
		return nil, err
	}
	sub.Dimensionality = 2
	if threeD {
		sub.Dimensionality = 3
	}
	if sub.SampleType, err = f.integer(fieldSampleType); err != nil {
		return nil, err
	}
	if sub.CrystalSystem, err = f.integer(fieldCrystalSystem); err != nil {
		return nil, err
	}

	if err := decodeBlocks(f, sub); err != nil {
		return nil, err
	}

	if label, ok := f.get(fieldSeriesLabel); ok {
		sub.SeriesLabel = clean(label)
	}
	if sub.PrimaryPropertyID != nil {
		raw, err := f.required(fieldMainData)
		if err != nil {
			return nil, err
		}
		if sub.Paired() {
			sub.Points, err = ParsePairs(raw)
		} else {
			sub.Points, err = ParseSingles(raw)
		}
		if err != nil {
			return nil, err
		}
	}

	if sub.Fixed, err = decodeFixed(f); err != nil {
		return nil, err
	}
	return sub, nil
}

func decodeBlocks(f formReader, sub *Submission) error {
	var err error
	if sub.Blocks.Synthesis, err = f.flag(fieldWithSynthesis); err != nil {
		return err
	}
	if sub.Blocks.Experimental, err = f.flag(fieldWithExperimental); err != nil {
		return err
	}
	if sub.Blocks.Computational, err = f.flag(fieldWithComputational); err != nil {
		return err
	}

	read := func(dst *string, key string) {
		if err != nil {
			return
		}
		var v string
		v, err = f.required(key)
		*dst = clean(v)
	}
	if sub.Blocks.Synthesis {
		b := &sub.Synthesis
		read(&b.StartingMaterials, "starting-materials")
		read(&b.Product, "synthesis-product")
		read(&b.Description, "synthesis-description")
		b.Comment = f.optional("synthesis-comment")
	}
	if sub.Blocks.Experimental {
		b := &sub.Experiment
		read(&b.Method, "experimental-method")
		read(&b.Description, "experimental-description")
		b.Comment = f.optional("experimental-comment")
	}
	if sub.Blocks.Computational {
		b := &sub.Computational
		read(&b.Code, "code-name")
		read(&b.LevelOfTheory, "level-of-theory")
		read(&b.XCFunctional, "xc-functional")
		read(&b.KGrid, "k-grid")
		read(&b.RelativityLevel, "relativity-level")
		read(&b.Basis, "basis-sets")
		read(&b.NumericalAccuracy, "numerical-accuracy")
		b.Comment = f.optional("computational-comment")
	}
	return err
}

// decodeFixed collects fixed-property<suffix> triples in suffix order.
func decodeFixed(f formReader) ([]FixedInput, error) {
	var suffixes []string
	for key := range f.form {
		if strings.HasPrefix(key, fixedPropertyPrefix) {
			suffixes = append(suffixes, strings.TrimPrefix(key, fixedPropertyPrefix))
		}
	}
	sort.Strings(suffixes)
	out := make([]FixedInput, 0, len(suffixes))
	for _, sfx := range suffixes {
		prop, err := f.required(fixedPropertyPrefix + sfx)
		if err != nil {
			return nil, err
		}
		unit, err := f.required(fixedUnitPrefix + sfx)
		if err != nil {
			return nil, err
		}
		raw, err := f.required(fixedValuePrefix + sfx)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(clean(raw), 64)
		if err != nil {
			return nil, invalid(KindInvalidNumber, fixedValuePrefix+sfx)
		}
		out = append(out, FixedInput{Suffix: sfx, Property: clean(prop), Unit: clean(unit), Value: v})
	}
	return out, nil
}

// ParsePairs reads newline separated "x y" lines. Every line, blank ones
// included, must hold exactly two numbers; only trailing whitespace after the
// last line is dropped.
func ParsePairs(raw string) ([]Point, error) {
	raw = strings.TrimRight(raw, " \t\r\n")
	if raw == "" {
		return nil, nil
	}
	var out []Point
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, invalid(KindInvalidNumber, fieldMainData)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, invalid(KindInvalidNumber, fieldMainData)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, invalid(KindInvalidNumber, fieldMainData)
		}
		out = append(out, Point{X: x, Y: y})
	}
	return out, nil
}

// ParseSingles reads whitespace separated numbers.
func ParseSingles(raw string) ([]Point, error) {
	fields := strings.Fields(raw)
	out := make([]Point, 0, len(fields))
	for _, tok := range fields {
		y, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, invalid(KindInvalidNumber, fieldMainData)
		}
		out = append(out, Point{Y: y})
	}
	return out, nil
}
