package convert

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kailas-cloud/tabdex/internal/domain/document"
	"github.com/kailas-cloud/tabdex/internal/domain/record"
	"github.com/kailas-cloud/tabdex/internal/ontology"
)

// Template names.
const (
	Poverty      = "poverty"
	Labor        = "labor"
	GDP          = "gdp"
	Demographics = "demographics"
	Project      = "project"
	Opportunity  = "opportunity"
	Ministry     = "ministry"
	Policy       = "policy"
	Insight      = "insight"
	Generic      = "generic"
)

// Metric is one numeric column rendered into a statistics sentence.
type Metric struct {
	Field string
	Label string
	Unit  string
}

// Template describes how records of one domain become documents.
type Template struct {
	Name  string
	Type  document.Type
	Label string
	// Sector is stored in metadata when the row carries none.
	Sector string
	// Source is the provenance name when the row carries none.
	Source string
	// Metrics switches the template to the statistics sentence format.
	Metrics []Metric
	// Dimensions are tried in order for the title suffix.
	Dimensions []string
	// Facts are appended to entity content as "Label: value" pairs.
	Facts []string
	// Keywords are the fields joined into the keywords text.
	Keywords []string
}

func (t Template) title(rec record.Record) string {
	for _, f := range t.Dimensions {
		if v, ok := rec.Get(f); ok {
			if len(t.Metrics) == 0 {
				return v
			}
			return t.Label + " — " + v
		}
	}
	return t.Label
}

func (t Template) content(rec record.Record) string {
	if len(t.Metrics) > 0 {
		if s := t.statSentence(rec); s != "" {
			return s
		}
		return summarize(rec, nil)
	}

	parts := make([]string, 0, len(t.Facts))
	for _, f := range t.Facts {
		if v, ok := rec.Get(f); ok {
			parts = append(parts, factLabel(f)+": "+v)
		}
	}
	desc, hasDesc := rec.Get(ontology.FieldDescription)
	switch {
	case hasDesc && len(parts) > 0:
		return desc + ". " + strings.Join(parts, "; ")
	case hasDesc:
		return desc
	case len(parts) > 0:
		return strings.Join(parts, "; ")
	default:
		return summarize(rec, t.Dimensions)
	}
}

// statSentence renders "<metric>: <value><unit> in <region> (<year>)".
func (t Template) statSentence(rec record.Record) string {
	vals := make([]string, 0, len(t.Metrics))
	for _, m := range t.Metrics {
		if v, ok := rec.Get(m.Field); ok {
			vals = append(vals, fmt.Sprintf("%s: %s%s", m.Label, v, m.Unit))
		}
	}
	if len(vals) == 0 {
		return ""
	}
	s := strings.Join(vals, ", ")
	if region, ok := rec.Get(ontology.FieldRegion); ok {
		s += " in " + region
	}
	if year, ok := rec.Get(ontology.FieldYear); ok {
		s += " (" + year + ")"
	}
	return s
}

func (t Template) keywords(rec record.Record) string {
	seen := make(map[string]struct{}, len(t.Keywords))
	out := make([]string, 0, len(t.Keywords))
	for _, f := range t.Keywords {
		v, ok := rec.Get(f)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return strings.Join(out, " ")
}

// summarize renders every non-internal field as "key: value", sorted by key.
func summarize(rec record.Record, skip []string) string {
	keys := make([]string, 0, len(rec))
	for k, v := range rec {
		if k == record.DocIDKey || v == "" || contains(skip, k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + rec[k]
	}
	return strings.Join(parts, "; ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func factLabel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

var statKeywords = []string{ontology.FieldRegion, ontology.FieldSector, ontology.FieldYear, ontology.FieldName}

var entityKeywords = []string{
	ontology.FieldSector, ontology.FieldRegion, ontology.FieldMinistry,
	ontology.FieldStatus, ontology.FieldType, ontology.FieldYear,
}

var entityTitle = []string{ontology.FieldName, ontology.FieldTitle, ontology.FieldID}

// Builtin returns the built-in templates.
func Builtin() []Template {
	statDims := []string{ontology.FieldRegion, ontology.FieldName, ontology.FieldYear}
	return []Template{
		{
			Name: Poverty, Type: document.TypeData, Label: "Poverty",
			Sector: "social protection", Source: "National Institute of Statistics",
			Metrics: []Metric{
				{ontology.FieldPoverty, "Poverty rate", "%"},
				{ontology.FieldValue, "Value", ""},
			},
			Dimensions: statDims, Keywords: statKeywords,
		},
		{
			Name: Labor, Type: document.TypeData, Label: "Labour",
			Sector: "labour", Source: "Labour Force Survey",
			Metrics: []Metric{
				{ontology.FieldUnemployment, "Unemployment rate", "%"},
				{ontology.FieldEmployment, "Employment rate", "%"},
				{ontology.FieldValue, "Value", ""},
			},
			Dimensions: statDims, Keywords: statKeywords,
		},
		{
			Name: GDP, Type: document.TypeData, Label: "GDP",
			Sector: "economy", Source: "National Accounts",
			Metrics: []Metric{
				{ontology.FieldGDP, "GDP", ""},
				{ontology.FieldValue, "Value", ""},
			},
			Dimensions: []string{ontology.FieldRegion, ontology.FieldSector, ontology.FieldYear},
			Keywords:   statKeywords,
		},
		{
			Name: Demographics, Type: document.TypeData, Label: "Demographics",
			Sector: "population", Source: "Population and Housing Census",
			Metrics: []Metric{
				{ontology.FieldPopulation, "Population", ""},
				{ontology.FieldMale, "Male", ""},
				{ontology.FieldFemale, "Female", ""},
			},
			Dimensions: statDims, Keywords: statKeywords,
		},
		{
			Name: Project, Type: document.TypeProject, Label: "Project", Source: "Project registry",
			Dimensions: entityTitle, Keywords: entityKeywords,
			Facts: []string{
				ontology.FieldRegion, ontology.FieldSector, ontology.FieldStatus,
				ontology.FieldBudget, ontology.FieldMinistry,
			},
		},
		{
			Name: Opportunity, Type: document.TypeOpportunity, Label: "Opportunity", Source: "Opportunity board",
			Dimensions: entityTitle, Keywords: entityKeywords,
			Facts: []string{
				ontology.FieldSector, ontology.FieldRegion, ontology.FieldBudget,
				ontology.FieldDeadline, ontology.FieldStatus,
			},
		},
		{
			Name: Ministry, Type: document.TypeMinistry, Label: "Ministry", Source: "Government directory",
			Dimensions: []string{ontology.FieldMinistry, ontology.FieldName, ontology.FieldTitle, ontology.FieldID},
			Keywords:   entityKeywords,
			Facts:      []string{ontology.FieldSector, ontology.FieldBudget},
		},
		{
			Name: Policy, Type: document.TypePolicy, Label: "Policy", Source: "Policy library",
			Dimensions: []string{ontology.FieldTitle, ontology.FieldName, ontology.FieldID},
			Keywords:   entityKeywords,
			Facts:      []string{ontology.FieldSector, ontology.FieldMinistry, ontology.FieldStatus, ontology.FieldYear},
		},
		{
			Name: Insight, Type: document.TypeInsight, Label: "Insight", Source: "Analysis",
			Dimensions: []string{ontology.FieldTitle, ontology.FieldName, ontology.FieldID},
			Keywords:   entityKeywords,
			Facts:      []string{ontology.FieldSector, ontology.FieldRegion, ontology.FieldSource},
		},
		{
			Name: Generic, Type: document.TypeData, Label: "Record", Source: "Upload",
			Dimensions: entityTitle,
			Keywords: []string{
				ontology.FieldRegion, ontology.FieldSector, ontology.FieldYear,
				ontology.FieldType, ontology.FieldStatus,
			},
		},
	}
}

var inferRules = []struct {
	needles  []string
	template string
}{
	{[]string{"poverty", "eicv"}, Poverty},
	{[]string{"labor", "labour", "employment", "lfs"}, Labor},
	{[]string{"gdp", "national_accounts", "nationalaccounts"}, GDP},
	{[]string{"demograph", "population", "census"}, Demographics},
	{[]string{"project"}, Project},
	{[]string{"opportunit", "tender", "grant"}, Opportunity},
	{[]string{"ministr", "institution"}, Ministry},
	{[]string{"polic"}, Policy},
	{[]string{"insight"}, Insight},
}

// InferTemplate guesses a template name from an upload file name.
func InferTemplate(filename string) string {
	base := strings.ToLower(filepath.Base(filename))
	for _, r := range inferRules {
		for _, n := range r.needles {
			if strings.Contains(base, n) {
				return r.template
			}
		}
	}
	return Generic
}
