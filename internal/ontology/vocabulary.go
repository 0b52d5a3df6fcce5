package ontology

// Canonical field keys.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldRegion       = "region"
	FieldSector       = "sector"
	FieldYear         = "year"
	FieldDate         = "date"
	FieldPopulation   = "population"
	FieldMale         = "male"
	FieldFemale       = "female"
	FieldGDP          = "gdp"
	FieldQuantity     = "quantity"
	FieldValue        = "value"
	FieldPoverty      = "poverty"
	FieldUnemployment = "unemployment"
	FieldEmployment   = "employment"
	FieldBudget       = "budget"
	FieldStatus       = "status"
	FieldMinistry     = "ministry"
	FieldDeadline     = "deadline"
	FieldType         = "type"
	FieldSource       = "source"
)

// Family is one canonical field with its accepted raw spellings.
type Family struct {
	Canonical string
	Aliases   []string
}

// DefaultVocabulary is the column alias table for government statistics,
// project and opportunity spreadsheets.
var DefaultVocabulary = []Family{
	{FieldID, []string{"id", "identifier", "record id", "project id", "project code"}},
	{FieldName, []string{"name", "project name", "full name", "label", "opportunity name"}},
	{FieldTitle, []string{"title", "heading", "subject"}},
	{FieldDescription, []string{"description", "desc", "details", "summary", "notes"}},
	{FieldRegion, []string{"region", "district", "province", "location", "area", "city", "zone", "county"}},
	{FieldSector, []string{"sector", "industry", "economic sector", "activity", "category"}},
	{FieldYear, []string{"year", "yr", "survey year", "reference year", "fiscal year", "period"}},
	{FieldDate, []string{"date", "created", "created at", "published", "publication date", "start date"}},
	{FieldPopulation, []string{"population", "pop", "popn", "total population", "inhabitants"}},
	{FieldMale, []string{"male", "males", "men", "male population"}},
	{FieldFemale, []string{"female", "females", "women", "female population"}},
	{FieldGDP, []string{"gdp", "gross domestic product", "gdp at current prices", "gdp current prices", "nominal gdp"}},
	{FieldQuantity, []string{"quantity", "qty", "count", "number", "units"}},
	{FieldValue, []string{"value", "percentage", "percent", "share", "rate"}},
	{FieldPoverty, []string{
		"poverty", "poverty rate", "poverty incidence", "incidence of poverty",
		"poor", "% poor", "poverty headcount", "headcount",
	}},
	{FieldUnemployment, []string{"unemployment", "unemployment rate", "unemployed", "jobless rate"}},
	{FieldEmployment, []string{"employment", "employment rate", "employed", "employment to population ratio"}},
	{FieldBudget, []string{"budget", "amount", "cost", "funding", "allocation", "investment"}},
	{FieldStatus, []string{"status", "stage", "progress", "phase"}},
	{FieldMinistry, []string{"ministry", "institution", "agency", "implementing agency", "ministry name"}},
	{FieldDeadline, []string{"deadline", "closing date", "due date", "end date", "expiry"}},
	{FieldType, []string{"type", "kind", "document type"}},
	{FieldSource, []string{"source", "data source", "provider", "publisher"}},
}

// Catalog entry keys.
const (
	CatalogSurveyID        = "surveyId"
	CatalogTitle           = "title"
	CatalogNation          = "nation"
	CatalogAuthority       = "authority"
	CatalogCollectionStart = "collectionStart"
	CatalogCollectionEnd   = "collectionEnd"
	CatalogCreated         = "created"
	CatalogChanged         = "changed"
)

// CatalogVocabulary maps microdata catalog exports onto catalog entry keys.
var CatalogVocabulary = []Family{
	{CatalogSurveyID, []string{"survey id", "idno", "id", "survey code"}},
	{CatalogTitle, []string{"title", "survey title", "name"}},
	{CatalogNation, []string{"nation", "country", "nation name"}},
	{CatalogAuthority, []string{"authority", "authoring entity", "producer", "agency"}},
	{CatalogCollectionStart, []string{"collection start", "year start", "data coll start", "start year"}},
	{CatalogCollectionEnd, []string{"collection end", "year end", "data coll end", "end year"}},
	{CatalogCreated, []string{"created", "date created"}},
	{CatalogChanged, []string{"changed", "date changed", "modified", "last modified"}},
}
